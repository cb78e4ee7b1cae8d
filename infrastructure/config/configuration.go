package config

import (
	"fmt"

	"github.com/goccy/go-json"

	"draftsync-backend/pkg/utils"
)

// Configuration is the connection document stored per environment, or sent
// inline with an event.
type Configuration struct {
	Mongo MongoSettings

	// Extra keeps every other top-level setting verbatim
	Extra map[string]json.RawMessage
}

// MongoSettings are the parameters used to build the connection string
type MongoSettings struct {
	User           string `json:"user"`
	Pass           string `json:"pass"`
	Host           string `json:"host" validate:"required"`
	DB             string `json:"db" validate:"required"`
	ConnectOptions string `json:"connectOptions"`
	ReplicaSet     string `json:"replicaSet"`
	AuthOptions    string `json:"authOptions"`
	Scheme         string `json:"scheme,omitempty" validate:"omitempty,oneof=mongodb mongodb+srv"`
}

const mongoKey = "mongo"

// ParseConfiguration decodes and validates a configuration document
func ParseConfiguration(data []byte) (*Configuration, error) {
	var cfg Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UnmarshalJSON splits the mongo block from the remaining settings
func (c *Configuration) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Configuration{}
	if block, ok := raw[mongoKey]; ok {
		if err := json.Unmarshal(block, &c.Mongo); err != nil {
			return fmt.Errorf("invalid mongo settings: %w", err)
		}
		delete(raw, mongoKey)
	}
	if len(raw) > 0 {
		c.Extra = raw
	}
	return nil
}

// MarshalJSON writes the mongo block back next to the extra settings
func (c Configuration) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(c.Extra)+1)
	for k, v := range c.Extra {
		out[k] = v
	}
	out[mongoKey] = c.Mongo
	return json.Marshal(out)
}

// IsEmpty reports whether no setting at all is present
func (c *Configuration) IsEmpty() bool {
	return c == nil || (c.Mongo == MongoSettings{} && len(c.Extra) == 0)
}

// Validate checks the settings needed to reach the database
func (c *Configuration) Validate() error {
	if c.IsEmpty() {
		return fmt.Errorf("configuration is empty")
	}
	if err := utils.ValidateStruct(c.Mongo); err != nil {
		return fmt.Errorf("invalid mongo settings: %w", err)
	}
	return nil
}

// Setting decodes an extra top-level setting into target
func (c *Configuration) Setting(key string, target interface{}) (bool, error) {
	raw, ok := c.Extra[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return true, fmt.Errorf("invalid setting %q: %w", key, err)
	}
	return true, nil
}
