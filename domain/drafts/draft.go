package drafts

import "fmt"

// Draft is a resource object bound to its owner and identity, ready to upsert.
type Draft struct {
	UserID string
	ItemID interface{}
	Fields ResourceObject
}

// NewDraft transforms data under policy and binds it to userID.
func NewDraft(policy FieldPolicy, userID string, data ResourceData) (*Draft, error) {
	fields, err := policy.Transform(data)
	if err != nil {
		return nil, err
	}

	// Transform already validated the identity
	itemID, _ := Identity(data)

	return &Draft{
		UserID: userID,
		ItemID: itemID,
		Fields: fields,
	}, nil
}

// Key renders the (user_id, itemId) pair for logs and event payloads.
func (d *Draft) Key() string {
	return fmt.Sprintf("%s/%v", d.UserID, d.ItemID)
}

// UpsertResult reports what a single draft upsert did.
type UpsertResult struct {
	Matched    int64
	Modified   int64
	Upserted   bool
	UpsertedID interface{}
}
