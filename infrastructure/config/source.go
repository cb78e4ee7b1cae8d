package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Source fetches the configuration document
type Source interface {
	Fetch(ctx context.Context) (*Configuration, error)
	Name() string
}

// GetObjectAPI is the slice of the S3 client used by S3Source
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads {environment}.json from the configuration bucket
type S3Source struct {
	client GetObjectAPI
	bucket string
	key    string
}

// NewS3Source creates a source for bucket/key
func NewS3Source(client GetObjectAPI, bucket, key string) *S3Source {
	return &S3Source{client: client, bucket: bucket, key: key}
}

// Name identifies the source in logs and metrics
func (s *S3Source) Name() string {
	return "s3"
}

// Location is the s3:// URL of the document
func (s *S3Source) Location() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key)
}

// Fetch downloads and parses the document
func (s *S3Source) Fetch(ctx context.Context) (*Configuration, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, describeS3Error(s.Location(), err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Location(), err)
	}

	cfg, err := ParseConfiguration(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Location(), err)
	}
	return cfg, nil
}

func describeS3Error(location string, err error) error {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return fmt.Errorf("configuration %s does not exist: %w", location, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("failed to get %s (%s): %w", location, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("failed to get %s: %w", location, err)
}

// FileSource reads a local JSON or YAML document, for development runs
type FileSource struct {
	path string
}

// NewFileSource creates a source for path
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name identifies the source in logs and metrics
func (s *FileSource) Name() string {
	return "file"
}

// Fetch reads and parses the file; the format follows the extension
func (s *FileSource) Fetch(_ context.Context) (*Configuration, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
		}
	case ".json":
	default:
		return nil, fmt.Errorf("unsupported configuration format: %s", s.path)
	}

	cfg, err := ParseConfiguration(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return cfg, nil
}

// yamlToJSON lets YAML documents share the JSON decoding path
func yamlToJSON(data []byte) ([]byte, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
