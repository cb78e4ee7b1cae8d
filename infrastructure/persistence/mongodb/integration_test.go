//go:build integration

package mongodb

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"draftsync-backend/domain/drafts"
	"draftsync-backend/infrastructure/config"
)

const mongoPort = "27017/tcp"

func skipIfNoDocker(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

// startMongo runs a throwaway MongoDB and returns a plain (non-TLS) URI
func startMongo(t *testing.T) string {
	t.Helper()
	skipIfNoDocker(t)
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{mongoPort},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort(mongoPort),
				wait.ForLog("Waiting for connections"),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, mongoPort)
	require.NoError(t, err)

	return fmt.Sprintf("mongodb://%s:%s", host, port.Port())
}

func TestIntegration_UpsertIsIdempotent(t *testing.T) {
	uri := startMongo(t)
	ctx := context.Background()

	// The production URI always asks for TLS; the test container speaks plain TCP
	m := NewManager(ManagerOptions{Collection: "drafts"}, zap.NewNop(), nil)
	m.connect = func(ctx context.Context, _ string) (*mongo.Client, error) {
		return mongo.Connect(ctx, options.Client().ApplyURI(uri))
	}
	t.Cleanup(func() { _ = m.Disconnect(ctx) })

	cfg := &config.Configuration{Mongo: config.MongoSettings{Host: "container", DB: "office"}}
	store, err := m.Store(ctx, cfg)
	require.NoError(t, err)

	first, err := drafts.NewDraft(drafts.DefaultFieldPolicy(), "u1", drafts.ResourceData{
		"Id": "42", "@type": "x", "_internal": "y", "title": "Hello",
	})
	require.NoError(t, err)
	res, err := store.Upsert(ctx, first)
	require.NoError(t, err)
	assert.True(t, res.Upserted)

	second, err := drafts.NewDraft(drafts.DefaultFieldPolicy(), "u1", drafts.ResourceData{
		"Id": "42", "title": "Hello again", "body": "text",
	})
	require.NoError(t, err)
	res, err = store.Upsert(ctx, second)
	require.NoError(t, err)
	assert.False(t, res.Upserted)
	assert.Equal(t, int64(1), res.Matched)

	handle, err := m.Ensure(ctx, cfg)
	require.NoError(t, err)
	coll := handle.Database.Collection("drafts")

	count, err := coll.CountDocuments(ctx, DraftFilter("u1", "42"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var doc bson.M
	require.NoError(t, coll.FindOne(ctx, DraftFilter("u1", "42")).Decode(&doc))
	assert.Equal(t, "Hello again", doc["title"])
	assert.Equal(t, "text", doc["body"])
	assert.Equal(t, "42", doc["itemId"])
	assert.Equal(t, "u1", doc["user_id"])
	assert.NotContains(t, doc, "@type")
	assert.NotContains(t, doc, "_internal")
	assert.NotContains(t, doc, "Id")
}
