package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"draftsync-backend/application/commands/handlers"
	"draftsync-backend/application/ports"
	"draftsync-backend/domain/drafts"
	"draftsync-backend/infrastructure/config"
	"draftsync-backend/infrastructure/messaging/eventbridge"
	"draftsync-backend/infrastructure/persistence/mongodb"
	lambdahandler "draftsync-backend/interfaces/lambda"
	"draftsync-backend/pkg/observability"
)

const (
	serviceName      = "draft-sync"
	metricsNamespace = "draftsync"

	// CloudWatchNamespace is where invocation metrics are pushed
	CloudWatchNamespace = "DraftSync"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := observability.NewLogger(cfg.IsLambda || cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logger.With(
		zap.String("service", serviceName),
		zap.String("environment", cfg.Environment),
	), nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideS3Client creates an S3 client
func ProvideS3Client(awsCfg aws.Config) *awss3.Client {
	return awss3.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideConfigSource picks the local file when CONFIG_FILE is set and the
// environment's S3 object otherwise
func ProvideConfigSource(cfg *config.Config, client *awss3.Client) config.Source {
	if cfg.ConfigFile != "" {
		return config.NewFileSource(cfg.ConfigFile)
	}
	return config.NewS3Source(client, cfg.ConfigBucket, cfg.ConfigKey())
}

// ProvideConfigLoader creates the write-once configuration loader
func ProvideConfigLoader(source config.Source, logger *zap.Logger, recorder observability.Recorder) *config.Loader {
	return config.NewLoader(source, logger, recorder)
}

// ProvideConnectionManager creates the write-once MongoDB connection manager
func ProvideConnectionManager(cfg *config.Config, logger *zap.Logger, recorder observability.Recorder) *mongodb.Manager {
	return mongodb.NewManager(mongodb.ManagerOptions{
		Collection: cfg.DraftsCollection,
		Breaker: mongodb.BreakerSettings{
			MaxFailures: uint32(cfg.BreakerMaxFailures),
			OpenTimeout: cfg.BreakerOpenTimeout,
		},
	}, logger, recorder)
}

// ProvideCollector creates the Prometheus collector
func ProvideCollector() *observability.Collector {
	return observability.NewCollector(metricsNamespace)
}

// ProvideRecorder always records to Prometheus and adds CloudWatch when
// metrics are enabled
func ProvideRecorder(
	cfg *config.Config,
	collector *observability.Collector,
	client *awscloudwatch.Client,
	logger *zap.Logger,
) observability.Recorder {
	if !cfg.EnableMetrics {
		return collector
	}
	return observability.MultiRecorder{
		collector,
		observability.NewCloudWatchMetrics(CloudWatchNamespace, client, logger),
	}
}

// ProvideTracerProvider initializes tracing; a no-op provider unless enabled
func ProvideTracerProvider(ctx context.Context, cfg *config.Config) (*observability.TracerProvider, error) {
	return observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
		Enabled:     cfg.EnableTracing,
	})
}

// ProvideEventPublisher creates the DraftSynced publisher. Without an event
// bus nothing is published.
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return nil
	}
	return eventbridge.NewEventBridgePublisher(client, cfg.EventBusName, logger)
}

// ProvideFieldPolicy returns the resource data field policy
func ProvideFieldPolicy() drafts.FieldPolicy {
	return drafts.DefaultFieldPolicy()
}

// ProvideSyncDraftHandler creates the sync draft command handler
func ProvideSyncDraftHandler(
	loader *config.Loader,
	manager *mongodb.Manager,
	publisher ports.EventPublisher,
	policy drafts.FieldPolicy,
	recorder observability.Recorder,
	tracing *observability.TracerProvider,
	logger *zap.Logger,
) *handlers.SyncDraftHandler {
	return handlers.NewSyncDraftHandler(loader, manager, publisher, policy, recorder, tracing.Tracer(), logger)
}

// ProvideLambdaHandler creates the Lambda entry handler
func ProvideLambdaHandler(
	syncDraft *handlers.SyncDraftHandler,
	tracing *observability.TracerProvider,
	logger *zap.Logger,
) *lambdahandler.Handler {
	return lambdahandler.NewHandler(syncDraft, tracing, logger)
}
