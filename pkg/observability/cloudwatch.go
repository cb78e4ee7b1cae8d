package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// PutMetricDataAPI is the slice of the CloudWatch client used here
type PutMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics pushes one datum set per invocation. Dependency-level
// counters stay in Prometheus only.
type CloudWatchMetrics struct {
	namespace string
	client    PutMetricDataAPI
	logger    *zap.Logger
}

// NewCloudWatchMetrics creates a new CloudWatch sink
func NewCloudWatchMetrics(namespace string, client PutMetricDataAPI, logger *zap.Logger) *CloudWatchMetrics {
	return &CloudWatchMetrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

// RecordInvocation sends the invocation latency and count
func (m *CloudWatchMetrics) RecordInvocation(ctx context.Context, stage string, errType string, duration time.Duration) {
	if m.client == nil {
		return // Skip if no client configured
	}

	dimensions := []types.Dimension{
		{
			Name:  aws.String("Stage"),
			Value: aws.String(stage),
		},
		{
			Name:  aws.String("ErrorType"),
			Value: aws.String(errType),
		},
	}
	now := aws.Time(time.Now())

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String("InvocationLatency"),
				Dimensions: dimensions,
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       types.StandardUnitMilliseconds,
				Timestamp:  now,
			},
			{
				MetricName: aws.String("InvocationCount"),
				Dimensions: dimensions,
				Value:      aws.Float64(1),
				Unit:       types.StandardUnitCount,
				Timestamp:  now,
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		// Metrics never fail the invocation
		m.logger.Warn("Failed to send metrics", zap.Error(err))
	}
}

func (m *CloudWatchMetrics) RecordConfigLoad(string, error) {}
func (m *CloudWatchMetrics) RecordConnect(error)            {}
func (m *CloudWatchMetrics) RecordUpsert(bool, error)       {}
func (m *CloudWatchMetrics) RecordPublish(error)            {}
