package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCollector_RecordInvocation(t *testing.T) {
	c := NewCollector("draftsync_test")

	c.RecordInvocation(context.Background(), "Upserted", "", 25*time.Millisecond)
	c.RecordInvocation(context.Background(), "Upserted", "", 10*time.Millisecond)
	c.RecordInvocation(context.Background(), "Failed", "CONNECTION", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Invocations.WithLabelValues("Upserted", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Invocations.WithLabelValues("Failed", "CONNECTION")))
}

func TestCollector_DependencyCounters(t *testing.T) {
	c := NewCollector("draftsync_test")
	boom := errors.New("boom")

	c.RecordConfigLoad("s3", nil)
	c.RecordConfigLoad("s3", boom)
	c.RecordConnect(boom)
	c.RecordUpsert(true, nil)
	c.RecordUpsert(false, nil)
	c.RecordUpsert(false, boom)
	c.RecordPublish(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.ConfigLoads.WithLabelValues("s3", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ConfigLoads.WithLabelValues("s3", StatusFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Connects.WithLabelValues(StatusFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Upserts.WithLabelValues("inserted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Upserts.WithLabelValues("updated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Upserts.WithLabelValues(StatusFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Publishes.WithLabelValues(StatusSuccess)))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("draftsync_test")
	c.RecordConnect(nil)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `draftsync_test_db_connects_total{status="success"} 1`)
}

type mockCloudWatch struct {
	mock.Mock
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*cloudwatch.PutMetricDataOutput)
	return out, args.Error(1)
}

func TestCloudWatchMetrics_RecordInvocation(t *testing.T) {
	ctx := context.Background()
	client := new(mockCloudWatch)
	client.On("PutMetricData", ctx, mock.MatchedBy(func(in *cloudwatch.PutMetricDataInput) bool {
		return aws.ToString(in.Namespace) == "DraftSync/test" && len(in.MetricData) == 2
	})).Return(&cloudwatch.PutMetricDataOutput{}, nil).Once()
	client.On("PutMetricData", ctx, mock.Anything).Return(nil, errors.New("throttled")).Once()

	m := NewCloudWatchMetrics("DraftSync/test", client, zap.NewNop())
	m.RecordInvocation(ctx, "Upserted", "", time.Second)
	// failures are swallowed
	m.RecordInvocation(ctx, "Failed", "UPSERT", time.Second)

	client.AssertExpectations(t)
}

func TestMultiRecorder_FansOut(t *testing.T) {
	a := NewCollector("a")
	b := NewCollector("b")
	multi := MultiRecorder{a, b, NopRecorder{}}

	multi.RecordUpsert(true, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.Upserts.WithLabelValues("inserted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.Upserts.WithLabelValues("inserted")))
}

func TestInitTracing_Disabled(t *testing.T) {
	tp, err := InitTracing(context.Background(), TracingConfig{Enabled: false})
	require.NoError(t, err)

	_, span := tp.Tracer().Start(context.Background(), "noop")
	EndSpan(span, errors.New("ignored"))

	assert.NoError(t, tp.ForceFlush(context.Background()))
	assert.NoError(t, tp.Shutdown(context.Background()))
}
