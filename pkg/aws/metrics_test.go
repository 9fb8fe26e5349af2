package aws

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (f *fakeCloudWatch) PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, opts ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

func TestRecordLatency_SendsMilliseconds(t *testing.T) {
	fake := &fakeCloudWatch{}
	m := &MetricsClient{client: fake, namespace: "Test", enabled: true}

	require.NoError(t, m.RecordLatency(context.Background(), MetricReconcileLatency, 1500*time.Millisecond, map[string]string{"Service": "checkout"}))

	require.Len(t, fake.inputs, 1)
	datum := fake.inputs[0].MetricData[0]
	assert.Equal(t, "Test", *fake.inputs[0].Namespace)
	assert.Equal(t, MetricReconcileLatency, *datum.MetricName)
	assert.Equal(t, 1500.0, *datum.Value)
	assert.Equal(t, types.StandardUnitMilliseconds, datum.Unit)
	require.Len(t, datum.Dimensions, 1)
	assert.Equal(t, "checkout", *datum.Dimensions[0].Value)
}

func TestRecordCount_WrapsErrors(t *testing.T) {
	fake := &fakeCloudWatch{err: errors.New("throttled")}
	m := &MetricsClient{client: fake, namespace: "Test", enabled: true}

	err := m.RecordCount(context.Background(), MetricPaymentsReconciled, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), MetricPaymentsReconciled)
}

func TestDisabledMetrics_NeverCallsCloudWatch(t *testing.T) {
	m := NewDisabledMetrics()
	assert.False(t, m.IsEnabled())
	assert.NoError(t, m.RecordCount(context.Background(), MetricCheckoutsCreated, nil))
}
