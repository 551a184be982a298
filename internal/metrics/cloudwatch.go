package metrics

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	namespace                = "Beatstoch/API"
	httpStatusServerError    = 500
	cloudwatchTimeoutSeconds = 5
)

// putMetricDataAPI is the part of the CloudWatch client we use
type putMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Client wraps CloudWatch client for custom metrics
type Client struct {
	client      putMetricDataAPI
	enabled     bool
	environment string
	async       bool
}

// NewClient creates a new CloudWatch metrics client
func NewClient(ctx context.Context, environment string) (*Client, error) {
	// Only enable in production
	if environment != "production" {
		log.Printf("📊 CloudWatch Metrics: DISABLED (environment: %s)", environment)
		return &Client{
			enabled:     false,
			environment: environment,
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to load AWS config for CloudWatch: %v", err)
		return &Client{enabled: false, environment: environment}, nil
	}

	log.Printf("📊 CloudWatch Metrics: ✅ ENABLED (namespace: %s)", namespace)
	return &Client{
		client:      cloudwatch.NewFromConfig(cfg),
		enabled:     true,
		environment: environment,
		async:       true,
	}, nil
}

// Enabled reports whether metrics are shipped
func (m *Client) Enabled() bool {
	return m != nil && m.enabled
}

// RecordAPIRequest records an API request metric
func (m *Client) RecordAPIRequest(_ context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.Enabled() {
		return
	}

	metricName := "APIRequests"
	if statusCode >= httpStatusServerError {
		metricName = "APIErrors"
	}
	dimensions := m.dimensions("Endpoint", endpoint)

	m.send(func() {
		m.putMetrics(
			datum(metricName, 1, types.StandardUnitCount, dimensions),
			datum("APILatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions),
		)
	})
}

// RecordGeneration records a pattern generation
func (m *Client) RecordGeneration(_ context.Context, style string, eventCount int, duration time.Duration, success bool) {
	if !m.Enabled() {
		return
	}

	dimensions := append(m.dimensions("Style", style), types.Dimension{
		Name:  aws.String("Success"),
		Value: aws.String(boolToString(success)),
	})

	m.send(func() {
		m.putMetrics(
			datum("GenerationDuration", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions),
			datum("GeneratedEvents", float64(eventCount), types.StandardUnitCount, dimensions),
		)
	})
}

// RecordTempoLookup records a song tempo lookup
func (m *Client) RecordTempoLookup(_ context.Context, found bool, duration time.Duration) {
	if !m.Enabled() {
		return
	}

	dimensions := m.dimensions("Found", boolToString(found))
	m.send(func() {
		m.putMetrics(datum("TempoLookupLatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions))
	})
}

func (m *Client) send(fn func()) {
	if m.async {
		go fn()
		return
	}
	fn()
}

func (m *Client) dimensions(name, value string) []types.Dimension {
	return []types.Dimension{
		{
			Name:  aws.String(name),
			Value: aws.String(value),
		},
		{
			Name:  aws.String("Environment"),
			Value: aws.String(m.environment),
		},
	}
}

func datum(name string, value float64, unit types.StandardUnit, dimensions []types.Dimension) types.MetricDatum {
	return types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: dimensions,
	}
}

// putMetrics sends the data in one PutMetricData call
func (m *Client) putMetrics(data ...types.MetricDatum) {
	if !m.enabled || m.client == nil {
		return
	}

	timeout := time.Duration(cloudwatchTimeoutSeconds) * time.Second
	cwCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := m.client.PutMetricData(cwCtx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(namespace),
		MetricData: data,
	})
	if err != nil {
		log.Printf("Failed to record %s metric: %v", aws.ToString(data[0].MetricName), err)
	}
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
