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
	namespace                = "MAGDA/LoopBridge"
	cloudwatchTimeoutSeconds = 5
	environmentProduction    = "production"
)

// metricPutter is the subset of the CloudWatch API the client uses
type metricPutter interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Client wraps CloudWatch client for custom metrics
type Client struct {
	client      metricPutter
	enabled     bool
	environment string
}

// NewClient creates a new CloudWatch metrics client
func NewClient(ctx context.Context, environment string) (*Client, error) {
	// Only enable in production
	if environment != environmentProduction {
		log.Printf("📊 CloudWatch Metrics: DISABLED (environment: %s)", environment)
		return &Client{
			enabled:     false,
			environment: environment,
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to load AWS config for CloudWatch: %v", err)
		return &Client{enabled: false}, nil
	}

	client := cloudwatch.NewFromConfig(cfg)
	log.Printf("📊 CloudWatch Metrics: ✅ ENABLED (namespace: %s)", namespace)

	return &Client{
		client:      client,
		enabled:     true,
		environment: environment,
	}, nil
}

// Enabled reports whether metrics are being shipped
func (m *Client) Enabled() bool {
	return m.enabled
}

// RecordCycle records a processed cycle and its latency
func (m *Client) RecordCycle(_ context.Context, outcome string, duration time.Duration) {
	if !m.enabled {
		return
	}

	go func() {
		ctx := context.Background()
		dimensions := []types.Dimension{
			{
				Name:  aws.String("Outcome"),
				Value: aws.String(outcome),
			},
			{
				Name:  aws.String("Environment"),
				Value: aws.String(m.environment),
			},
		}

		if err := m.putMetric(ctx, "Cycles", 1, types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record Cycles metric: %v", err)
		}

		latencyMs := float64(duration.Milliseconds())
		if err := m.putMetric(ctx, "CycleLatency", latencyMs, types.StandardUnitMilliseconds, dimensions); err != nil {
			log.Printf("Failed to record CycleLatency metric: %v", err)
		}
	}()
}

// RecordCommit records segments and notes sent to the engine
func (m *Client) RecordCommit(_ context.Context, segments, notes int) {
	if !m.enabled {
		return
	}

	go func() {
		ctx := context.Background()
		dimensions := []types.Dimension{
			{
				Name:  aws.String("Environment"),
				Value: aws.String(m.environment),
			},
		}

		if err := m.putMetric(ctx, "SegmentsCommitted", float64(segments), types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record SegmentsCommitted metric: %v", err)
		}

		if err := m.putMetric(ctx, "NotesEmitted", float64(notes), types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record NotesEmitted metric: %v", err)
		}
	}()
}

// RecordRollback records a failed batch by failure kind
func (m *Client) RecordRollback(_ context.Context, kind, _ string) {
	if !m.enabled {
		return
	}

	go func() {
		ctx := context.Background()
		dimensions := []types.Dimension{
			{
				Name:  aws.String("Kind"),
				Value: aws.String(kind),
			},
			{
				Name:  aws.String("Environment"),
				Value: aws.String(m.environment),
			},
		}

		if err := m.putMetric(ctx, "Rollbacks", 1, types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record Rollbacks metric: %v", err)
		}
	}()
}

// RecordTokenUsage records token usage of a generate run
func (m *Client) RecordTokenUsage(model string, inputTokens, outputTokens int) {
	if !m.enabled {
		return
	}

	ctx := context.Background()
	dimensions := []types.Dimension{
		{
			Name:  aws.String("Model"),
			Value: aws.String(model),
		},
		{
			Name:  aws.String("Environment"),
			Value: aws.String(m.environment),
		},
	}

	// Synchronous: generate exits right after
	if err := m.putMetric(ctx, "GenerationTokens/Input", float64(inputTokens), types.StandardUnitCount, dimensions); err != nil {
		log.Printf("Failed to record GenerationTokens/Input metric: %v", err)
	}
	if err := m.putMetric(ctx, "GenerationTokens/Output", float64(outputTokens), types.StandardUnitCount, dimensions); err != nil {
		log.Printf("Failed to record GenerationTokens/Output metric: %v", err)
	}
}

// putMetric sends a metric to CloudWatch
func (m *Client) putMetric(
	_ context.Context,
	metricName string,
	value float64,
	unit types.StandardUnit,
	dimensions []types.Dimension,
) error {
	if !m.enabled || m.client == nil {
		return nil
	}

	// Create context with timeout for CloudWatch call
	timeout := time.Duration(cloudwatchTimeoutSeconds) * time.Second
	cwCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := m.client.PutMetricData(cwCtx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Value:      aws.Float64(value),
				Unit:       unit,
				Timestamp:  aws.Time(time.Now()),
				Dimensions: dimensions,
			},
		},
	})

	return err
}
