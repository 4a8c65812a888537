// Package awsiot publishes domain events to AWS IoT Core topics.
package awsiot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/aws/smithy-go"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/logger"
	"github.com/goliatone/go-stageconfig/pkg/retry"
	"github.com/google/uuid"
)

// Client abstracts the IoT data-plane client for testing.
type Client interface {
	Publish(ctx context.Context, params *iotdataplane.PublishInput, optFns ...func(*iotdataplane.Options)) (*iotdataplane.PublishOutput, error)
}

// Config holds IoT settings.
type Config struct {
	Region      string
	Profile     string
	Endpoint    string
	MaxAttempts int
}

// Broadcaster implements the event channel over IoT topic publishes.
type Broadcaster struct {
	cfg     Config
	client  Client
	logger  logger.Logger
	backoff retry.Backoff
}

var _ broadcaster.Broadcaster = (*Broadcaster)(nil)

type Option func(*Broadcaster)

// WithConfig sets the adapter configuration.
func WithConfig(cfg Config) Option {
	return func(b *Broadcaster) {
		b.cfg = cfg
	}
}

// WithClient injects a custom IoT data-plane client.
func WithClient(c Client) Option {
	return func(b *Broadcaster) {
		if c != nil {
			b.client = c
		}
	}
}

// WithBackoff overrides the retry policy for throttled publishes.
func WithBackoff(backoff retry.Backoff) Option {
	return func(b *Broadcaster) {
		if backoff != nil {
			b.backoff = backoff
		}
	}
}

// New constructs the IoT broadcaster.
func New(l logger.Logger, opts ...Option) *Broadcaster {
	if l == nil {
		l = &logger.Nop{}
	}
	b := &Broadcaster{
		cfg:     Config{Region: "us-east-1", MaxAttempts: 3},
		logger:  l,
		backoff: retry.DefaultBackoff(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	if b.cfg.MaxAttempts <= 0 {
		b.cfg.MaxAttempts = 3
	}
	return b
}

func (b *Broadcaster) ensureClient(ctx context.Context) error {
	if b.client != nil {
		return nil
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(b.cfg.Region),
	}
	if b.cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(b.cfg.Profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return fmt.Errorf("awsiot: load aws config: %w", err)
	}
	b.client = iotdataplane.NewFromConfig(cfg, func(o *iotdataplane.Options) {
		if b.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(b.cfg.Endpoint)
		}
	})
	return nil
}

type envelope struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Payload any    `json:"payload"`
	At      string `json:"at"`
}

// Broadcast publishes the event as a JSON envelope on its topic, retrying
// throttled publishes with exponential backoff.
func (b *Broadcaster) Broadcast(ctx context.Context, event broadcaster.Event) error {
	if err := b.ensureClient(ctx); err != nil {
		return err
	}
	id := event.ID
	if id == "" {
		id = uuid.NewString()
	}
	body, err := json.Marshal(envelope{
		ID:      id,
		Name:    event.Name,
		Payload: event.Payload,
		At:      time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("awsiot: encode event %s: %w", event.Name, err)
	}

	var lastErr error
	for attempt := 1; attempt <= b.cfg.MaxAttempts; attempt++ {
		_, err := b.client.Publish(ctx, &iotdataplane.PublishInput{
			Topic:   aws.String(event.Topic),
			Payload: body,
			Qos:     1,
		})
		if err == nil {
			return nil
		}
		if !isThrottle(err) {
			return fmt.Errorf("awsiot: publish %s: %w", event.Topic, err)
		}
		lastErr = err
		b.logger.Debug("publish throttled, retrying",
			logger.F("topic", event.Topic),
			logger.F("attempt", attempt))
		if werr := retry.Wait(ctx, b.backoff.Next(attempt)); werr != nil {
			return werr
		}
	}
	return fmt.Errorf("awsiot: publish %s: %w", event.Topic, lastErr)
}

func isThrottle(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ThrottlingException"
}
