// Package awss3 loads deployment metadata snapshots from the bootstrap bucket.
package awss3

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/logger"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/metadata"
)

// Client abstracts the S3 client for testing.
type Client interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Config holds bucket settings.
type Config struct {
	Region  string
	Profile string
	Bucket  string
	// Prefix scopes the per-stack metadata objects, e.g.
	// "stackMetadata/app.myapp/stage.dev/".
	Prefix string
}

// Provider implements metadata.Provider over per-stack JSON objects.
type Provider struct {
	cfg    Config
	client Client
	logger logger.Logger
}

var _ metadata.Provider = (*Provider)(nil)

type Option func(*Provider)

// WithConfig sets the adapter configuration.
func WithConfig(cfg Config) Option {
	return func(p *Provider) {
		p.cfg = cfg
	}
}

// WithClient injects a custom S3 client.
func WithClient(c Client) Option {
	return func(p *Provider) {
		if c != nil {
			p.client = c
		}
	}
}

// New constructs the S3-backed metadata provider.
func New(l logger.Logger, opts ...Option) *Provider {
	if l == nil {
		l = &logger.Nop{}
	}
	provider := &Provider{
		cfg:    Config{Region: "us-east-1"},
		logger: l,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(provider)
		}
	}
	return provider
}

func (p *Provider) ensureClient(ctx context.Context) error {
	if p.client != nil {
		return nil
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(p.cfg.Region),
	}
	if p.cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(p.cfg.Profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return fmt.Errorf("awss3: load aws config: %w", err)
	}
	p.client = s3.NewFromConfig(cfg)
	return nil
}

// stackDocument is the JSON shape of one stack's metadata object.
type stackDocument struct {
	Metadata []resourceEntry `json:"metadata"`
}

type resourceEntry struct {
	Type string       `json:"type"`
	Data resourceData `json:"data"`
}

type resourceData struct {
	Arn             string   `json:"arn"`
	Server          string   `json:"server"`
	Secrets         []string `json:"secrets"`
	PrefetchSecrets bool     `json:"prefetchSecrets"`
	Mode            string   `json:"mode"`
	Edge            bool     `json:"edge"`
}

// Snapshot lists every stack object under the prefix and flattens their
// resource entries into one point-in-time view.
func (p *Provider) Snapshot(ctx context.Context) ([]metadata.Resource, error) {
	if err := p.ensureClient(ctx); err != nil {
		return nil, err
	}

	var keys []string
	var token *string
	for {
		out, err := p.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(p.cfg.Bucket),
			Prefix:            aws.String(p.cfg.Prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("awss3: list %s: %w", p.cfg.Prefix, err)
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}

	var resources []metadata.Resource
	for _, key := range keys {
		doc, err := p.loadStack(ctx, key)
		if err != nil {
			return nil, err
		}
		stack := stackNameFromKey(key)
		for _, entry := range doc.Metadata {
			resources = append(resources, metadata.Resource{
				Stack:           stack,
				Kind:            entry.Type,
				Arn:             entry.Data.Arn,
				Server:          entry.Data.Server,
				Secrets:         entry.Data.Secrets,
				PrefetchSecrets: entry.Data.PrefetchSecrets,
				Mode:            metadata.Mode(entry.Data.Mode),
				Edge:            entry.Data.Edge,
			})
		}
	}
	return resources, nil
}

func (p *Provider) loadStack(ctx context.Context, key string) (stackDocument, error) {
	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return stackDocument{}, fmt.Errorf("awss3: get %s: %w", key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return stackDocument{}, fmt.Errorf("awss3: read %s: %w", key, err)
	}
	var doc stackDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return stackDocument{}, fmt.Errorf("awss3: decode %s: %w", key, err)
	}
	return doc, nil
}

// stackNameFromKey derives the stack name from the object key:
// ".../stack.my-stack.json" → "my-stack".
func stackNameFromKey(key string) string {
	name := strings.TrimSuffix(path.Base(key), ".json")
	return strings.TrimPrefix(name, "stack.")
}
