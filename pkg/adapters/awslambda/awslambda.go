// Package awslambda backs the compute contract with AWS Lambda.
package awslambda

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/compute"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/logger"
)

// Client abstracts the Lambda client for testing.
type Client interface {
	GetFunctionConfiguration(ctx context.Context, params *lambda.GetFunctionConfigurationInput, optFns ...func(*lambda.Options)) (*lambda.GetFunctionConfigurationOutput, error)
	UpdateFunctionConfiguration(ctx context.Context, params *lambda.UpdateFunctionConfigurationInput, optFns ...func(*lambda.Options)) (*lambda.UpdateFunctionConfigurationOutput, error)
}

// Config holds Lambda settings.
type Config struct {
	Region  string
	Profile string
}

// API implements compute.API over Lambda function configuration calls.
type API struct {
	cfg    Config
	client Client
	logger logger.Logger
}

var _ compute.API = (*API)(nil)

type Option func(*API)

// WithConfig sets the adapter configuration.
func WithConfig(cfg Config) Option {
	return func(a *API) {
		a.cfg = cfg
	}
}

// WithClient injects a custom Lambda client.
func WithClient(c Client) Option {
	return func(a *API) {
		if c != nil {
			a.client = c
		}
	}
}

// New constructs the Lambda-backed compute API.
func New(l logger.Logger, opts ...Option) *API {
	if l == nil {
		l = &logger.Nop{}
	}
	api := &API{
		cfg:    Config{Region: "us-east-1"},
		logger: l,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

func (a *API) ensureClient(ctx context.Context) error {
	if a.client != nil {
		return nil
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(a.cfg.Region),
	}
	if a.cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(a.cfg.Profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return fmt.Errorf("awslambda: load aws config: %w", err)
	}
	a.client = lambda.NewFromConfig(cfg)
	return nil
}

// GetConfiguration reads the function's current environment.
func (a *API) GetConfiguration(ctx context.Context, id string) (compute.FunctionConfig, error) {
	if err := a.ensureClient(ctx); err != nil {
		return compute.FunctionConfig{}, err
	}
	out, err := a.client.GetFunctionConfiguration(ctx, &lambda.GetFunctionConfigurationInput{
		FunctionName: aws.String(id),
	})
	if err != nil {
		return compute.FunctionConfig{}, translate("get configuration", id, err)
	}
	cfg := compute.FunctionConfig{Environment: map[string]string{}}
	if out.Environment != nil {
		for k, v := range out.Environment.Variables {
			cfg.Environment[k] = v
		}
	}
	return cfg, nil
}

// UpdateConfiguration writes the environment back, which the platform treats
// as a configuration change.
func (a *API) UpdateConfiguration(ctx context.Context, id string, cfg compute.FunctionConfig) error {
	if err := a.ensureClient(ctx); err != nil {
		return err
	}
	_, err := a.client.UpdateFunctionConfiguration(ctx, &lambda.UpdateFunctionConfigurationInput{
		FunctionName: aws.String(id),
		Environment:  &types.Environment{Variables: cfg.Environment},
	})
	if err != nil {
		return translate("update configuration", id, err)
	}
	return nil
}

func translate(op, id string, err error) error {
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("awslambda: %s %s: %w", op, id, compute.ErrFunctionNotFound)
	}
	return fmt.Errorf("awslambda: %s %s: %w", op, id, err)
}
