// Package awsssm backs the paramstore contract with AWS SSM Parameter Store.
package awsssm

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/smithy-go"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/logger"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/paramstore"
)

// Client abstracts the SSM client for testing.
type Client interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
	DeleteParameter(ctx context.Context, params *ssm.DeleteParameterInput, optFns ...func(*ssm.Options)) (*ssm.DeleteParameterOutput, error)
}

// Config holds SSM settings.
type Config struct {
	Region  string
	Profile string
}

// Store implements paramstore.Store over SSM.
type Store struct {
	cfg    Config
	client Client
	logger logger.Logger
}

var _ paramstore.Store = (*Store)(nil)

type Option func(*Store)

// WithConfig sets the adapter configuration.
func WithConfig(cfg Config) Option {
	return func(s *Store) {
		s.cfg = cfg
	}
}

// WithClient injects a custom SSM client.
func WithClient(c Client) Option {
	return func(s *Store) {
		if c != nil {
			s.client = c
		}
	}
}

// New constructs the SSM-backed store.
func New(l logger.Logger, opts ...Option) *Store {
	if l == nil {
		l = &logger.Nop{}
	}
	store := &Store{
		cfg:    Config{Region: "us-east-1"},
		logger: l,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

func (s *Store) ensureClient(ctx context.Context) error {
	if s.client != nil {
		return nil
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(s.cfg.Region),
	}
	if s.cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(s.cfg.Profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return fmt.Errorf("awsssm: load aws config: %w", err)
	}
	s.client = ssm.NewFromConfig(cfg)
	return nil
}

// Scan pages through every parameter under prefix, decrypting values. Pages
// are fetched lazily as the sequence is consumed; the sequence restarts from
// the first page on every call.
func (s *Store) Scan(ctx context.Context, prefix string) iter.Seq2[paramstore.RawParameter, error] {
	return func(yield func(paramstore.RawParameter, error) bool) {
		if err := s.ensureClient(ctx); err != nil {
			yield(paramstore.RawParameter{}, err)
			return
		}
		var token *string
		for {
			out, err := s.client.GetParametersByPath(ctx, &ssm.GetParametersByPathInput{
				Path:           aws.String(prefix),
				Recursive:      aws.Bool(true),
				WithDecryption: aws.Bool(true),
				NextToken:      token,
			})
			if err != nil {
				yield(paramstore.RawParameter{}, wrapUnavailable("scan "+prefix, err))
				return
			}
			for _, p := range out.Parameters {
				raw := paramstore.RawParameter{
					Name:  aws.ToString(p.Name),
					Value: aws.ToString(p.Value),
				}
				if !yield(raw, nil) {
					return
				}
			}
			if out.NextToken == nil {
				return
			}
			token = out.NextToken
		}
	}
}

// Get reads and decrypts a single parameter. Absence is not an error.
func (s *Store) Get(ctx context.Context, path string) (string, bool, error) {
	if err := s.ensureClient(ctx); err != nil {
		return "", false, err
	}
	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(path),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", false, nil
		}
		return "", false, wrapUnavailable("get "+path, err)
	}
	if out.Parameter == nil {
		return "", false, nil
	}
	return aws.ToString(out.Parameter.Value), true, nil
}

// Put upserts a SecureString parameter, choosing the tier by value size.
// SSM refuses to downgrade an existing Advanced parameter to Standard; when
// that specific failure comes back the parameter is deleted and the put
// retried once. Every other failure propagates unchanged.
func (s *Store) Put(ctx context.Context, path, value string) error {
	if err := s.ensureClient(ctx); err != nil {
		return err
	}
	err := s.put(ctx, path, value)
	if err == nil {
		return nil
	}
	if !isTierDowngrade(err) {
		return wrapUnavailable("put "+path, err)
	}

	s.logger.Debug("recreating parameter to downgrade tier", logger.F("path", path))
	if _, derr := s.client.DeleteParameter(ctx, &ssm.DeleteParameterInput{Name: aws.String(path)}); derr != nil {
		return wrapUnavailable("delete before tier downgrade "+path, derr)
	}
	if rerr := s.put(ctx, path, value); rerr != nil {
		return wrapUnavailable("put after tier downgrade "+path, rerr)
	}
	return nil
}

// Delete removes a parameter; an already-absent path is not an error.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := s.ensureClient(ctx); err != nil {
		return err
	}
	_, err := s.client.DeleteParameter(ctx, &ssm.DeleteParameterInput{Name: aws.String(path)})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return nil
		}
		return wrapUnavailable("delete "+path, err)
	}
	return nil
}

func (s *Store) put(ctx context.Context, path, value string) error {
	_, err := s.client.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      aws.String(path),
		Value:     aws.String(value),
		Type:      types.ParameterTypeSecureString,
		Overwrite: aws.Bool(true),
		Tier:      tierFor(value),
	})
	return err
}

func tierFor(value string) types.ParameterTier {
	if paramstore.TierFor(value) == paramstore.TierAdvanced {
		return types.ParameterTierAdvanced
	}
	return types.ParameterTierStandard
}

// isTierDowngrade matches the validation failure SSM returns when a Standard
// write targets an existing Advanced parameter.
func isTierDowngrade(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.ErrorCode() != "ValidationException" {
		return false
	}
	msg := strings.ToLower(apiErr.ErrorMessage())
	return strings.Contains(msg, "advanced-parameter tier") || strings.Contains(msg, "downgrade")
}

func wrapUnavailable(op string, err error) error {
	return fmt.Errorf("awsssm: %s: %w: %w", op, paramstore.ErrUnavailable, err)
}
