package paramstore

import (
	"context"
	"errors"
	"iter"
)

// Tier is the backend storage class for a parameter value.
type Tier string

const (
	TierStandard Tier = "Standard"
	TierAdvanced Tier = "Advanced"
)

// StandardTierMaxBytes is the largest value the Standard tier accepts.
// Anything larger must be written with the Advanced tier.
const StandardTierMaxBytes = 4096

// TierFor selects the storage tier for a value by size.
func TierFor(value string) Tier {
	if len(value) > StandardTierMaxBytes {
		return TierAdvanced
	}
	return TierStandard
}

// RawParameter is one decrypted record produced by a prefix scan.
type RawParameter struct {
	Name  string
	Value string
}

var (
	// ErrUnavailable wraps any backend failure not otherwise classified.
	ErrUnavailable = errors.New("paramstore: backend unavailable")
)

// Store is the hierarchical key-value contract consumed by the resolver.
//
// Scan yields decrypted records under prefix, transparently following
// backend pagination. The sequence is restartable from scratch but holds no
// cursor across calls; a failed page surfaces as a non-nil error from yield.
// Get reports presence via the bool; absence is not an error. Put upserts
// and owns tier selection plus any tier-conflict recovery. Delete is
// idempotent from the caller's perspective.
type Store interface {
	Scan(ctx context.Context, prefix string) iter.Seq2[RawParameter, error]
	Get(ctx context.Context, path string) (string, bool, error)
	Put(ctx context.Context, path, value string) error
	Delete(ctx context.Context, path string) error
}

// Nop store reports every path as absent and ignores writes.
type Nop struct{}

var _ Store = (*Nop)(nil)

func (n *Nop) Scan(ctx context.Context, prefix string) iter.Seq2[RawParameter, error] {
	return func(yield func(RawParameter, error) bool) {}
}

func (n *Nop) Get(ctx context.Context, path string) (string, bool, error) { return "", false, nil }
func (n *Nop) Put(ctx context.Context, path, value string) error          { return nil }
func (n *Nop) Delete(ctx context.Context, path string) error              { return nil }
