package metadata

import "context"

// Mode describes the deployment state of a resource.
type Mode string

const (
	ModePlaceholder Mode = "placeholder"
	ModeDeployed    Mode = "deployed"
)

// Resource kinds surfaced by the deployment metadata snapshot.
const (
	KindFunction       = "Function"
	KindNextjsSite     = "NextjsSite"
	KindAstroSite      = "AstroSite"
	KindRemixSite      = "RemixSite"
	KindSolidStartSite = "SolidStartSite"
	KindSvelteKitSite  = "SvelteKitSite"
)

var siteKinds = map[string]struct{}{
	KindNextjsSite:     {},
	KindAstroSite:      {},
	KindRemixSite:      {},
	KindSolidStartSite: {},
	KindSvelteKitSite:  {},
}

// IsSiteKind reports whether kind is one of the supported SSR site constructs.
func IsSiteKind(kind string) bool {
	_, ok := siteKinds[kind]
	return ok
}

// Resource is one provisioned compute unit from a point-in-time snapshot.
// Functions identify themselves through Arn; sites expose the identifier of
// their server function through Server.
type Resource struct {
	Stack           string   `json:"stack"`
	Kind            string   `json:"type"`
	Arn             string   `json:"arn,omitempty"`
	Server          string   `json:"server,omitempty"`
	Secrets         []string `json:"secrets,omitempty"`
	PrefetchSecrets bool     `json:"prefetchSecrets,omitempty"`
	Mode            Mode     `json:"mode,omitempty"`
	Edge            bool     `json:"edge,omitempty"`
}

// UsesSecret reports whether the resource declares key among its secrets.
func (r Resource) UsesSecret(key string) bool {
	for _, s := range r.Secrets {
		if s == key {
			return true
		}
	}
	return false
}

// UsesAnySecret reports whether the resource declares any of the keys.
func (r Resource) UsesAnySecret(keys []string) bool {
	for _, key := range keys {
		if r.UsesSecret(key) {
			return true
		}
	}
	return false
}

// Provider produces a fresh deployment snapshot on every call. Implementations
// own no cache; the restart propagator relies on point-in-time reads.
type Provider interface {
	Snapshot(ctx context.Context) ([]Resource, error)
}

// Nop provider returns an empty snapshot.
type Nop struct{}

var _ Provider = (*Nop)(nil)

func (n *Nop) Snapshot(ctx context.Context) ([]Resource, error) { return nil, nil }
