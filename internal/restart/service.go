package restart

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-stageconfig/pkg/config"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/compute"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/logger"
	"github.com/goliatone/go-stageconfig/pkg/interfaces/metadata"
)

// RestartedAtKey is the environment entry overwritten with the current
// instant so the compute platform treats the write as a config change.
const RestartedAtKey = "SST_RESTARTED_AT"

// Report classifies every dependent resource touched by a restart request.
// Only RestartedSites and RestartedFunctions were actually restarted; the
// other buckets are listed for visibility.
type Report struct {
	// PlaceholderSites are not deployed yet; nothing to restart.
	PlaceholderSites []metadata.Resource
	// PrefetchSites bake secrets at build time; a restart would not pick up
	// new values, so they are skipped.
	PrefetchSites []metadata.Resource
	// EdgeSites are out of reach of the regional restart mechanism.
	EdgeSites []metadata.Resource
	// RestartedSites are regional sites whose server function was restarted.
	RestartedSites []metadata.Resource
	// PrefetchFunctions bake secrets at build time; skipped like PrefetchSites.
	PrefetchFunctions []metadata.Resource
	// RestartedFunctions are plain functions that were restarted.
	RestartedFunctions []metadata.Resource
	// NotFound holds resources whose identifier no longer resolves; the
	// metadata snapshot was stale. Benign, never an error.
	NotFound []metadata.Resource
}

// Dependencies wires the compute API and metadata provider into the service.
type Dependencies struct {
	Config   config.Config
	Compute  compute.API
	Metadata metadata.Provider
	Logger   logger.Logger
}

// Service propagates secret changes to dependent compute resources.
type Service struct {
	cfg      config.Config
	compute  compute.API
	metadata metadata.Provider
	logger   logger.Logger
	now      func() time.Time
}

var (
	ErrMissingCompute  = errors.New("restart: compute API is required")
	ErrMissingMetadata = errors.New("restart: metadata provider is required")
)

// New builds the restart propagator.
func New(deps Dependencies) (*Service, error) {
	if deps.Compute == nil {
		return nil, ErrMissingCompute
	}
	if deps.Metadata == nil {
		return nil, ErrMissingMetadata
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if deps.Config.Restart.MaxWorkers <= 0 {
		deps.Config.Restart.MaxWorkers = config.Defaults().Restart.MaxWorkers
	}
	return &Service{
		cfg:      deps.Config,
		compute:  deps.Compute,
		metadata: deps.Metadata,
		logger:   deps.Logger,
		now:      time.Now,
	}, nil
}

type candidate struct {
	resource metadata.Resource
	id       string
	site     bool
}

type outcome struct {
	candidate candidate
	err       error
}

// Restart finds every resource that consumes one of the changed keys,
// classifies it, and restarts the eligible subset concurrently. Individual
// not-found failures are reported, not raised; any other failure surfaces
// through the returned error after every sibling attempt has settled.
func (s *Service) Restart(ctx context.Context, keys []string) (*Report, error) {
	report := &Report{}
	if len(keys) == 0 {
		return report, nil
	}

	resources, err := s.metadata.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("restart: metadata snapshot: %w", err)
	}

	var candidates []candidate
	servers := map[string]struct{}{}

	for _, r := range resources {
		if !metadata.IsSiteKind(r.Kind) || !r.UsesAnySecret(keys) {
			continue
		}
		if r.Server != "" {
			servers[r.Server] = struct{}{}
		}
		switch {
		case r.Mode == metadata.ModePlaceholder:
			report.PlaceholderSites = append(report.PlaceholderSites, r)
		case r.PrefetchSecrets:
			report.PrefetchSites = append(report.PrefetchSites, r)
		case r.Edge:
			report.EdgeSites = append(report.EdgeSites, r)
		default:
			candidates = append(candidates, candidate{resource: r, id: r.Server, site: true})
		}
	}

	for _, r := range resources {
		if r.Kind != metadata.KindFunction || !r.UsesAnySecret(keys) {
			continue
		}
		// A site's server function is handled through its site entry.
		if _, isServer := servers[r.Arn]; isServer {
			continue
		}
		if r.PrefetchSecrets {
			report.PrefetchFunctions = append(report.PrefetchFunctions, r)
			continue
		}
		candidates = append(candidates, candidate{resource: r, id: r.Arn})
	}

	errs := s.fanOut(ctx, candidates, report)

	sortResources(report.RestartedSites)
	sortResources(report.RestartedFunctions)
	sortResources(report.NotFound)

	return report, errors.Join(errs...)
}

// fanOut restarts every candidate concurrently and files each outcome into
// the report. One candidate's failure never blocks or cancels siblings.
func (s *Service) fanOut(ctx context.Context, candidates []candidate, report *Report) []error {
	if len(candidates) == 0 {
		return nil
	}

	jobs := make(chan candidate, len(candidates))
	results := make(chan outcome, len(candidates))
	var wg sync.WaitGroup
	workerCount := min(s.cfg.Restart.MaxWorkers, len(candidates))

	for range workerCount {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results <- outcome{candidate: job, err: s.restartFunction(ctx, job.id)}
			}
		}()
	}

	for _, c := range candidates {
		jobs <- c
	}
	close(jobs)
	wg.Wait()
	close(results)

	var errs []error
	for res := range results {
		switch {
		case res.err == nil:
			if res.candidate.site {
				report.RestartedSites = append(report.RestartedSites, res.candidate.resource)
			} else {
				report.RestartedFunctions = append(report.RestartedFunctions, res.candidate.resource)
			}
		case errors.Is(res.err, compute.ErrFunctionNotFound):
			s.logger.Warn("skipping stale resource",
				logger.F("id", res.candidate.id),
				logger.F("kind", res.candidate.resource.Kind))
			report.NotFound = append(report.NotFound, res.candidate.resource)
		default:
			errs = append(errs, fmt.Errorf("restart: %s: %w", res.candidate.id, res.err))
		}
	}
	return errs
}

// restartFunction reads the current configuration and writes it back with a
// fresh timestamp entry, forcing the platform to reload the function.
func (s *Service) restartFunction(ctx context.Context, id string) error {
	cfg, err := s.compute.GetConfiguration(ctx, id)
	if err != nil {
		return err
	}
	if cfg.Environment == nil {
		cfg.Environment = make(map[string]string, 1)
	}
	cfg.Environment[RestartedAtKey] = s.now().UTC().Format(time.RFC3339Nano)
	return s.compute.UpdateConfiguration(ctx, id, cfg)
}

func sortResources(resources []metadata.Resource) {
	sort.Slice(resources, func(i, j int) bool {
		a, b := resources[i], resources[j]
		ai, bi := a.Arn, b.Arn
		if a.Server != "" {
			ai = a.Server
		}
		if b.Server != "" {
			bi = b.Server
		}
		return ai < bi
	})
}
