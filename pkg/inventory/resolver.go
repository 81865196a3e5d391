package inventory

import (
	"context"
	"sync"

	"github.com/openclimdata/subgrib/internal/logger"
	"github.com/openclimdata/subgrib/pkg/cache"
	"github.com/openclimdata/subgrib/pkg/httpc"
	"github.com/openclimdata/subgrib/pkg/model"
	"github.com/openclimdata/subgrib/pkg/source"
)

// DefaultConcurrency bounds parallel index fetches.
const DefaultConcurrency = 4

// IndexClient is the subset of the HTTP client used by the resolver.
type IndexClient interface {
	FetchIndex(ctx context.Context, identifier string) ([]byte, error)
}

var _ IndexClient = (*httpc.Client)(nil)

// Resolver builds the unified inventory for a request: one index fetch (or
// cache load) per resource, merged in resource order so the result is
// deterministic regardless of fetch scheduling.
type Resolver struct {
	Client IndexClient
	// Store persists parsed record sets; nil disables caching.
	Store *cache.Store
	// Concurrency bounds parallel index fetches; <=0 uses the default.
	Concurrency int
}

// Fetch resolves the request's index resources and returns the unified
// inventory.
func (r *Resolver) Fetch(ctx context.Context, req *model.Request) ([]model.Record, error) {
	resources, err := source.Resolve(req)
	if err != nil {
		return nil, err
	}

	sets := make([][]model.Record, len(resources))
	if err := r.fetchAll(ctx, resources, sets); err != nil {
		return nil, err
	}

	var unified []model.Record
	for _, set := range sets {
		unified = append(unified, set...)
	}
	logger.Debug("resolved inventory", logger.Fields{
		"indexes": len(resources),
		"records": len(unified),
	})
	return unified, nil
}

func (r *Resolver) fetchAll(ctx context.Context, resources []source.Resource, sets [][]model.Record) error {
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if concurrency > len(resources) {
		concurrency = len(resources)
	}

	tasks := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				set, err := r.fetchOne(ctx, resources[i])
				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
				} else {
					sets[i] = set
				}
				mu.Unlock()
			}
		}()
	}

	for i := range resources {
		tasks <- i
	}
	close(tasks)
	wg.Wait()
	return firstErr
}

func (r *Resolver) fetchOne(ctx context.Context, res source.Resource) ([]model.Record, error) {
	if r.Store != nil {
		if records, ok := r.Store.Load(res.Index); ok {
			logger.Debug("index cache hit", logger.Fields{"index": res.Index})
			return records, nil
		}
	}

	body, err := r.Client.FetchIndex(ctx, res.Index)
	if err != nil {
		return nil, err
	}
	records, err := ParseIndex(body, res.Data)
	if err != nil {
		return nil, err
	}

	if r.Store != nil {
		if err := r.Store.Save(res.Index, records); err != nil {
			// A failed cache write only costs the next run a refetch.
			logger.Warn("failed to cache index record set", logger.Fields{
				"index": res.Index,
				"error": err.Error(),
			})
		}
	}
	return records, nil
}
