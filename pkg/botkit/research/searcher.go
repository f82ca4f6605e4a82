package research

import (
	"context"
	"sync"

	"exchange-support-be/pkg/store"
)

// fanOut runs one search task per query in parallel. Individual task
// failures degrade result completeness, never correctness: successes are
// collected, failures logged, siblings never cancelled.
func (c *Controller) fanOut(ctx context.Context, queries []string) []store.RetrievalRecord {
	if len(queries) == 1 {
		return c.searchOne(ctx, queries[0])
	}

	type taskResult struct {
		index   int
		records []store.RetrievalRecord
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []taskResult
	)

	for i, query := range queries {
		wg.Add(1)
		go func(index int, q string) {
			defer wg.Done()
			records := c.searchOne(ctx, q)
			if len(records) == 0 {
				return
			}
			mu.Lock()
			results = append(results, taskResult{index: index, records: records})
			mu.Unlock()
		}(i, query)
	}
	wg.Wait()

	// Merge in query order so output is deterministic regardless of task
	// completion order.
	merged := make([]store.RetrievalRecord, 0)
	for i := range queries {
		for _, r := range results {
			if r.index == i {
				merged = append(merged, r.records...)
			}
		}
	}
	return merged
}

func (c *Controller) searchOne(ctx context.Context, query string) []store.RetrievalRecord {
	taskCtx, cancel := context.WithTimeout(ctx, c.cfg.QueryTimeout)
	defer cancel()

	records, err := c.searcher.Search(taskCtx, query)
	if err != nil {
		c.logger.Printf("[RESEARCH] Search task failed for %q: %v", query, err)
		return nil
	}
	return records
}

// dedupeByURL drops new records whose URL was already seen, either in the
// existing accumulated set or earlier in the new batch. Records without a
// URL are always kept.
func dedupeByURL(existing, incoming []store.RetrievalRecord) []store.RetrievalRecord {
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		if r.URL != "" {
			seen[r.URL] = true
		}
	}

	out := make([]store.RetrievalRecord, 0, len(incoming))
	for _, r := range incoming {
		if r.URL != "" {
			if seen[r.URL] {
				continue
			}
			seen[r.URL] = true
		}
		out = append(out, r)
	}
	return out
}
