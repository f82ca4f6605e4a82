package fusion

import (
	"sort"

	"exchange-support-be/pkg/store"
)

// Options controls how the two result lists are combined.
type Options struct {
	WeightVector  float64
	WeightKeyword float64
	TopK          int
	UseRRF        bool

	// RRFK is the rank-smoothing constant for reciprocal rank fusion.
	RRFK int

	// KeywordNormFloor is the minimum divisor for keyword score
	// normalization. A single low-confidence keyword hit must not look
	// dominant just because it happens to be the max observed.
	KeywordNormFloor float64
}

// DefaultOptions returns the fusion parameters used by the FAQ specialist
// and the research loop.
func DefaultOptions() Options {
	return Options{
		WeightVector:     0.6,
		WeightKeyword:    0.4,
		TopK:             10,
		UseRRF:           true,
		RRFK:             60,
		KeywordNormFloor: 10,
	}
}

// Fuse combines a vector-similarity result list and a keyword result list
// into one ranked list. If one list is empty the other's top-K is returned
// unmodified.
func Fuse(vectorResults, keywordResults []store.RetrievalRecord, opts Options) []store.RetrievalRecord {
	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions().TopK
	}
	if opts.RRFK <= 0 {
		opts.RRFK = DefaultOptions().RRFK
	}

	if len(vectorResults) == 0 {
		return topK(keywordResults, opts.TopK)
	}
	if len(keywordResults) == 0 {
		return topK(vectorResults, opts.TopK)
	}

	if opts.UseRRF {
		return fuseRRF(vectorResults, keywordResults, opts)
	}
	return fuseWeighted(vectorResults, keywordResults, opts)
}

type fusedEntry struct {
	record store.RetrievalRecord
	score  float64
	order  int
}

// compositeKey deduplicates across lists: the same snippet retrieved by
// both legs must contribute to a single entry. Truncation counts runes so
// Korean snippets never split mid-character.
func compositeKey(r store.RetrievalRecord) string {
	text := r.Text
	if runes := []rune(text); len(runes) > 50 {
		text = string(runes[:50])
	}
	return r.Source + "|" + text
}

func fuseRRF(vectorResults, keywordResults []store.RetrievalRecord, opts Options) []store.RetrievalRecord {
	entries := make(map[string]*fusedEntry)
	order := 0

	accumulate := func(results []store.RetrievalRecord) {
		for rank, r := range results {
			key := compositeKey(r)
			contribution := 1.0 / float64(opts.RRFK+rank+1)
			if e, ok := entries[key]; ok {
				e.score += contribution
				continue
			}
			entries[key] = &fusedEntry{record: r, score: contribution, order: order}
			order++
		}
	}

	accumulate(vectorResults)
	accumulate(keywordResults)

	return rank(entries, opts.TopK)
}

func fuseWeighted(vectorResults, keywordResults []store.RetrievalRecord, opts Options) []store.RetrievalRecord {
	entries := make(map[string]*fusedEntry)
	order := 0

	// Vector scores arrive normalized to [0,1] from the embedding layer.
	for _, r := range vectorResults {
		key := compositeKey(r)
		contribution := r.Score * opts.WeightVector
		if e, ok := entries[key]; ok {
			e.score += contribution
			continue
		}
		entries[key] = &fusedEntry{record: r, score: contribution, order: order}
		order++
	}

	// Keyword scores are raw rank scores. Normalize against the observed
	// maximum, but never against less than the floor.
	maxKeyword := 0.0
	for _, r := range keywordResults {
		if r.Score > maxKeyword {
			maxKeyword = r.Score
		}
	}
	divisor := maxKeyword
	if divisor < opts.KeywordNormFloor {
		divisor = opts.KeywordNormFloor
	}

	for _, r := range keywordResults {
		normalized := 0.0
		if divisor > 0 {
			normalized = r.Score / divisor
		}
		if normalized > 1 {
			normalized = 1
		}
		if normalized < 0 {
			normalized = 0
		}
		key := compositeKey(r)
		contribution := normalized * opts.WeightKeyword
		if e, ok := entries[key]; ok {
			e.score += contribution
			continue
		}
		entries[key] = &fusedEntry{record: r, score: contribution, order: order}
		order++
	}

	return rank(entries, opts.TopK)
}

func rank(entries map[string]*fusedEntry, limit int) []store.RetrievalRecord {
	ranked := make([]*fusedEntry, 0, len(entries))
	for _, e := range entries {
		ranked = append(ranked, e)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].order < ranked[j].order
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]store.RetrievalRecord, len(ranked))
	for i, e := range ranked {
		out[i] = e.record
		out[i].Score = e.score
	}
	return out
}

func topK(results []store.RetrievalRecord, limit int) []store.RetrievalRecord {
	if len(results) <= limit {
		return results
	}
	return results[:limit]
}
