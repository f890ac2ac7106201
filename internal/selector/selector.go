// Package selector filters a catalog and samples the ordered problem list
// for a session.
package selector

import (
	"math/rand/v2"
	"strings"

	"github.com/abhisek/codedrills/internal/catalog"
)

// stream is the fixed second PCG word; only the seed varies between runs.
const stream = 0x9e3779b97f4a7c15

// Filter selects the problems a session may draw from.
type Filter struct {
	// Categories to include. Empty, or containing "all", means every
	// category.
	Categories []string

	// Difficulty to include; DifficultyAll or empty means every difficulty.
	Difficulty catalog.Difficulty

	// RequireChoices keeps only problems answerable as multiple choice.
	RequireChoices bool
}

// Matches reports whether p passes the filter.
func (f Filter) Matches(p catalog.Problem) bool {
	if f.RequireChoices && !p.HasChoices() {
		return false
	}
	if f.Difficulty != "" && f.Difficulty != catalog.DifficultyAll && p.Difficulty != f.Difficulty {
		return false
	}
	if f.allCategories() {
		return true
	}
	for _, c := range f.Categories {
		if strings.EqualFold(c, p.Category) {
			return true
		}
	}
	return false
}

func (f Filter) allCategories() bool {
	if len(f.Categories) == 0 {
		return true
	}
	for _, c := range f.Categories {
		if strings.EqualFold(c, string(catalog.DifficultyAll)) {
			return true
		}
	}
	return false
}

// Filtered returns the problems passing the filter, in catalog order.
func Filtered(c *catalog.Catalog, f Filter) []catalog.Problem {
	candidates := c.Problems()
	if f.Difficulty.Valid() {
		candidates = c.ByDifficulty(f.Difficulty)
	}

	var out []catalog.Problem
	for _, p := range candidates {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Select samples min(count, |filtered|) problems without replacement.
// The result order is the play order and depends only on the catalog,
// the filter, count and seed. An empty result means nothing matched or
// count <= 0.
func Select(c *catalog.Catalog, f Filter, count int, seed uint64) []catalog.Problem {
	pool := Filtered(c, f)
	if count <= 0 || len(pool) == 0 {
		return nil
	}

	r := rand.New(rand.NewPCG(seed, stream))
	r.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	return pool[:min(count, len(pool))]
}

// NewSeed returns a fresh non-zero seed.
func NewSeed() uint64 {
	for {
		if s := rand.Uint64(); s != 0 {
			return s
		}
	}
}
