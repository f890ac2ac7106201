package catalog

import (
	"slices"
	"sort"
)

// Catalog is an immutable, ordered collection of problems with lookup
// indices. A Catalog is safe to share between sessions and goroutines.
type Catalog struct {
	problems     []Problem
	byID         map[string]int
	byCategory   map[string][]int
	byDifficulty map[Difficulty][]int
	categories   []string
}

// New validates the problems and builds a catalog from them. Problem order
// is preserved. All authoring errors are reported together.
func New(problems ...Problem) (*Catalog, error) {
	if err := validateProblems(problems); err != nil {
		return nil, err
	}

	c := &Catalog{
		problems:     make([]Problem, len(problems)),
		byID:         make(map[string]int, len(problems)),
		byCategory:   make(map[string][]int),
		byDifficulty: make(map[Difficulty][]int),
	}
	for i, p := range problems {
		c.problems[i] = clone(p)
		c.byID[p.ID] = i
		c.byCategory[p.Category] = append(c.byCategory[p.Category], i)
		c.byDifficulty[p.Difficulty] = append(c.byDifficulty[p.Difficulty], i)
	}

	for cat := range c.byCategory {
		c.categories = append(c.categories, cat)
	}
	sort.Strings(c.categories)

	return c, nil
}

// Merge combines catalogs in order into a new catalog. Duplicate ids
// across catalogs are rejected.
func Merge(cats ...*Catalog) (*Catalog, error) {
	var all []Problem
	for _, c := range cats {
		if c == nil {
			continue
		}
		all = append(all, c.problems...)
	}
	return New(all...)
}

// Len returns the number of problems.
func (c *Catalog) Len() int {
	return len(c.problems)
}

// Problems returns a copy of all problems in catalog order.
func (c *Catalog) Problems() []Problem {
	out := make([]Problem, len(c.problems))
	for i, p := range c.problems {
		out[i] = clone(p)
	}
	return out
}

// ByID looks up a problem by id.
func (c *Catalog) ByID(id string) (Problem, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Problem{}, false
	}
	return clone(c.problems[i]), true
}

// Categories returns the distinct categories, sorted.
func (c *Catalog) Categories() []string {
	return slices.Clone(c.categories)
}

// ByCategory returns the problems in a category, in catalog order.
func (c *Catalog) ByCategory(category string) []Problem {
	return c.collect(c.byCategory[category])
}

// ByDifficulty returns the problems of a difficulty, in catalog order.
func (c *Catalog) ByDifficulty(d Difficulty) []Problem {
	return c.collect(c.byDifficulty[d])
}

// CountBy returns the number of problems per category and difficulty.
func (c *Catalog) CountBy() map[string]map[Difficulty]int {
	out := make(map[string]map[Difficulty]int, len(c.byCategory))
	for _, p := range c.problems {
		if out[p.Category] == nil {
			out[p.Category] = make(map[Difficulty]int)
		}
		out[p.Category][p.Difficulty]++
	}
	return out
}

func (c *Catalog) collect(idx []int) []Problem {
	out := make([]Problem, 0, len(idx))
	for _, i := range idx {
		out = append(out, clone(c.problems[i]))
	}
	return out
}

// clone copies the slice fields so callers cannot mutate catalog storage.
func clone(p Problem) Problem {
	p.Patterns = slices.Clone(p.Patterns)
	p.Hints = slices.Clone(p.Hints)
	p.Tags = slices.Clone(p.Tags)
	p.Choices = slices.Clone(p.Choices)
	return p
}
