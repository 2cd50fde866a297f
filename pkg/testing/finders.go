package testing

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-drift/sprout/pkg/core"
	"github.com/go-drift/sprout/pkg/tree"
)

// Finder locates nodes in the widget tree.
type Finder interface {
	// Evaluate returns all matching nodes in paint order.
	Evaluate(rt *core.Runtime) []tree.Index
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	nodes  []tree.Index
	finder Finder
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() tree.Index {
	if len(r.nodes) == 0 {
		panic(fmt.Sprintf("Finder found no nodes: %s", r.describe()))
	}
	return r.nodes[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) tree.Index {
	if index < 0 || index >= len(r.nodes) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.nodes), r.describe()))
	}
	return r.nodes[index]
}

// All returns all matches in paint order.
func (r FinderResult) All() []tree.Index {
	return r.nodes
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.nodes)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.nodes) > 0
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// predicateFinder matches nodes satisfying fn.
type predicateFinder struct {
	fn   func(rt *core.Runtime, idx tree.Index) bool
	desc string
}

func (f *predicateFinder) Evaluate(rt *core.Runtime) []tree.Index {
	var results []tree.Index
	for _, idx := range rt.PaintOrder() {
		if f.fn(rt, idx) {
			results = append(results, idx)
		}
	}
	return results
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByPredicate returns a finder that matches nodes satisfying fn.
func ByPredicate(fn func(rt *core.Runtime, idx tree.Index) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

// ByType returns a finder that matches nodes whose widget is of type T.
func ByType[T core.Widget]() Finder {
	t := reflect.TypeFor[T]()
	return &predicateFinder{
		fn: func(rt *core.Runtime, idx tree.Index) bool {
			w := rt.Widget(idx)
			return w != nil && reflect.TypeOf(w) == t
		},
		desc: fmt.Sprintf("ByType(%s)", t),
	}
}

// ByKey returns a finder that matches nodes declared with key.
func ByKey(key string) Finder {
	return &predicateFinder{
		fn: func(rt *core.Runtime, idx tree.Index) bool {
			return rt.Key(idx) == key
		},
		desc: fmt.Sprintf("ByKey(%q)", key),
	}
}

// ByText returns a finder that matches nodes whose style text equals text.
func ByText(text string) Finder {
	return &predicateFinder{
		fn: func(rt *core.Runtime, idx tree.Index) bool {
			st := rt.Style(idx)
			return st != nil && st.Text == text
		},
		desc: fmt.Sprintf("ByText(%q)", text),
	}
}

// ByTextContaining returns a finder that matches nodes whose style text
// contains substring.
func ByTextContaining(substring string) Finder {
	return &predicateFinder{
		fn: func(rt *core.Runtime, idx tree.Index) bool {
			st := rt.Style(idx)
			return st != nil && st.Text != "" && strings.Contains(st.Text, substring)
		},
		desc: fmt.Sprintf("ByTextContaining(%q)", substring),
	}
}

// descendantFinder matches nodes satisfying matching below a node matched
// by of.
type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(rt *core.Runtime) []tree.Index {
	ancestors := make(map[tree.Index]struct{})
	for _, idx := range f.of.Evaluate(rt) {
		ancestors[idx] = struct{}{}
	}
	var results []tree.Index
	for _, candidate := range f.matching.Evaluate(rt) {
		if hasAncestorIn(rt, candidate, ancestors) {
			results = append(results, candidate)
		}
	}
	return results
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches nodes satisfying matching that
// are descendants of nodes matching of.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

// ancestorFinder matches nodes satisfying matching above a node matched by
// of.
type ancestorFinder struct {
	of       Finder
	matching Finder
}

func (f *ancestorFinder) Evaluate(rt *core.Runtime) []tree.Index {
	above := make(map[tree.Index]struct{})
	for _, idx := range f.of.Evaluate(rt) {
		current, ok := rt.Parent(idx)
		for ok {
			above[current] = struct{}{}
			current, ok = rt.Parent(current)
		}
	}
	var results []tree.Index
	for _, candidate := range f.matching.Evaluate(rt) {
		if _, ok := above[candidate]; ok {
			results = append(results, candidate)
		}
	}
	return results
}

func (f *ancestorFinder) Description() string {
	return fmt.Sprintf("Ancestor(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Ancestor returns a finder that matches nodes satisfying matching that are
// ancestors of nodes matching of.
func Ancestor(of, matching Finder) Finder {
	return &ancestorFinder{of: of, matching: matching}
}

func hasAncestorIn(rt *core.Runtime, idx tree.Index, set map[tree.Index]struct{}) bool {
	current, ok := rt.Parent(idx)
	for ok {
		if _, found := set[current]; found {
			return true
		}
		current, ok = rt.Parent(current)
	}
	return false
}
