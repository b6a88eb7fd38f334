// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package perils builds the crawler's search queries: it loads peril
// keywords, pairs them with the fixed state list, and renders each pair as
// a query string.
package perils

// Combination is one (state, keyword) pair.
type Combination struct {
	State   string
	Keyword string
}

// String renders the pair as a search query.
func (c Combination) String() string {
	return c.State + " " + c.Keyword
}

// Generate returns every (state, keyword) pair exactly once, with state in
// the outer loop and keyword in the inner loop. An empty input returns an
// *EmptyInputError rather than an empty result.
func Generate(states, keywords []string) ([]Combination, error) {
	if len(states) == 0 {
		return nil, &EmptyInputError{Input: "states"}
	}
	if len(keywords) == 0 {
		return nil, &EmptyInputError{Input: "keywords"}
	}

	out := make([]Combination, 0, len(states)*len(keywords))
	for _, s := range states {
		for _, k := range keywords {
			out = append(out, Combination{State: s, Keyword: k})
		}
	}
	return out, nil
}

// Queries renders combinations as query strings, preserving order.
func Queries(combos []Combination) []string {
	out := make([]string, len(combos))
	for i, c := range combos {
		out[i] = c.String()
	}
	return out
}
