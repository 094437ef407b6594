package resolver

import "strings"

// NameMatcher is one strategy for matching a normalized candidate name
// against an index. Strategies are chained exact → containment →
// token-overlap; the first hit wins, and within a strategy ties are broken
// by the first indexed entry encountered in insertion order. That tie-break
// is a deliberate simplification inherited from the data, kept swappable
// here rather than silently changed.
type NameMatcher interface {
	Match(normalized string, index *Index) (id string, ok bool)
}

// ExactMatcher matches on normalized-name equality.
type ExactMatcher struct{}

func (ExactMatcher) Match(normalized string, index *Index) (string, bool) {
	return index.Lookup(normalized)
}

// ContainmentMatcher accepts when the candidate contains, or is contained
// within, an indexed name.
type ContainmentMatcher struct{}

func (ContainmentMatcher) Match(normalized string, index *Index) (string, bool) {
	for _, entry := range index.Entries() {
		if strings.Contains(entry.Name, normalized) || strings.Contains(normalized, entry.Name) {
			return entry.ID, true
		}
	}
	return "", false
}

// TokenOverlapMatcher accepts when the shared word count reaches Threshold
// of the shorter name's word count.
type TokenOverlapMatcher struct {
	Threshold float64
}

func (m TokenOverlapMatcher) Match(normalized string, index *Index) (string, bool) {
	threshold := m.Threshold
	if threshold == 0 {
		threshold = 0.5
	}
	candidateWords := strings.Fields(normalized)
	if len(candidateWords) == 0 {
		return "", false
	}
	for _, entry := range index.Entries() {
		indexedWords := strings.Fields(entry.Name)
		if len(indexedWords) == 0 {
			continue
		}
		overlap := 0
		for _, w := range candidateWords {
			for _, iw := range indexedWords {
				if w == iw {
					overlap++
					break
				}
			}
		}
		shorter := len(candidateWords)
		if len(indexedWords) < shorter {
			shorter = len(indexedWords)
		}
		if float64(overlap) >= threshold*float64(shorter) && overlap > 0 {
			return entry.ID, true
		}
	}
	return "", false
}

// ChainMatcher tries each strategy in order; first success wins.
type ChainMatcher []NameMatcher

func (c ChainMatcher) Match(normalized string, index *Index) (string, bool) {
	for _, m := range c {
		if id, ok := m.Match(normalized, index); ok {
			return id, true
		}
	}
	return "", false
}

// DefaultMatcher is the standard three-tier chain.
func DefaultMatcher() NameMatcher {
	return ChainMatcher{ExactMatcher{}, ContainmentMatcher{}, TokenOverlapMatcher{}}
}
