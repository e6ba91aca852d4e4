package service

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
)

const (
	DefaultRelatedLimit = 4
	MaxRelatedLimit     = 20

	// relatedPoolFactor sizes the random fallback pool relative to the limit.
	relatedPoolFactor = 5
	// relatedCandidateCap bounds how many category siblings are scored.
	relatedCandidateCap = 200

	keywordWeight = 2
)

// NormalizeRelatedLimit maps a missing, non-positive or oversized limit into
// the supported range.
func NormalizeRelatedLimit(limit int) int {
	if limit <= 0 {
		return DefaultRelatedLimit
	}

	return min(limit, MaxRelatedLimit)
}

// Keywords returns the lowercased words of title longer than three characters.
func Keywords(title string) []string {
	words := strings.Fields(strings.ToLower(title))

	res := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) > 3 {
			res = append(res, w)
		}
	}

	return res
}

// RankRelated scores candidates by how many source keywords appear in their
// titles, breaks ties with jitter and returns at most limit products. The
// source product is never part of the result.
func RankRelated(source domain.Product, candidates []domain.Product, limit int, jitter func() float64) []domain.Product {
	keywords := Keywords(source.Title)

	type scored struct {
		product domain.Product
		score   float64
	}

	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == source.ID {
			continue
		}

		title := strings.ToLower(c.Title)
		score := 0
		for _, k := range keywords {
			if strings.Contains(title, k) {
				score += keywordWeight
			}
		}

		ranked = append(ranked, scored{product: c, score: float64(score) + jitter()})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	res := make([]domain.Product, len(ranked))
	for i, r := range ranked {
		res[i] = r.product
	}

	return res
}
