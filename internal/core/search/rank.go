package search

import (
	"sort"
	"strings"

	"github.com/artpar/solarshop/internal/core/domain"
)

// Field weights. A term counts once per field it appears in.
const (
	WeightName        = 10
	WeightSKU         = 6
	WeightBrand       = 5
	WeightDescription = 2
	BonusExactSlug    = 25
)

// Result is a scored product.
type Result struct {
	Product *domain.Product `json:"product"`
	Score   int             `json:"score"`
}

// Score returns how well p matches q. Zero means no match.
func Score(q Query, p *domain.Product) int {
	if q.Empty() {
		return 0
	}
	name := strings.ToLower(p.Name)
	sku := strings.ToLower(p.SKU)
	brand := strings.ToLower(p.Brand)
	desc := strings.ToLower(p.Description)

	score := 0
	for _, term := range q.Terms {
		if strings.Contains(name, term) {
			score += WeightName
		}
		if sku != "" && strings.Contains(sku, term) {
			score += WeightSKU
		}
		if brand != "" && strings.Contains(brand, term) {
			score += WeightBrand
		}
		if strings.Contains(desc, term) {
			score += WeightDescription
		}
	}
	if score > 0 && p.Slug == domain.Slugify(q.Raw) {
		score += BonusExactSlug
	}
	return score
}

// Rank scores every candidate, drops non-matches and inactive products, and
// sorts by score, then featured, then name.
func Rank(q Query, candidates []domain.Product) []Result {
	results := make([]Result, 0, len(candidates))
	for i := range candidates {
		p := &candidates[i]
		if !p.Active {
			continue
		}
		if s := Score(q, p); s > 0 {
			results = append(results, Result{Product: p, Score: s})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Product.Featured != b.Product.Featured {
			return a.Product.Featured
		}
		return strings.ToLower(a.Product.Name) < strings.ToLower(b.Product.Name)
	})
	return results
}

// Limit truncates results to at most n entries. n <= 0 returns results unchanged.
func Limit(results []Result, n int) []Result {
	if n <= 0 || len(results) <= n {
		return results
	}
	return results[:n]
}

// MatchCategories returns categories whose name contains any query term.
func MatchCategories(q Query, categories []domain.Category) []domain.Category {
	var out []domain.Category
	for _, c := range categories {
		name := strings.ToLower(c.Name)
		for _, term := range q.Terms {
			if strings.Contains(name, term) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
