package search

import (
	"testing"

	"github.com/artpar/solarshop/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{"lowercases and splits", "Jinko 550W Panel", []string{"jinko", "550w", "panel"}},
		{"drops short terms", "a 5 kw inverter", []string{"kw", "inverter"}},
		{"dedupes", "panel PANEL panel", []string{"panel"}},
		{"splits on punctuation", "lithium-ion/LFP", []string{"lithium", "ion", "lfp"}},
		{"empty", "   ", nil},
		{"caps terms", "aa bb cc dd ee ff gg hh ii jj", []string{"aa", "bb", "cc", "dd", "ee", "ff", "gg", "hh"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ParseQuery(tt.raw)
			assert.Equal(t, tt.expected, q.Terms)
		})
	}
}

func catalog() []domain.Product {
	return []domain.Product{
		{ReferenceID: "prod_1", Name: "Hybrid Inverter 6kW", Slug: "hybrid-inverter-6kw", Brand: "Growatt", Active: true},
		{ReferenceID: "prod_2", Name: "Mono Panel 550W", Slug: "mono-panel-550w", Brand: "Jinko", SKU: "JK-550", Description: "Works with any hybrid inverter", Active: true},
		{ReferenceID: "prod_3", Name: "Lithium Battery", Slug: "lithium-battery", Brand: "Pylontech", Description: "pairs with an inverter", Active: true, Featured: true},
		{ReferenceID: "prod_4", Name: "Retired Inverter", Slug: "retired-inverter", Active: false},
		{ReferenceID: "prod_5", Name: "Cable Kit", Slug: "cable-kit", Active: true},
	}
}

func TestRank_OrdersByScore(t *testing.T) {
	results := Rank(ParseQuery("inverter"), catalog())
	require.Len(t, results, 3)

	assert.Equal(t, "prod_1", results[0].Product.ReferenceID)
	assert.Equal(t, WeightName, results[0].Score)
	// equal description scores: featured wins
	assert.Equal(t, "prod_3", results[1].Product.ReferenceID)
	assert.Equal(t, "prod_2", results[2].Product.ReferenceID)
}

func TestRank_SKU(t *testing.T) {
	results := Rank(ParseQuery("jk"), catalog())
	require.Len(t, results, 1)
	assert.Equal(t, "prod_2", results[0].Product.ReferenceID)
	assert.Equal(t, WeightSKU, results[0].Score)
}

func TestRank_ExactSlugBonus(t *testing.T) {
	results := Rank(ParseQuery("Cable Kit"), catalog())
	require.Len(t, results, 1)
	assert.Equal(t, 2*WeightName+BonusExactSlug, results[0].Score)
}

func TestRank_EmptyQuery(t *testing.T) {
	assert.Empty(t, Rank(ParseQuery("x"), catalog()))
}

func TestLimit(t *testing.T) {
	results := Rank(ParseQuery("inverter"), catalog())
	assert.Len(t, Limit(results, 2), 2)
	assert.Len(t, Limit(results, 0), 3)
	assert.Len(t, Limit(results, 10), 3)
}

func TestMatchCategories(t *testing.T) {
	cats := []domain.Category{{Name: "Solar Panels"}, {Name: "Inverters"}, {Name: "Batteries"}}
	got := MatchCategories(ParseQuery("panel battery"), cats)
	require.Len(t, got, 1)
	assert.Equal(t, "Solar Panels", got[0].Name)
}
