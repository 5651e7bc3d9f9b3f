package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/artpar/solarshop/internal/shell/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = `
categories:
  - name: Solar Panels
    description: Mono and bifacial modules
    products:
      - name: Jinko Tiger Neo 580W
        sku: JKM580N
        brand: Jinko
        price: 45000
        stock: 40
        featured: true
        specs:
          wattage: 580W
      - name: Longi Hi-MO 6 550W
        brand: Longi
        price: 42000
        compare_at_price: 44000
        stock: 25
  - name: Inverters
    products:
      - name: Growatt SPF 6000
        brand: Growatt
        price: 185000
        stock: 5
faqs:
  - question: Do you install?
    answer: Yes, across Punjab.
testimonials:
  - author: Bilal
    location: Multan
    quote: Panels arrived in two days.
    rating: 5
`

func seedStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)

	f, err := ParseSeed(strings.NewReader(testSeed))
	require.NoError(t, err)

	res, err := Seed(ctx, s, f, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Categories: 2, Products: 3, FAQs: 1, Testimonials: 1}, res)

	cat, err := s.GetCategoryBySlug(ctx, "solar-panels")
	require.NoError(t, err)
	assert.Equal(t, 1, cat.SortOrder)

	p, err := s.GetProductBySlug(ctx, "jinko-tiger-neo-580w")
	require.NoError(t, err)
	assert.Equal(t, cat.ReferenceID, p.CategoryID)
	assert.Equal(t, "580W", p.Specs["wattage"])
	assert.True(t, p.Featured)

	faqs, err := s.ListFAQs(ctx, true, store.DefaultListOptions())
	require.NoError(t, err)
	assert.Len(t, faqs, 1)

	testimonials, err := s.ListTestimonials(ctx, true, store.DefaultListOptions())
	require.NoError(t, err)
	assert.Len(t, testimonials, 1)
}

func TestSeed_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)

	f, err := ParseSeed(strings.NewReader(testSeed))
	require.NoError(t, err)

	_, err = Seed(ctx, s, f, discardLogger())
	require.NoError(t, err)

	res, err := Seed(ctx, s, f, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, SeedResult{}, res)
}

func TestSeed_InvalidProductRollsBack(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)

	f, err := ParseSeed(strings.NewReader(`
categories:
  - name: Batteries
    products:
      - name: Tesla Powerwall
        price: 100
        compare_at_price: 50
`))
	require.NoError(t, err)

	_, err = Seed(ctx, s, f, discardLogger())
	require.Error(t, err)

	categories, err := s.ListCategories(ctx, store.DefaultListOptions())
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestParseSeed_UnknownField(t *testing.T) {
	_, err := ParseSeed(strings.NewReader("categories:\n  - name: Panels\n    colour: blue\n"))
	assert.Error(t, err)
}

func TestParseSeed_Empty(t *testing.T) {
	f, err := ParseSeed(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Categories)
}
