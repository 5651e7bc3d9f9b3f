package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/artpar/solarshop/internal/core/domain"
	"github.com/artpar/solarshop/internal/shell/store"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Seed File
// =============================================================================

// SeedFile is the YAML catalog loaded by `solarshop -seed`.
type SeedFile struct {
	Categories   []SeedCategory    `yaml:"categories"`
	FAQs         []SeedFAQ         `yaml:"faqs"`
	Testimonials []SeedTestimonial `yaml:"testimonials"`
}

// SeedCategory is a category with its products.
type SeedCategory struct {
	Name        string        `yaml:"name"`
	Slug        string        `yaml:"slug"`
	Description string        `yaml:"description"`
	ImageURL    string        `yaml:"image_url"`
	SortOrder   int           `yaml:"sort_order"`
	Products    []SeedProduct `yaml:"products"`
}

// SeedProduct is a catalog product. Prices are whole currency units.
type SeedProduct struct {
	Name           string            `yaml:"name"`
	Slug           string            `yaml:"slug"`
	SKU            string            `yaml:"sku"`
	Brand          string            `yaml:"brand"`
	Description    string            `yaml:"description"`
	Price          int64             `yaml:"price"`
	CompareAtPrice int64             `yaml:"compare_at_price"`
	Stock          int               `yaml:"stock"`
	Images         []string          `yaml:"images"`
	Specs          map[string]string `yaml:"specs"`
	Featured       bool              `yaml:"featured"`
}

// SeedFAQ is a published FAQ entry.
type SeedFAQ struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// SeedTestimonial is a published testimonial.
type SeedTestimonial struct {
	Author   string `yaml:"author"`
	Location string `yaml:"location"`
	Quote    string `yaml:"quote"`
	Rating   int    `yaml:"rating"`
}

// SeedResult counts what a seed run created.
type SeedResult struct {
	Categories   int
	Products     int
	FAQs         int
	Testimonials int
}

// =============================================================================
// Seeding
// =============================================================================

// ParseSeed decodes a seed file, rejecting unknown keys.
func ParseSeed(r io.Reader) (*SeedFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f SeedFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &f, nil
}

// Seed loads f into s in one transaction. Categories and products whose
// slug already exists are skipped, so re-running a seed is safe. FAQs and
// testimonials are only loaded into an empty table.
func Seed(ctx context.Context, s store.Store, f *SeedFile, logger *slog.Logger) (SeedResult, error) {
	var res SeedResult

	err := s.WithTx(ctx, func(tx store.Store) error {
		for i, sc := range f.Categories {
			cat, created, err := seedCategory(ctx, tx, sc, i)
			if err != nil {
				return err
			}
			if created {
				res.Categories++
			}

			for _, sp := range sc.Products {
				created, err := seedProduct(ctx, tx, cat.ReferenceID, sp)
				if err != nil {
					return err
				}
				if created {
					res.Products++
				}
			}
		}

		n, err := seedFAQs(ctx, tx, f.FAQs)
		if err != nil {
			return err
		}
		res.FAQs = n

		n, err = seedTestimonials(ctx, tx, f.Testimonials)
		if err != nil {
			return err
		}
		res.Testimonials = n
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	logger.Info("seed complete",
		"categories", res.Categories,
		"products", res.Products,
		"faqs", res.FAQs,
		"testimonials", res.Testimonials,
	)
	return res, nil
}

func seedCategory(ctx context.Context, tx store.Store, sc SeedCategory, index int) (*domain.Category, bool, error) {
	cat, err := domain.NewCategory(sc.Name)
	if err != nil {
		return nil, false, fmt.Errorf("category %q: %w", sc.Name, err)
	}
	if sc.Slug != "" {
		cat.Slug = domain.Slugify(sc.Slug)
	}

	existing, err := tx.GetCategoryBySlug(ctx, cat.Slug)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	cat.Description = sc.Description
	cat.ImageURL = sc.ImageURL
	cat.SortOrder = sc.SortOrder
	if cat.SortOrder == 0 {
		cat.SortOrder = index + 1
	}
	if err := tx.CreateCategory(ctx, cat); err != nil {
		return nil, false, err
	}
	return cat, true, nil
}

func seedProduct(ctx context.Context, tx store.Store, categoryID string, sp SeedProduct) (bool, error) {
	p, err := domain.NewProduct(categoryID, sp.Name, sp.Price)
	if err != nil {
		return false, fmt.Errorf("product %q: %w", sp.Name, err)
	}
	if sp.Slug != "" {
		p.Slug = domain.Slugify(sp.Slug)
	}

	if _, err := tx.GetProductBySlug(ctx, p.Slug); err == nil {
		return false, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	p.SKU = sp.SKU
	p.Brand = sp.Brand
	p.Description = sp.Description
	p.CompareAtPrice = sp.CompareAtPrice
	p.Stock = sp.Stock
	p.Images = sp.Images
	p.Specs = sp.Specs
	p.Featured = sp.Featured
	if err := p.Validate(); err != nil {
		return false, fmt.Errorf("product %q: %w", sp.Name, err)
	}

	if err := tx.CreateProduct(ctx, p); err != nil {
		return false, err
	}
	return true, nil
}

func seedFAQs(ctx context.Context, tx store.Store, faqs []SeedFAQ) (int, error) {
	if len(faqs) == 0 {
		return 0, nil
	}
	existing, err := tx.ListFAQs(ctx, false, store.ListOptions{Limit: 1})
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for i, sf := range faqs {
		faq, err := domain.NewFAQ(sf.Question, sf.Answer)
		if err != nil {
			return 0, fmt.Errorf("faq %d: %w", i+1, err)
		}
		faq.SortOrder = i + 1
		faq.Published = true
		if err := tx.CreateFAQ(ctx, faq); err != nil {
			return 0, err
		}
	}
	return len(faqs), nil
}

func seedTestimonials(ctx context.Context, tx store.Store, testimonials []SeedTestimonial) (int, error) {
	if len(testimonials) == 0 {
		return 0, nil
	}
	existing, err := tx.ListTestimonials(ctx, false, store.ListOptions{Limit: 1})
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for i, st := range testimonials {
		t, err := domain.NewTestimonial(st.Author, st.Quote, st.Rating)
		if err != nil {
			return 0, fmt.Errorf("testimonial %d: %w", i+1, err)
		}
		t.Location = st.Location
		t.Published = true
		if err := tx.CreateTestimonial(ctx, t); err != nil {
			return 0, err
		}
	}
	return len(testimonials), nil
}
