package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/artpar/solarshop/internal/core/domain"
)

// =============================================================================
// Media
// =============================================================================

// mediaRow represents a media asset row in the database.
type mediaRow struct {
	ID          int    `db:"id"`
	ReferenceID string `db:"reference_id"`
	Filename    string `db:"filename"`
	StorageKey  string `db:"storage_key"`
	URL         string `db:"url"`
	ExternalURL string `db:"external_url"`
	ContentType string `db:"content_type"`
	Size        int64  `db:"size"`
	CreatedAt   string `db:"created_at"`
}

func rowToMedia(row *mediaRow) *domain.MediaAsset {
	return &domain.MediaAsset{
		ID:          row.ID,
		ReferenceID: row.ReferenceID,
		Filename:    row.Filename,
		StorageKey:  row.StorageKey,
		URL:         row.URL,
		ExternalURL: row.ExternalURL,
		ContentType: row.ContentType,
		Size:        row.Size,
		CreatedAt:   parseTime(row.CreatedAt),
	}
}

func createMedia(ctx context.Context, exec executor, asset *domain.MediaAsset) error {
	query := `
		INSERT INTO media_assets (
			reference_id, filename, storage_key, url, external_url, content_type, size, created_at
		) VALUES (
			:reference_id, :filename, :storage_key, :url, :external_url, :content_type, :size, :created_at
		)`

	row := map[string]any{
		"reference_id": asset.ReferenceID,
		"filename":     asset.Filename,
		"storage_key":  asset.StorageKey,
		"url":          asset.URL,
		"external_url": asset.ExternalURL,
		"content_type": asset.ContentType,
		"size":         asset.Size,
		"created_at":   formatTime(asset.CreatedAt),
	}

	result, err := exec.NamedExecContext(ctx, query, row)
	if err != nil {
		if isUniqueViolation(err, "media_assets.reference_id") || isUniqueViolation(err, "media_assets.storage_key") {
			return NewStoreError("CreateMedia", "media", asset.ReferenceID, "media asset already exists", ErrDuplicateID)
		}
		return NewStoreError("CreateMedia", "media", asset.ReferenceID, err.Error(), err)
	}

	id, _ := result.LastInsertId()
	asset.ID = int(id)
	return nil
}

func getMedia(ctx context.Context, exec executor, id string) (*domain.MediaAsset, error) {
	var row mediaRow
	err := exec.GetContext(ctx, &row, `SELECT * FROM media_assets WHERE reference_id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetMedia", "media", id, "media not found", ErrNotFound)
		}
		return nil, NewStoreError("GetMedia", "media", id, err.Error(), err)
	}
	return rowToMedia(&row), nil
}

func deleteMedia(ctx context.Context, exec executor, id string) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM media_assets WHERE reference_id = ?`, id)
	if err != nil {
		return NewStoreError("DeleteMedia", "media", id, err.Error(), err)
	}
	return checkAffected(result, "DeleteMedia", "media", id)
}

func listMedia(ctx context.Context, exec executor, opts ListOptions) ([]domain.MediaAsset, error) {
	opts = opts.Normalize()

	var rows []mediaRow
	err := exec.SelectContext(ctx, &rows,
		`SELECT * FROM media_assets ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset)
	if err != nil {
		return nil, NewStoreError("ListMedia", "media", "", err.Error(), err)
	}

	assets := make([]domain.MediaAsset, 0, len(rows))
	for i := range rows {
		assets = append(assets, *rowToMedia(&rows[i]))
	}
	return assets, nil
}

// =============================================================================
// FAQ
// =============================================================================

// faqRow represents an FAQ row in the database.
type faqRow struct {
	ID          int    `db:"id"`
	ReferenceID string `db:"reference_id"`
	Question    string `db:"question"`
	Answer      string `db:"answer"`
	SortOrder   int    `db:"sort_order"`
	Published   bool   `db:"published"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func faqToRow(f *domain.FAQ) map[string]any {
	return map[string]any{
		"reference_id": f.ReferenceID,
		"question":     f.Question,
		"answer":       f.Answer,
		"sort_order":   f.SortOrder,
		"published":    f.Published,
		"created_at":   formatTime(f.CreatedAt),
		"updated_at":   formatTime(f.UpdatedAt),
	}
}

func rowToFAQ(row *faqRow) *domain.FAQ {
	return &domain.FAQ{
		ID:          row.ID,
		ReferenceID: row.ReferenceID,
		Question:    row.Question,
		Answer:      row.Answer,
		SortOrder:   row.SortOrder,
		Published:   row.Published,
		CreatedAt:   parseTime(row.CreatedAt),
		UpdatedAt:   parseTime(row.UpdatedAt),
	}
}

func createFAQ(ctx context.Context, exec executor, faq *domain.FAQ) error {
	query := `
		INSERT INTO faqs (reference_id, question, answer, sort_order, published, created_at, updated_at)
		VALUES (:reference_id, :question, :answer, :sort_order, :published, :created_at, :updated_at)`

	result, err := exec.NamedExecContext(ctx, query, faqToRow(faq))
	if err != nil {
		if isUniqueViolation(err, "faqs.reference_id") {
			return NewStoreError("CreateFAQ", "faq", faq.ReferenceID, "faq with this ID already exists", ErrDuplicateID)
		}
		return NewStoreError("CreateFAQ", "faq", faq.ReferenceID, err.Error(), err)
	}

	id, _ := result.LastInsertId()
	faq.ID = int(id)
	return nil
}

func getFAQ(ctx context.Context, exec executor, id string) (*domain.FAQ, error) {
	var row faqRow
	err := exec.GetContext(ctx, &row, `SELECT * FROM faqs WHERE reference_id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetFAQ", "faq", id, "faq not found", ErrNotFound)
		}
		return nil, NewStoreError("GetFAQ", "faq", id, err.Error(), err)
	}
	return rowToFAQ(&row), nil
}

func updateFAQ(ctx context.Context, exec executor, faq *domain.FAQ) error {
	query := `
		UPDATE faqs SET
			question = :question,
			answer = :answer,
			sort_order = :sort_order,
			published = :published,
			updated_at = :updated_at
		WHERE reference_id = :reference_id`

	result, err := exec.NamedExecContext(ctx, query, faqToRow(faq))
	if err != nil {
		return NewStoreError("UpdateFAQ", "faq", faq.ReferenceID, err.Error(), err)
	}
	return checkAffected(result, "UpdateFAQ", "faq", faq.ReferenceID)
}

func deleteFAQ(ctx context.Context, exec executor, id string) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM faqs WHERE reference_id = ?`, id)
	if err != nil {
		return NewStoreError("DeleteFAQ", "faq", id, err.Error(), err)
	}
	return checkAffected(result, "DeleteFAQ", "faq", id)
}

func listFAQs(ctx context.Context, exec executor, publishedOnly bool, opts ListOptions) ([]domain.FAQ, error) {
	opts = opts.Normalize()

	query := `SELECT * FROM faqs`
	if publishedOnly {
		query += ` WHERE published = 1`
	}
	query += ` ORDER BY sort_order ASC, id ASC LIMIT ? OFFSET ?`

	var rows []faqRow
	if err := exec.SelectContext(ctx, &rows, query, opts.Limit, opts.Offset); err != nil {
		return nil, NewStoreError("ListFAQs", "faq", "", err.Error(), err)
	}

	faqs := make([]domain.FAQ, 0, len(rows))
	for i := range rows {
		faqs = append(faqs, *rowToFAQ(&rows[i]))
	}
	return faqs, nil
}

// =============================================================================
// Testimonial
// =============================================================================

// testimonialRow represents a testimonial row in the database.
type testimonialRow struct {
	ID          int    `db:"id"`
	ReferenceID string `db:"reference_id"`
	Author      string `db:"author"`
	Location    string `db:"location"`
	Quote       string `db:"quote"`
	Rating      int    `db:"rating"`
	Published   bool   `db:"published"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func testimonialToRow(t *domain.Testimonial) map[string]any {
	return map[string]any{
		"reference_id": t.ReferenceID,
		"author":       t.Author,
		"location":     t.Location,
		"quote":        t.Quote,
		"rating":       t.Rating,
		"published":    t.Published,
		"created_at":   formatTime(t.CreatedAt),
		"updated_at":   formatTime(t.UpdatedAt),
	}
}

func rowToTestimonial(row *testimonialRow) *domain.Testimonial {
	return &domain.Testimonial{
		ID:          row.ID,
		ReferenceID: row.ReferenceID,
		Author:      row.Author,
		Location:    row.Location,
		Quote:       row.Quote,
		Rating:      row.Rating,
		Published:   row.Published,
		CreatedAt:   parseTime(row.CreatedAt),
		UpdatedAt:   parseTime(row.UpdatedAt),
	}
}

func createTestimonial(ctx context.Context, exec executor, t *domain.Testimonial) error {
	query := `
		INSERT INTO testimonials (reference_id, author, location, quote, rating, published, created_at, updated_at)
		VALUES (:reference_id, :author, :location, :quote, :rating, :published, :created_at, :updated_at)`

	result, err := exec.NamedExecContext(ctx, query, testimonialToRow(t))
	if err != nil {
		if isUniqueViolation(err, "testimonials.reference_id") {
			return NewStoreError("CreateTestimonial", "testimonial", t.ReferenceID, "testimonial with this ID already exists", ErrDuplicateID)
		}
		return NewStoreError("CreateTestimonial", "testimonial", t.ReferenceID, err.Error(), err)
	}

	id, _ := result.LastInsertId()
	t.ID = int(id)
	return nil
}

func getTestimonial(ctx context.Context, exec executor, id string) (*domain.Testimonial, error) {
	var row testimonialRow
	err := exec.GetContext(ctx, &row, `SELECT * FROM testimonials WHERE reference_id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetTestimonial", "testimonial", id, "testimonial not found", ErrNotFound)
		}
		return nil, NewStoreError("GetTestimonial", "testimonial", id, err.Error(), err)
	}
	return rowToTestimonial(&row), nil
}

func updateTestimonial(ctx context.Context, exec executor, t *domain.Testimonial) error {
	query := `
		UPDATE testimonials SET
			author = :author,
			location = :location,
			quote = :quote,
			rating = :rating,
			published = :published,
			updated_at = :updated_at
		WHERE reference_id = :reference_id`

	result, err := exec.NamedExecContext(ctx, query, testimonialToRow(t))
	if err != nil {
		return NewStoreError("UpdateTestimonial", "testimonial", t.ReferenceID, err.Error(), err)
	}
	return checkAffected(result, "UpdateTestimonial", "testimonial", t.ReferenceID)
}

func deleteTestimonial(ctx context.Context, exec executor, id string) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM testimonials WHERE reference_id = ?`, id)
	if err != nil {
		return NewStoreError("DeleteTestimonial", "testimonial", id, err.Error(), err)
	}
	return checkAffected(result, "DeleteTestimonial", "testimonial", id)
}

func listTestimonials(ctx context.Context, exec executor, publishedOnly bool, opts ListOptions) ([]domain.Testimonial, error) {
	opts = opts.Normalize()

	query := `SELECT * FROM testimonials`
	if publishedOnly {
		query += ` WHERE published = 1`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

	var rows []testimonialRow
	if err := exec.SelectContext(ctx, &rows, query, opts.Limit, opts.Offset); err != nil {
		return nil, NewStoreError("ListTestimonials", "testimonial", "", err.Error(), err)
	}

	out := make([]domain.Testimonial, 0, len(rows))
	for i := range rows {
		out = append(out, *rowToTestimonial(&rows[i]))
	}
	return out, nil
}
