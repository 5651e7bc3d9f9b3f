package domain

import (
	"errors"
	"time"
)

var (
	ErrQuestionRequired = errors.New("question is required")
	ErrAnswerRequired   = errors.New("answer is required")
	ErrAuthorRequired   = errors.New("author is required")
	ErrQuoteRequired    = errors.New("quote is required")
	ErrRatingRange      = errors.New("rating must be between 1 and 5")
)

// =============================================================================
// FAQ
// =============================================================================

// FAQ is a question/answer pair shown on the storefront.
type FAQ struct {
	ID          int       `json:"-"`
	ReferenceID string    `json:"id"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	SortOrder   int       `json:"sort_order"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewFAQ creates an unpublished FAQ entry.
func NewFAQ(question, answer string) (*FAQ, error) {
	if question == "" {
		return nil, ErrQuestionRequired
	}
	if answer == "" {
		return nil, ErrAnswerRequired
	}
	now := time.Now().UTC()
	return &FAQ{
		ReferenceID: NewReferenceID(PrefixFAQ),
		Question:    question,
		Answer:      answer,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// =============================================================================
// Testimonial
// =============================================================================

// Testimonial is a customer quote shown on the storefront.
type Testimonial struct {
	ID          int       `json:"-"`
	ReferenceID string    `json:"id"`
	Author      string    `json:"author"`
	Location    string    `json:"location,omitempty"`
	Quote       string    `json:"quote"`
	Rating      int       `json:"rating"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTestimonial creates an unpublished testimonial.
func NewTestimonial(author, quote string, rating int) (*Testimonial, error) {
	if author == "" {
		return nil, ErrAuthorRequired
	}
	if quote == "" {
		return nil, ErrQuoteRequired
	}
	if err := ValidateRating(rating); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Testimonial{
		ReferenceID: NewReferenceID(PrefixTestimonial),
		Author:      author,
		Quote:       quote,
		Rating:      rating,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ValidateRating checks a star rating is in range.
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return ErrRatingRange
	}
	return nil
}

// =============================================================================
// Media
// =============================================================================

// MediaAsset is an uploaded file (product photo, payment proof...).
type MediaAsset struct {
	ID          int       `json:"-"`
	ReferenceID string    `json:"id"`
	Filename    string    `json:"filename"`
	StorageKey  string    `json:"storage_key"`
	URL         string    `json:"url"`
	ExternalURL string    `json:"external_url,omitempty"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsImage reports whether the asset is an image.
func (m *MediaAsset) IsImage() bool {
	return len(m.ContentType) > 6 && m.ContentType[:6] == "image/"
}
