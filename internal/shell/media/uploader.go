package media

import (
	"context"
	"io"
	"time"

	"github.com/artpar/solarshop/internal/core/domain"
)

// DefaultMaxUploadBytes is used when no limit is configured.
const DefaultMaxUploadBytes = 8 << 20

// Uploader validates uploads and writes them to a Storage.
type Uploader struct {
	storage  Storage
	maxBytes int64
	now      func() time.Time
}

// NewUploader creates an uploader. maxBytes <= 0 uses DefaultMaxUploadBytes.
func NewUploader(storage Storage, maxBytes int64) *Uploader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &Uploader{storage: storage, maxBytes: maxBytes, now: time.Now}
}

// MaxBytes returns the configured size limit.
func (u *Uploader) MaxBytes() int64 {
	return u.maxBytes
}

// Storage returns the underlying storage backend.
func (u *Uploader) Storage() Storage {
	return u.storage
}

// Upload sniffs the content type, stores the file under a fresh key and
// returns the unsaved asset record. r is rewound after sniffing and passed
// to the storage as is.
func (u *Uploader) Upload(ctx context.Context, filename string, r io.ReadSeeker, size int64) (*domain.MediaAsset, error) {
	if size == 0 {
		return nil, ErrEmpty
	}
	if size > u.maxBytes {
		return nil, ErrTooLarge
	}

	contentType, err := Sniff(r)
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	key := StorageKey(filename, contentType, now)
	url, err := u.storage.Put(ctx, key, contentType, r, size)
	if err != nil {
		return nil, err
	}

	return &domain.MediaAsset{
		ReferenceID: domain.NewReferenceID(domain.PrefixMedia),
		Filename:    filename,
		StorageKey:  key,
		URL:         url,
		ContentType: contentType,
		Size:        size,
		CreatedAt:   now,
	}, nil
}
