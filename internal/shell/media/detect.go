package media

import (
	"errors"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is how many leading bytes are inspected to detect the type.
const sniffLen = 3072

// allowedTypes maps accepted content types to their canonical extension.
var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
}

// DetectContentType sniffs the content type of head and checks it against
// the allowed upload types.
func DetectContentType(head []byte) (string, error) {
	if len(head) == 0 {
		return "", ErrEmpty
	}
	mt := mimetype.Detect(head)
	for m := mt; m != nil; m = m.Parent() {
		ct := baseType(m.String())
		if _, ok := allowedTypes[ct]; ok {
			return ct, nil
		}
	}
	return "", ErrUnsupportedType
}

// Sniff reads enough of r to detect its type and rewinds r to the start,
// so the same reader can be handed to a Storage as a seekable body.
func Sniff(r io.ReadSeeker) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", err
	}
	ct, err := DetectContentType(head[:n])
	if err != nil {
		return "", err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return ct, nil
}

// ExtensionFor returns the canonical extension for an allowed content type.
func ExtensionFor(contentType string) string {
	return allowedTypes[baseType(contentType)]
}

// IsAllowed reports whether contentType may be uploaded.
func IsAllowed(contentType string) bool {
	_, ok := allowedTypes[baseType(contentType)]
	return ok
}

func baseType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
