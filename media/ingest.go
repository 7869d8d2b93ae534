package media

import (
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/townboard/eventboard/apperror"
)

// Ingestor validates multipart file parts and places them into the store.
// An upload batch is all-or-nothing: one rejected part discards every file
// the batch already wrote.
type Ingestor struct {
	store    *Store
	maxBytes int64 // 0 means unlimited
}

func NewIngestor(store *Store, maxBytes int64) *Ingestor {
	return &Ingestor{store: store, maxBytes: maxBytes}
}

// ValidatePart checks a part against the type whitelist. Both the file
// extension and the declared content type must agree on an accepted image or
// video type.
func ValidatePart(filename, contentType string) error {
	cat, ok := CategoryOf(filename)
	if !ok {
		return apperror.NewValidation(fmt.Sprintf("unsupported file type: %s", filename))
	}
	if !strings.HasPrefix(contentType, string(cat)+"/") {
		return apperror.NewValidation(fmt.Sprintf("content type %q does not match file %s", contentType, filename))
	}
	return nil
}

// Ingest validates and stores all parts through the session. Every part is
// validated before any byte is written; a failure while writing discards the
// files stored so far and returns the error.
func (ing *Ingestor) Ingest(sess *Session, parts []*multipart.FileHeader) ([]string, error) {
	for _, hdr := range parts {
		if err := ValidatePart(hdr.Filename, hdr.Header.Get("Content-Type")); err != nil {
			sess.Discard()
			return nil, err
		}
	}

	stored := make([]string, 0, len(parts))
	for _, hdr := range parts {
		src, err := hdr.Open()
		if err != nil {
			sess.Discard()
			return nil, apperror.NewStorage("failed to open uploaded part", err)
		}
		rel, err := sess.StoreFile(hdr.Filename, src, ing.maxBytes)
		src.Close()
		if err != nil {
			sess.Discard()
			return nil, err
		}
		stored = append(stored, rel)
	}
	return stored, nil
}
