package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const defaultMediaType = "application/pdf"

// Upload is a raw file waiting for extraction.
type Upload struct {
	ID        string
	Kind      Kind
	Path      string
	MediaType string
}

// NewUpload stats the file and sniffs its media type.
func NewUpload(kind Kind, path string) (*Upload, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%s path is empty", kind.Title())
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%s %q is a directory", kind.Title(), path)
	}

	mediaType := defaultMediaType
	if detected, err := mimetype.DetectFile(path); err == nil && detected != nil {
		mediaType = stripParams(detected.String())
	}

	return &Upload{
		ID:        uuid.NewString(),
		Kind:      kind,
		Path:      path,
		MediaType: mediaType,
	}, nil
}

// Name is the base file name, used as the collection key.
func (u *Upload) Name() string {
	return filepath.Base(u.Path)
}

// Read returns the raw file content.
func (u *Upload) Read() ([]byte, error) {
	return os.ReadFile(u.Path)
}

// IsRecordFile reports whether the upload already holds a structured record
// rather than a scanned document.
func (u *Upload) IsRecordFile() bool {
	switch strings.ToLower(filepath.Ext(u.Path)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}

func stripParams(mediaType string) string {
	if idx := strings.Index(mediaType, ";"); idx != -1 {
		mediaType = mediaType[:idx]
	}
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		return defaultMediaType
	}
	return mediaType
}
