// Package docstore is a path-addressed JSON document store. Paths are
// slash-separated ("receipts/09419754"); List returns every document under a
// path prefix.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidPath = errors.New("invalid document path")
)

// Store is the document persistence used by the receipt pipeline.
type Store interface {
	// Write creates or replaces the document at path with value encoded as JSON.
	Write(ctx context.Context, path string, value interface{}) error
	// Read decodes the document at path into out.
	Read(ctx context.Context, path string, out interface{}) error
	// List returns the documents whose path starts with prefix + "/", ordered by path.
	List(ctx context.Context, prefix string) ([]Document, error)
	Delete(ctx context.Context, path string) error
	Close() error
}

// Document is one stored value.
type Document struct {
	Path      string          `json:"path"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Decode unmarshals the document value into out.
func (d Document) Decode(out interface{}) error {
	return json.Unmarshal(d.Value, out)
}

// Name is the last path segment.
func (d Document) Name() string {
	return d.Path[strings.LastIndexByte(d.Path, '/')+1:]
}

// Join builds a path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// CleanPath validates path and strips surrounding slashes.
func CleanPath(path string) (string, error) {
	p := strings.Trim(path, "/")
	if p == "" {
		return "", ErrInvalidPath
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." || strings.ContainsAny(seg, "%_\\") {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return p, nil
}

func encode(value interface{}) ([]byte, error) {
	if raw, ok := value.(json.RawMessage); ok {
		if !json.Valid(raw) {
			return nil, fmt.Errorf("invalid json document")
		}
		return raw, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}
