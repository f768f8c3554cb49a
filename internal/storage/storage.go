package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// Put stores body under objectKey, replacing any existing object.
	Put(ctx context.Context, objectKey, contentType string, body io.Reader, size int64) error

	// Get opens the object stored under objectKey. The caller closes Body.
	Get(ctx context.Context, objectKey string) (*Object, error)
}

// Object is an opened stored file.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

var (
	ErrObjectNotFound = errors.New("object not found in storage")
	ErrInvalidKey     = errors.New("invalid object key")
)

// CleanKey normalizes an object key and rejects keys escaping the storage root.
func CleanKey(objectKey string) (string, error) {
	if objectKey == "" || strings.Contains(objectKey, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + objectKey)
	if cleaned == "/" || cleaned != "/"+strings.TrimPrefix(objectKey, "/") {
		return "", ErrInvalidKey
	}
	return strings.TrimPrefix(cleaned, "/"), nil
}
