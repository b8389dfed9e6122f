// Package storage keeps uploaded files: camp banners, registration
// attachments and copied avatars.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

type FileStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	// URL returns where clients can fetch the object.
	URL(key string) string
}

// ObjectKey returns a fresh key under prefix keeping the extension of
// filename, e.g. camps/12/banner/<uuid>.png.
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\ ") {
		ext = ""
	}
	return strings.TrimSuffix(prefix, "/") + "/" + uuid.NewString() + ext
}

// URLs maps object keys to their URLs, skipping empty keys.
func URLs(fs FileStore, keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			out = append(out, fs.URL(k))
		}
	}
	return out
}
