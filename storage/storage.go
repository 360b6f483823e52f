// Package storage abstracts where uploaded site images live. The disk backend
// is the only implementation; the public site links images by the URL a store
// returns, so backends must keep URLs stable for stored names.
package storage

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileStore stores uploaded files under unique names and serves them back at
// public URLs.
type FileStore interface {
	// Save writes src under the given name and returns the public URL.
	Save(name string, src io.Reader) (string, error)
	// Delete removes a stored file. Deleting a name that does not exist is
	// not an error.
	Delete(name string) error
	// List returns metadata for every stored file.
	List() ([]FileInfo, error)
}

// FileInfo describes one stored file.
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// UniqueName sanitizes an uploaded filename and suffixes it with a timestamp
// and a random token so concurrent uploads of the same file never collide.
func UniqueName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	ext = "." + unsafeNameChars.ReplaceAllString(strings.TrimPrefix(ext, "."), "")
	if ext == "." {
		ext = ""
	}

	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._-")
	if base == "" {
		base = "file"
	}

	token := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%s-%d-%s%s", base, time.Now().Unix(), token, ext)
}
