package storage

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnoor-academy/school-cms/logger"
	"github.com/alnoor-academy/school-cms/util/common"
)

// DiskStore keeps uploads in a single directory on the local filesystem,
// served by the web server under urlPrefix.
type DiskStore struct {
	root      string
	urlPrefix string
}

// NewDiskStore creates the upload directory if needed and returns a store
// rooted there. urlPrefix is the path under which the directory is served,
// e.g. "/uploads".
func NewDiskStore(root, urlPrefix string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, common.NewErrorf("create upload folder %s: %v", root, err)
	}
	return &DiskStore{
		root:      root,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}, nil
}

// Root returns the directory uploads are written to.
func (s *DiskStore) Root() string {
	return s.root
}

func (s *DiskStore) path(name string) (string, error) {
	// Stored names are flat; anything resembling a path is rejected.
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return "", common.NewErrorf("invalid file name %q", name)
	}
	return filepath.Join(s.root, name), nil
}

func (s *DiskStore) Save(name string, src io.Reader) (string, error) {
	path, err := s.path(name)
	if err != nil {
		return "", err
	}

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", common.NewErrorf("create file %s: %v", name, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		if rerr := os.Remove(path); rerr != nil {
			logger.Warningf("failed to remove partial upload %s: %v", name, rerr)
		}
		return "", common.NewErrorf("write file %s: %v", name, err)
	}
	if err := dst.Close(); err != nil {
		return "", common.NewErrorf("close file %s: %v", name, err)
	}

	return s.urlPrefix + "/" + name, nil
}

func (s *DiskStore) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return common.NewErrorf("remove file %s: %v", name, err)
	}
	return nil
}

func (s *DiskStore) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, common.NewErrorf("read upload folder: %v", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}
