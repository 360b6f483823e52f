package service

import (
	"fmt"
	"io"

	"github.com/alnoor-academy/school-cms/logger"
	"github.com/alnoor-academy/school-cms/storage"
)

// siteImageSettings maps an upload slot to the setting holding its URL.
var siteImageSettings = map[string]string{
	"logo":      "logoImage",
	"about":     "aboutImage",
	"academics": "academicsImage",
}

type UploadService struct {
	store          storage.FileStore
	settingService *SettingService
}

func NewUploadService(store storage.FileStore, settingService *SettingService) *UploadService {
	return &UploadService{store: store, settingService: settingService}
}

// SaveSiteImage stores one fixed site image and records its public URL under
// the slot's setting. A replaced image's old file is left for the orphan
// sweep.
func (s *UploadService) SaveSiteImage(slot, originalName string, src io.Reader) (string, error) {
	settingName, ok := siteImageSettings[slot]
	if !ok {
		return "", fmt.Errorf("%w: unknown image slot %q", ErrValidation, slot)
	}

	name := storage.UniqueName(originalName)
	url, err := s.store.Save(name, src)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := s.settingService.setString(settingName, url); err != nil {
		if derr := s.store.Delete(name); derr != nil {
			logger.Warningf("failed to remove stored file %s after setting error: %v", name, derr)
		}
		return "", err
	}

	return url, nil
}

// imageURLSettings are all settings that may point at a stored file. The
// hero image has no upload endpoint but admins can still point it at an
// uploaded file, so the sweep must treat it as a reference too.
var imageURLSettings = []string{"logoImage", "aboutImage", "academicsImage", "heroImage"}

// SiteImageNames returns the stored file names currently referenced by the
// site image settings, for the orphan sweep. URLs pointing outside the store
// are skipped.
func (s *UploadService) SiteImageNames() ([]string, error) {
	names := make([]string, 0, len(imageURLSettings))
	for _, settingName := range imageURLSettings {
		url, err := s.settingService.getString(settingName)
		if err != nil {
			return nil, err
		}
		if name, ok := storedFileName(url); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// storedFileName extracts the file name from a store-served URL like
// "/uploads/<name>". Anything else is not ours to sweep.
func storedFileName(url string) (string, bool) {
	const prefix = "/uploads/"
	if len(url) > len(prefix) && url[:len(prefix)] == prefix {
		return url[len(prefix):], true
	}
	return "", false
}
