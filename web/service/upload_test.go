package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUploadServiceSaveSiteImage(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	settingService := NewSettingService(db)
	service := NewUploadService(store, settingService)

	url, err := service.SaveSiteImage("logo", "crest.png", strings.NewReader("png bytes"))
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))

	// The slot's setting now points at the stored file.
	stored, err := settingService.getString("logoImage")
	assert.NoError(t, err)
	assert.Equal(t, url, stored)

	_, err = os.Stat(filepath.Join(store.Root(), strings.TrimPrefix(url, "/uploads/")))
	assert.NoError(t, err)

	// Replacing the image repoints the setting, the old file stays for the
	// orphan sweep.
	replaced, err := service.SaveSiteImage("logo", "crest2.png", strings.NewReader("new bytes"))
	assert.NoError(t, err)
	assert.NotEqual(t, url, replaced)
	stored, err = settingService.getString("logoImage")
	assert.NoError(t, err)
	assert.Equal(t, replaced, stored)
	_, err = os.Stat(filepath.Join(store.Root(), strings.TrimPrefix(url, "/uploads/")))
	assert.NoError(t, err)
}

func TestUploadServiceUnknownSlot(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	service := NewUploadService(store, NewSettingService(db))

	_, err := service.SaveSiteImage("banner", "banner.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrValidation)

	// Nothing gets stored for a rejected slot.
	files, err := store.List()
	assert.NoError(t, err)
	assert.Len(t, files, 0)
}

func TestUploadServiceSiteImageNames(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	settingService := NewSettingService(db)
	service := NewUploadService(store, settingService)

	url, err := service.SaveSiteImage("about", "campus.jpg", strings.NewReader("x"))
	assert.NoError(t, err)

	// External URLs are not ours to sweep.
	assert.NoError(t, settingService.setString("heroImage", "https://cdn.example.com/hero.jpg"))

	names, err := service.SiteImageNames()
	assert.NoError(t, err)
	assert.Equal(t, []string{strings.TrimPrefix(url, "/uploads/")}, names)
}
