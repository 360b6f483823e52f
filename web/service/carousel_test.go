package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCarouselService(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	service := NewCarouselService(db, store)

	// Test Add
	first, err := service.Add("front gate.jpg", strings.NewReader("first"), "https://example.com", "front gate")
	assert.NoError(t, err)
	assert.Equal(t, 1, first.DisplayOrder)
	assert.True(t, strings.HasPrefix(first.ImageURL, "/uploads/"))

	second, err := service.Add("library.png", strings.NewReader("second"), "", "library")
	assert.NoError(t, err)
	assert.Equal(t, 2, second.DisplayOrder)

	third, err := service.Add("lab.png", strings.NewReader("third"), "", "lab")
	assert.NoError(t, err)
	assert.Equal(t, 3, third.DisplayOrder)

	// Test List ordering
	images, err := service.List()
	assert.NoError(t, err)
	assert.Len(t, images, 3)
	assert.Equal(t, first.Id, images[0].Id)
	assert.Equal(t, second.Id, images[1].Id)
	assert.Equal(t, third.Id, images[2].Id)

	// Test Remove, the survivors keep their display order
	err = service.Remove(second.Id)
	assert.NoError(t, err)
	images, err = service.List()
	assert.NoError(t, err)
	assert.Len(t, images, 2)
	assert.Equal(t, 1, images[0].DisplayOrder)
	assert.Equal(t, 3, images[1].DisplayOrder)

	// The backing file goes with the row.
	_, err = os.Stat(filepath.Join(store.Root(), second.FileName))
	assert.True(t, os.IsNotExist(err))

	// Test Remove of an unknown id
	err = service.Remove(9999)
	assert.ErrorIs(t, err, ErrNotFound)

	// Test FileNames
	names, err := service.FileNames()
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{first.FileName, third.FileName}, names)
}

func TestCarouselServiceAddAfterRemove(t *testing.T) {
	db := newTestDB(t)
	store := newTestStore(t)
	service := NewCarouselService(db, store)

	first, err := service.Add("a.jpg", strings.NewReader("a"), "", "")
	assert.NoError(t, err)
	second, err := service.Add("b.jpg", strings.NewReader("b"), "", "")
	assert.NoError(t, err)

	assert.NoError(t, service.Remove(first.Id))

	// New images append after the highest surviving order.
	third, err := service.Add("c.jpg", strings.NewReader("c"), "", "")
	assert.NoError(t, err)
	assert.Equal(t, second.DisplayOrder+1, third.DisplayOrder)
}
