package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueName(t *testing.T) {
	name := UniqueName("School Front Gate!.JPG")
	assert.True(t, strings.HasPrefix(name, "School_Front_Gate-"), name)
	assert.True(t, strings.HasSuffix(name, ".jpg"), name)
	assert.NotContains(t, name, " ")

	// Two uploads of the same file never collide.
	assert.NotEqual(t, name, UniqueName("School Front Gate!.JPG"))

	// Hostile names collapse to a safe flat name.
	name = UniqueName("../../etc/passwd")
	assert.True(t, strings.HasPrefix(name, "passwd-"), name)
	assert.NotContains(t, name, "/")
	assert.NotContains(t, name, "..")

	// Nothing usable left falls back to a generic base.
	name = UniqueName("...")
	assert.True(t, strings.HasPrefix(name, "file-"), name)
}

func TestDiskStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "/uploads/")
	assert.NoError(t, err)
	assert.Equal(t, dir, store.Root())

	// Test Save
	url, err := store.Save("gate.jpg", strings.NewReader("jpeg"))
	assert.NoError(t, err)
	assert.Equal(t, "/uploads/gate.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "gate.jpg"))
	assert.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	// Test Save with an already stored name
	_, err = store.Save("gate.jpg", strings.NewReader("other"))
	assert.Error(t, err)

	// Test path traversal rejection
	_, err = store.Save("../gate.jpg", strings.NewReader("x"))
	assert.Error(t, err)
	_, err = store.Save("a/b.jpg", strings.NewReader("x"))
	assert.Error(t, err)
	assert.Error(t, store.Delete("../gate.jpg"))

	// Test List
	files, err := store.List()
	assert.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, "gate.jpg", files[0].Name)
	assert.Equal(t, int64(4), files[0].Size)
	assert.False(t, files[0].ModTime.IsZero())

	// Test Delete, removing a missing file is not an error
	assert.NoError(t, store.Delete("gate.jpg"))
	assert.NoError(t, store.Delete("gate.jpg"))
	files, err = store.List()
	assert.NoError(t, err)
	assert.Len(t, files, 0)
}
