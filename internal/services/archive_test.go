package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractImages_KeysByPathAndBaseName(t *testing.T) {
	store := newMemoryImageStore()
	archive := buildZip(t, map[string]string{
		"shoes/red-heel.jpg": "red",
		"blue flat.PNG":      "blue",
		"notes.txt":          "ignored",
		"shoes/readme.md":    "ignored",
	}, "shoes/")

	images, lookup, err := ExtractImages(context.Background(), archive, store, MaxArchiveImageBytes)
	require.NoError(t, err)

	assert.Len(t, images, 2)
	assert.Len(t, store.saved, 2)

	assert.Contains(t, lookup, "shoes/red-heel.jpg")
	assert.Contains(t, lookup, "red-heel.jpg")
	assert.Equal(t, lookup["shoes/red-heel.jpg"], lookup["red-heel.jpg"])
	assert.Contains(t, lookup, "blue flat.PNG")
	assert.NotContains(t, lookup, "notes.txt")

	namePattern := regexp.MustCompile(`^\d+-[0-9a-f]{8}-[A-Za-z0-9._-]+$`)
	for name := range store.saved {
		assert.Regexp(t, namePattern, name)
	}
}

func TestExtractImages_SanitizesStoredName(t *testing.T) {
	store := newMemoryImageStore()
	archive := buildZip(t, map[string]string{"blue flat (1).webp": "x"})

	images, lookup, err := ExtractImages(context.Background(), archive, store, MaxArchiveImageBytes)
	require.NoError(t, err)
	require.Len(t, images, 1)

	assert.Equal(t, "blue flat (1).webp", images[0].Filename)
	assert.Equal(t, 1, images[0].Size)
	assert.Regexp(t, `-blue_flat__1_\.webp$`, lookup["blue flat (1).webp"])
}

func TestExtractImages_InvalidArchive(t *testing.T) {
	_, _, err := ExtractImages(context.Background(), []byte("not a zip"), newMemoryImageStore(), MaxArchiveImageBytes)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreadableArchive))
}

func TestExtractImages_StoreFailureIsFatal(t *testing.T) {
	store := newMemoryImageStore()
	store.err = errStoreDown
	archive := buildZip(t, map[string]string{"a.jpg": "a"})

	_, _, err := ExtractImages(context.Background(), archive, store, MaxArchiveImageBytes)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errStoreDown))
}

func TestExtractImages_OversizedEntryIsFatal(t *testing.T) {
	store := newMemoryImageStore()
	archive := buildZip(t, map[string]string{
		"small.jpg": "ok",
		"big.jpg":   strings.Repeat("x", 64),
	})

	_, _, err := ExtractImages(context.Background(), archive, store, 16)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreadableArchive))
	assert.Contains(t, err.Error(), "big.jpg")

	images, _, err := ExtractImages(context.Background(), archive, newMemoryImageStore(), 64)
	require.NoError(t, err)
	assert.Len(t, images, 2)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"red-heel.jpg", "red-heel.jpg"},
		{"red heel.jpg", "red_heel.jpg"},
		{"sepatu#1@home.png", "sepatu_1_home.png"},
		{"über.gif", "_ber.gif"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), tt.in)
	}
}
