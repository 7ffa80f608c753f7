package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"shoestore-service/internal/models"
	"shoestore-service/internal/storage"
)

var (
	imageExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".webp": true,
	}
	unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)
)

// ErrUnreadableArchive is returned when the uploaded images file is not a zip archive
var ErrUnreadableArchive = errors.New("unreadable image archive")

// MaxArchiveImageBytes caps the uncompressed size of one archive image
const MaxArchiveImageBytes = 10 << 20

// ImageLookup maps archive entry paths and base names to stored image URLs
type ImageLookup map[string]string

// ExtractImages persists every image entry of a zip archive through store.
// Every kept entry is stored whether or not a spreadsheet row references it.
// An entry larger than maxEntryBytes once decompressed fails the whole archive.
func ExtractImages(ctx context.Context, data []byte, store storage.ImageStore, maxEntryBytes int64) ([]models.ExtractedImage, ImageLookup, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreadableArchive, err)
	}

	images := make([]models.ExtractedImage, 0, len(reader.File))
	lookup := make(ImageLookup, len(reader.File)*2)

	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() || strings.HasSuffix(entry.Name, "/") {
			continue
		}
		baseName := path.Base(entry.Name)
		if !imageExtensions[strings.ToLower(path.Ext(baseName))] {
			continue
		}

		content, err := readEntry(entry, maxEntryBytes)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %v", ErrUnreadableArchive, entry.Name, err)
		}

		url, err := store.Save(ctx, StorageName(baseName), content)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to store image %s: %w", entry.Name, err)
		}

		images = append(images, models.ExtractedImage{
			Filename: entry.Name,
			URL:      url,
			Size:     len(content),
		})
		lookup[entry.Name] = url
		lookup[baseName] = url
	}

	return images, lookup, nil
}

var errEntryTooLarge = errors.New("image exceeds the size limit")

func readEntry(entry *zip.File, limit int64) ([]byte, error) {
	if entry.UncompressedSize64 > uint64(limit) {
		return nil, errEntryTooLarge
	}
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	// the header size is not trusted
	content, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(content)) > limit {
		return nil, errEntryTooLarge
	}
	return content, nil
}

// StorageName builds <unix-millis>-<8 random chars>-<sanitized base name>
func StorageName(baseName string) string {
	return fmt.Sprintf("%d-%s-%s",
		time.Now().UnixMilli(),
		uuid.New().String()[:8],
		SanitizeFilename(baseName),
	)
}

// SanitizeFilename replaces every character outside [A-Za-z0-9.-] with an underscore
func SanitizeFilename(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}
