// Package blob places uploaded content in the blob store.
package blob

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"filesmanager/internal/storage"
)

// ErrInvalidContent is returned when the upload payload is not valid base64.
var ErrInvalidContent = errors.New("content is not valid base64")

// Placer decodes uploaded content and writes it under a freshly generated name.
// The name never derives from user input.
type Placer struct {
	store   storage.Storage
	newName func() string
}

// NewPlacer returns a Placer writing to store.
func NewPlacer(store storage.Storage) *Placer {
	return &Placer{store: store, newName: uuid.NewString}
}

// Place decodes contentBase64, writes it to <dir>/<generated name> and returns that locator.
// A storage failure is returned as is; nothing has been recorded at that point.
func (p *Placer) Place(ctx context.Context, contentBase64, dir string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(contentBase64)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}

	locator := path.Join(dir, p.newName())
	_, err = p.store.Put(ctx, locator, bytes.NewReader(raw), storage.PutObjectOptions{
		Size:        int64(len(raw)),
		ContentType: mimetype.Detect(raw).String(),
	})
	if err != nil {
		return "", fmt.Errorf("place blob: %w", err)
	}
	return locator, nil
}

// Discard removes a placed blob. Discarding a missing blob is not an error.
func (p *Placer) Discard(ctx context.Context, locator string) error {
	if err := p.store.Delete(ctx, locator); err != nil {
		return fmt.Errorf("discard blob: %w", err)
	}
	return nil
}

// ThumbnailLocator returns where the rendition of the given width is stored.
func ThumbnailLocator(locator string, width int) string {
	return fmt.Sprintf("%s_%d", locator, width)
}
