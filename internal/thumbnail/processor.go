// Package thumbnail derives fixed-width renditions of uploaded images.
package thumbnail

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"io"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"filesmanager/internal/blob"
	"filesmanager/internal/queue"
	"filesmanager/internal/repository"
	"filesmanager/internal/storage"
)

// Widths are the rendition widths derived for every image.
var Widths = []int{500, 250, 100}

var (
	// ErrInvalidJob is returned for a job missing its file or user id.
	ErrInvalidJob = errors.New("invalid thumbnail job")
	// ErrSourceMissing is returned when the node or its blob cannot be found.
	ErrSourceMissing = errors.New("thumbnail source missing")
	// ErrJobFailed is returned when the source cannot be decoded or a rendition cannot be written.
	ErrJobFailed = errors.New("thumbnail job failed")
)

// Processor turns one job into its renditions. It only reads metadata.
type Processor struct {
	files      repository.FileRepository
	store      storage.Storage
	metrics    *Metrics
	log        *zap.Logger
	attempts   uint
	retryDelay time.Duration
}

// NewProcessor returns a Processor writing renditions to store. Every write is
// tried up to attempts times.
func NewProcessor(files repository.FileRepository, store storage.Storage, attempts int, metrics *Metrics, log *zap.Logger) *Processor {
	if attempts < 1 {
		attempts = 1
	}
	return &Processor{
		files:      files,
		store:      store,
		metrics:    metrics,
		log:        log.Named("thumbnail"),
		attempts:   uint(attempts),
		retryDelay: 200 * time.Millisecond,
	}
}

// Process derives every width for the job's image. Widths are written
// independently: a failing width does not stop the others, and the job error
// reports the first failure.
func (p *Processor) Process(ctx context.Context, job queue.Job) error {
	if !job.Valid() {
		return fmt.Errorf("%w: fileId=%d userId=%d", ErrInvalidJob, job.FileID, job.UserID)
	}

	node, err := p.files.FindOwned(ctx, job.FileID, job.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: file %d", ErrSourceMissing, job.FileID)
		}
		return fmt.Errorf("lookup file %d: %w", job.FileID, err)
	}
	if node.Locator == "" {
		return fmt.Errorf("%w: file %d has no blob", ErrSourceMissing, job.FileID)
	}

	raw, err := p.read(ctx, node.Locator)
	if err != nil {
		return err
	}

	_, formatName, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: decode: %v", ErrJobFailed, err)
	}
	format, err := imaging.FormatFromExtension(formatName)
	if err != nil {
		format = imaging.JPEG
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("%w: decode: %v", ErrJobFailed, err)
	}

	var g errgroup.Group
	for _, width := range Widths {
		g.Go(func() error {
			return p.render(ctx, img, format, node.Locator, width)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %v", ErrJobFailed, err)
	}
	return nil
}

func (p *Processor) read(ctx context.Context, locator string) ([]byte, error) {
	rc, _, err := p.store.Get(ctx, locator)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: blob %s", ErrSourceMissing, locator)
		}
		return nil, fmt.Errorf("read source: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return raw, nil
}

func (p *Processor) render(ctx context.Context, img image.Image, format imaging.Format, locator string, width int) error {
	label := strconv.Itoa(width)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Resize(img, width, 0, imaging.Lanczos), format); err != nil {
		p.metrics.renditions.WithLabelValues(label, StatusFailed).Inc()
		return fmt.Errorf("encode width %d: %w", width, err)
	}

	key := blob.ThumbnailLocator(locator, width)
	data := buf.Bytes()
	err := retry.Do(
		func() error {
			_, err := p.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
				Size:        int64(len(data)),
				ContentType: mimetype.Detect(data).String(),
			})
			return err
		},
		retry.Attempts(p.attempts),
		retry.Delay(p.retryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			p.log.Warn("retrying rendition write",
				zap.String("key", key),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
		retry.Context(ctx),
	)
	if err != nil {
		p.metrics.renditions.WithLabelValues(label, StatusFailed).Inc()
		return fmt.Errorf("write width %d: %w", width, err)
	}

	p.metrics.renditions.WithLabelValues(label, StatusOK).Inc()
	return nil
}
