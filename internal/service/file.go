package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"filesmanager/internal/blob"
	"filesmanager/internal/model"
	"filesmanager/internal/queue"
	"filesmanager/internal/repository"
)

// PageSize is the maximum number of nodes returned by List.
const PageSize = 20

// UploadInput is the payload of a node creation.
type UploadInput struct {
	Name     string          `json:"name" validate:"required"`
	Kind     model.Kind      `json:"kind" validate:"required,oneof=folder file image"`
	ParentID model.ParentRef `json:"parentId"`
	IsPublic bool            `json:"isPublic"`
	// Data is the base64 encoded content. It is ignored for folders.
	Data string `json:"data" validate:"required_unless=Kind folder"`
}

var uploadMessages = map[string]string{
	"name": "Missing name",
	"kind": "Missing kind",
	"data": "Missing data",
}

// BlobPlacer writes uploaded content to the blob store.
type BlobPlacer interface {
	Place(ctx context.Context, contentBase64, dir string) (string, error)
	Discard(ctx context.Context, locator string) error
}

// FileService defines the use cases on a user's tree of files and folders.
// Every operation is scoped to the calling user.
type FileService interface {
	// Upload validates in, places the blob for files and images, then persists
	// the node. Images additionally get a thumbnail job.
	Upload(ctx context.Context, userID int64, in UploadInput) (*model.FileNode, error)

	// Get returns an owned node or ErrNotFound.
	Get(ctx context.Context, userID, id int64) (*model.FileNode, error)

	// List returns up to PageSize children of parentRaw, which is a folder id
	// or empty/"0" for the root. It degrades to an empty list instead of failing.
	List(ctx context.Context, userID int64, parentRaw string, page int) ([]model.FileNode, error)

	// SetVisibility publishes or unpublishes an owned node and returns it.
	SetVisibility(ctx context.Context, userID, id int64, public bool) (*model.FileNode, error)
}

type fileService struct {
	users      repository.UserRepository
	files      repository.FileRepository
	placer     BlobPlacer
	jobs       queue.Enqueuer
	folderPath string
	validate   *validator.Validate
	log        *zap.Logger

	enqueueFailures prometheus.Counter
}

// NewFileService constructs a FileService storing blobs under folderPath.
// Its metrics are registered on reg.
func NewFileService(
	users repository.UserRepository,
	files repository.FileRepository,
	placer BlobPlacer,
	jobs queue.Enqueuer,
	folderPath string,
	log *zap.Logger,
	reg prometheus.Registerer,
) (FileService, error) {
	s := &fileService{
		users:      users,
		files:      files,
		placer:     placer,
		jobs:       jobs,
		folderPath: folderPath,
		validate:   newValidator(),
		log:        log.Named("files"),
		enqueueFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thumbnail_enqueue_failures_total",
			Help: "Image uploads whose thumbnail job could not be enqueued.",
		}),
	}
	if err := reg.Register(s.enqueueFailures); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *fileService) Upload(ctx context.Context, userID int64, in UploadInput) (*model.FileNode, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: lookup user: %v", ErrUnavailable, err)
	}

	if err := validatePayload(s.validate, in, uploadMessages); err != nil {
		return nil, err
	}

	if folderID, ok := in.ParentID.FolderID(); ok {
		parent, err := s.files.FindOwned(ctx, folderID, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, invalid("Parent not found")
			}
			return nil, fmt.Errorf("%w: lookup parent: %v", ErrUnavailable, err)
		}
		if parent.Kind != model.KindFolder {
			return nil, invalid("Parent is not a folder")
		}
	}

	node := &model.FileNode{
		OwnerID:  userID,
		Name:     in.Name,
		Kind:     in.Kind,
		IsPublic: in.IsPublic,
		Parent:   in.ParentID,
	}

	if in.Kind.HasContent() {
		locator, err := s.placer.Place(ctx, in.Data, s.folderPath)
		if err != nil {
			if errors.Is(err, blob.ErrInvalidContent) {
				return nil, invalid("Invalid data")
			}
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		node.Locator = locator
	}

	stored, err := s.files.Create(ctx, node)
	if err != nil {
		if node.Locator != "" {
			// Rollback: the blob is unreferenced
			if delErr := s.placer.Discard(ctx, node.Locator); delErr != nil {
				s.log.Warn("rollback discard failed", zap.String("locator", node.Locator), zap.Error(delErr))
			}
		}
		return nil, fmt.Errorf("%w: save file: %v", ErrUnavailable, err)
	}

	if stored.Kind == model.KindImage {
		job := queue.Job{FileID: stored.ID, UserID: userID}
		if err := s.jobs.Enqueue(ctx, job); err != nil {
			s.enqueueFailures.Inc()
			s.log.Error("thumbnail job not enqueued",
				zap.Int64("file_id", stored.ID),
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
	}

	return stored, nil
}

func (s *fileService) Get(ctx context.Context, userID, id int64) (*model.FileNode, error) {
	node, err := s.files.FindOwned(ctx, id, userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Warn("get file failed", zap.Int64("file_id", id), zap.Error(err))
		}
		return nil, ErrNotFound
	}
	return node, nil
}

func (s *fileService) List(ctx context.Context, userID int64, parentRaw string, page int) ([]model.FileNode, error) {
	parent, err := model.ParseParentRef(parentRaw)
	if err != nil {
		return []model.FileNode{}, nil
	}
	if page < 0 {
		page = 0
	}

	nodes, err := s.files.ListChildren(ctx, userID, parent, repository.PageQuery{
		Limit:  PageSize,
		Offset: page * PageSize,
	})
	if err != nil {
		s.log.Warn("list files failed", zap.Stringer("parent", parent), zap.Error(err))
		return []model.FileNode{}, nil
	}
	if nodes == nil {
		nodes = []model.FileNode{}
	}
	return nodes, nil
}

func (s *fileService) SetVisibility(ctx context.Context, userID, id int64, public bool) (*model.FileNode, error) {
	node, err := s.files.SetVisibility(ctx, id, userID, public)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: set visibility: %v", ErrUnavailable, err)
	}
	return node, nil
}
