package repository

import (
	"context"

	"filesmanager/internal/model"
)

// FileRepository persists the tree of file and folder nodes.
// Every lookup is scoped to an owner; a node owned by someone else is reported
// exactly like a missing one (sql.ErrNoRows).
type FileRepository interface {
	// Create inserts a node and returns the stored record with its generated id.
	Create(ctx context.Context, node *model.FileNode) (*model.FileNode, error)

	// FindOwned returns the node with the given id if ownerID owns it.
	FindOwned(ctx context.Context, id, ownerID int64) (*model.FileNode, error)

	// ListChildren returns the owner's nodes directly under parent in id order.
	ListChildren(ctx context.Context, ownerID int64, parent model.ParentRef, pq PageQuery) ([]model.FileNode, error)

	// SetVisibility updates is_public on an owned node and returns the updated record.
	SetVisibility(ctx context.Context, id, ownerID int64, isPublic bool) (*model.FileNode, error)
}
