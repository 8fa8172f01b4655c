package postgres

import (
	"context"
	"database/sql"

	"filesmanager/internal/model"
	"filesmanager/internal/repository"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

const fileColumns = `id, user_id, name, kind, is_public, parent_id, locator, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*model.FileNode, error) {
	var (
		n       model.FileNode
		kind    string
		locator sql.NullString
	)
	if err := row.Scan(
		&n.ID,
		&n.OwnerID,
		&n.Name,
		&kind,
		&n.IsPublic,
		&n.Parent,
		&locator,
		&n.CreatedAt,
	); err != nil {
		return nil, err
	}
	n.Kind = model.Kind(kind)
	n.Locator = locator.String
	return &n, nil
}

// Create inserts a new node and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, node *model.FileNode) (*model.FileNode, error) {
	const q = `
		INSERT INTO files (user_id, name, kind, is_public, parent_id, locator)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + fileColumns
	row := r.db.QueryRowContext(ctx, q,
		node.OwnerID,
		node.Name,
		string(node.Kind),
		node.IsPublic,
		node.Parent,
		sql.NullString{String: node.Locator, Valid: node.Locator != ""},
	)
	return scanFile(row)
}

// FindOwned fetches a single node by id, restricted to its owner.
func (r *FilePostgres) FindOwned(ctx context.Context, id, ownerID int64) (*model.FileNode, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM files
		WHERE id = $1 AND user_id = $2
	`
	return scanFile(r.db.QueryRowContext(ctx, q, id, ownerID))
}

// ListChildren returns one page of the owner's nodes under parent, oldest first.
func (r *FilePostgres) ListChildren(ctx context.Context, ownerID int64, parent model.ParentRef, pq repository.PageQuery) ([]model.FileNode, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM files
		WHERE user_id = $1 AND parent_id IS NOT DISTINCT FROM $2
		ORDER BY id ASC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID, parent, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.FileNode, 0)
	for rows.Next() {
		n, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// SetVisibility toggles is_public on an owned node in a single statement.
func (r *FilePostgres) SetVisibility(ctx context.Context, id, ownerID int64, isPublic bool) (*model.FileNode, error) {
	const q = `
		UPDATE files
		SET is_public = $3
		WHERE id = $1 AND user_id = $2
		RETURNING ` + fileColumns
	return scanFile(r.db.QueryRowContext(ctx, q, id, ownerID, isPublic))
}
