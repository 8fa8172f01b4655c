package model

import "time"

// Kind is the type of a node in a user's tree.
type Kind string

const (
	KindFolder Kind = "folder"
	KindFile   Kind = "file"
	KindImage  Kind = "image"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindFolder, KindFile, KindImage:
		return true
	}
	return false
}

// HasContent reports whether nodes of this kind carry a blob.
func (k Kind) HasContent() bool {
	return k == KindFile || k == KindImage
}

// FileNode is a file or folder record in a user's hierarchical tree.
// Locator is empty for folders and set for every file and image.
type FileNode struct {
	ID        int64
	OwnerID   int64
	Name      string
	Kind      Kind
	IsPublic  bool
	Parent    ParentRef
	Locator   string
	CreatedAt time.Time
}

// FileView is the client-facing representation of a FileNode.
// The blob locator is never exposed.
type FileView struct {
	ID       int64     `json:"id"`
	OwnerID  int64     `json:"ownerId"`
	Name     string    `json:"name"`
	Kind     Kind      `json:"kind"`
	IsPublic bool      `json:"isPublic"`
	ParentID ParentRef `json:"parentId"`
}

// View returns the public representation of n.
func (n *FileNode) View() FileView {
	return FileView{
		ID:       n.ID,
		OwnerID:  n.OwnerID,
		Name:     n.Name,
		Kind:     n.Kind,
		IsPublic: n.IsPublic,
		ParentID: n.Parent,
	}
}

// Views maps a slice of nodes to their public representation.
// It never returns nil so that an empty listing encodes as [].
func Views(nodes []FileNode) []FileView {
	out := make([]FileView, 0, len(nodes))
	for i := range nodes {
		out = append(out, nodes[i].View())
	}
	return out
}
