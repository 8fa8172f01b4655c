package model

import (
	"bytes"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidParent is returned when a parent reference cannot be parsed.
var ErrInvalidParent = errors.New("invalid parent reference")

// ParentRef is the folder a node lives in. The zero value is the root of the tree.
//
// On the wire the root is written as 0. A nil database value is the root.
type ParentRef struct {
	id    int64
	valid bool
}

// Root returns the reference to the top of a user's tree.
func Root() ParentRef { return ParentRef{} }

// InFolder returns a reference to the folder with the given id.
func InFolder(id int64) ParentRef { return ParentRef{id: id, valid: true} }

// IsRoot reports whether p points at the top of the tree.
func (p ParentRef) IsRoot() bool { return !p.valid }

// FolderID returns the folder id and true, or 0 and false for the root.
func (p ParentRef) FolderID() (int64, bool) { return p.id, p.valid }

func (p ParentRef) String() string {
	if !p.valid {
		return "root"
	}
	return strconv.FormatInt(p.id, 10)
}

// ParseParentRef parses a textual parent reference such as a query parameter.
// Empty and "0" mean the root; any other value must be a positive integer.
func ParseParentRef(s string) (ParentRef, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return Root(), nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return ParentRef{}, fmt.Errorf("%w: %q", ErrInvalidParent, s)
	}
	return InFolder(id), nil
}

func (p ParentRef) MarshalJSON() ([]byte, error) {
	if !p.valid {
		return []byte("0"), nil
	}
	return []byte(strconv.FormatInt(p.id, 10)), nil
}

// UnmarshalJSON accepts a number, a numeric string or null.
func (p *ParentRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = Root()
		return nil
	}

	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidParent, err)
		}
		raw = s
	}

	ref, err := ParseParentRef(raw)
	if err != nil {
		return err
	}
	*p = ref
	return nil
}

// Value stores the root as NULL.
func (p ParentRef) Value() (driver.Value, error) {
	if !p.valid {
		return nil, nil
	}
	return p.id, nil
}

func (p *ParentRef) Scan(src any) error {
	var n sql.NullInt64
	if err := n.Scan(src); err != nil {
		return err
	}
	if !n.Valid || n.Int64 == 0 {
		*p = Root()
		return nil
	}
	*p = InFolder(n.Int64)
	return nil
}
