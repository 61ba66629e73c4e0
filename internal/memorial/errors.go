package memorial

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNotFound indicates a lookup by id or slug found nothing the caller is
// allowed to see. For public resolution this is a normal outcome, not a fault.
var ErrNotFound = eris.New("memorial not found")

// errSlugTaken signals a unique-index conflict on the slug column; the
// allocator retries with the next suffix when it sees this.
var errSlugTaken = eris.New("slug already taken")

// ValidationError reports one message per invalid field. It is always raised
// before any network call is made.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UploadError indicates an object store write failed.
type UploadError struct {
	Path string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("uploading %s: %v", e.Path, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// PersistenceError indicates a row read or write failed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
