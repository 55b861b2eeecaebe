// Package fserr classifies filesystem and URI failures into a small set of
// kinds that callers can act on.
//
// Every operation that touches the host filesystem passes its raw error
// through Classify exactly once, at the call site. The resulting *Error keeps
// the original error for logging while exposing a stable Kind:
//
//	InvalidURI       malformed resource URI or wrong scheme
//	PermissionDenied the OS refused access
//	NotFound         missing target or missing parent
//	AlreadyExists    target exists and overwriting was not requested
//	NotEmpty         directory still has children
//	OperationFailed  anything else
package fserr

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Kind enumerates failure categories.
type Kind int

const (
	OperationFailed Kind = iota
	InvalidURI
	PermissionDenied
	NotFound
	AlreadyExists
	NotEmpty
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case InvalidURI:
		return "invalid_uri"
	case PermissionDenied:
		return "permission_denied"
	case NotFound:
		return "not_found"
	case AlreadyExists:
		return "already_exists"
	case NotEmpty:
		return "not_empty"
	default:
		return "operation_failed"
	}
}

// Error is a classified failure.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a failure of an explicit kind.
func New(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// Newf builds a failure of an explicit kind with a formatted cause.
func Newf(kind Kind, op, path, format string, args ...interface{}) *Error {
	return New(kind, op, path, fmt.Errorf(format, args...))
}

// rule maps a target error to a kind. Order matters: the first match wins.
type rule struct {
	target error
	kind   Kind
}

// rules is the single platform-error mapping table. ENOTEMPTY must precede
// fs.ErrExist because errno matching folds it into ErrExist.
var rules = []rule{
	{syscall.ENOTEMPTY, NotEmpty},
	{fs.ErrPermission, PermissionDenied},
	{syscall.EPERM, PermissionDenied},
	{syscall.EACCES, PermissionDenied},
	{syscall.EROFS, PermissionDenied},
	{fs.ErrNotExist, NotFound},
	{syscall.ENOENT, NotFound},
	{syscall.ENOTDIR, NotFound},
	{fs.ErrExist, AlreadyExists},
	{syscall.EEXIST, AlreadyExists},
}

func init() {
	rules = append(append([]rule{}, platformRules...), rules...)
}

// Classify maps err to a failure kind. Errors that already carry a kind keep
// it. A nil error classifies as OperationFailed.
func Classify(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	for _, r := range rules {
		if errors.Is(err, r.target) {
			return r.kind
		}
	}
	return OperationFailed
}

// Wrap classifies err and attaches op and path. It returns nil for nil.
func Wrap(err error, op, path string) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	return &Error{Kind: Classify(err), Op: op, Path: path, Err: err}
}

// KindOf reports the kind carried by err, classifying raw errors on the fly.
func KindOf(err error) Kind {
	return Classify(err)
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Unclassified reports whether err fell through the mapping table. Callers log
// these before surfacing them as OperationFailed.
func Unclassified(err error) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == OperationFailed && fe.Err != nil && Classify(fe.Err) == OperationFailed
	}
	return Classify(err) == OperationFailed
}
