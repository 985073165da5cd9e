package util

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindDecode ErrorKind = iota + 1
	KindNetwork
	KindFileSystem
	KindNotFound
	KindResolve
)

func (k ErrorKind) String() string {
	switch k {
	case KindDecode:
		return "decode"
	case KindNetwork:
		return "network"
	case KindFileSystem:
		return "filesystem"
	case KindNotFound:
		return "not found"
	case KindResolve:
		return "resolve"
	default:
		return "unknown"
	}
}

var (
	ErrNoManifest           = errors.New("no mcpm.lock found, run `mcpm init` first")
	ErrManifestExists       = errors.New("mcpm.lock already exists")
	ErrNoPrimaryFile        = errors.New("version has no primary file")
	ErrMissingContentLength = errors.New("response has no content length")
)

// Error carries the failure kind of an operation together with its cause.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func DecodeError(op string, err error) error {
	return &Error{Kind: KindDecode, Op: op, Err: err}
}

func NetworkError(op string, err error) error {
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}

func FileSystemError(op string, err error) error {
	return &Error{Kind: KindFileSystem, Op: op, Err: err}
}

func NotFoundError(op string, err error) error {
	return &Error{Kind: KindNotFound, Op: op, Err: err}
}

func ResolveError(op string, err error) error {
	return &Error{Kind: KindResolve, Op: op, Err: err}
}

// IsKind reports whether any error in err's chain is an *Error of kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
