package model

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of domain failure categories.
type ErrorKind int

const (
	KindInvalidRequest ErrorKind = iota + 1
	KindNotFound
	KindPermissionDenied
	KindUnauthenticated
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid_request"
	case KindNotFound:
		return "not_found"
	case KindPermissionDenied:
		return "permission_denied"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// DomainError is a deterministic, non-retryable failure surfaced to the caller
// as structured subject/violation data.
type DomainError struct {
	Kind      ErrorKind
	Subject   string
	Violation string
	Err       error
}

func (e *DomainError) Error() string {
	if e.Subject == "" {
		return e.Violation
	}
	return e.Subject + ": " + e.Violation
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// InvalidRequest reports malformed input or a business-rule violation.
func InvalidRequest(subject, violation string) *DomainError {
	return &DomainError{Kind: KindInvalidRequest, Subject: subject, Violation: violation}
}

// NotFound reports a missing resource of the given kind, e.g. "Article".
func NotFound(subject string) *DomainError {
	return &DomainError{Kind: KindNotFound, Subject: subject, Violation: "not found"}
}

// PermissionDenied reports an ownership failure: "only author can <verb>".
func PermissionDenied(subject, verb string) *DomainError {
	return &DomainError{Kind: KindPermissionDenied, Subject: subject, Violation: "only author can " + verb}
}

// Unauthenticated reports a missing or unverifiable identity.
func Unauthenticated(violation string, cause error) *DomainError {
	return &DomainError{Kind: KindUnauthenticated, Violation: violation, Err: cause}
}

// AsDomainError extracts a DomainError from an error chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsKind reports whether err carries a DomainError of exactly kind k.
func IsKind(err error, k ErrorKind) bool {
	de, ok := AsDomainError(err)
	return ok && de.Kind == k
}

// IsInvalidRequest is true for InvalidRequest and its specialisations
// NotFound and PermissionDenied.
func IsInvalidRequest(err error) bool {
	de, ok := AsDomainError(err)
	if !ok {
		return false
	}
	switch de.Kind {
	case KindInvalidRequest, KindNotFound, KindPermissionDenied:
		return true
	default:
		return false
	}
}
