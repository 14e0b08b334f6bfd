package sceneasset

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
)

// Stable machine-readable codes for the load error taxonomy.
const (
	CodeFetch    = "ASSET_FETCH_ERROR"
	CodeParse    = "ASSET_PARSE_ERROR"
	CodeBudget   = "ASSET_BUDGET_ERROR"
	CodeRenderer = "RENDERER_LOAD_ERROR"
	CodeUnknown  = "UNKNOWN_LOAD_ERROR"
)

var transientStatuses = []int{
	http.StatusRequestTimeout,
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// LoadError is implemented by every error surfaced through a failed event.
type LoadError interface {
	error
	Code() string
}

// FetchError reports a failed network request. Status is zero when the
// request never produced a response.
type FetchError struct {
	Message string
	Status  int
	Timeout bool
	err     error
}

func (e *FetchError) Error() string { return e.Message }
func (e *FetchError) Code() string  { return CodeFetch }
func (e *FetchError) Unwrap() error { return e.err }

// HasStatus reports whether the failure carried an HTTP status.
func (e *FetchError) HasStatus() bool { return e.Status > 0 }

// ParseError reports an asset that could not be resolved or decoded.
type ParseError struct {
	Message string
	err     error
}

func (e *ParseError) Error() string { return e.Message }
func (e *ParseError) Code() string  { return CodeParse }
func (e *ParseError) Unwrap() error { return e.err }

// BudgetError reports an asset whose declared size exceeds the budget.
type BudgetError struct {
	Message   string
	SizeBytes int64
}

func (e *BudgetError) Error() string { return e.Message }
func (e *BudgetError) Code() string  { return CodeBudget }

// RendererError reports a payload the renderer refused to load.
type RendererError struct {
	Message string
	err     error
}

func (e *RendererError) Error() string { return e.Message }
func (e *RendererError) Code() string  { return CodeRenderer }
func (e *RendererError) Unwrap() error { return e.err }

// UnknownError covers failures that fit no other category.
type UnknownError struct {
	Message string
}

func (e *UnknownError) Error() string { return e.Message }
func (e *UnknownError) Code() string  { return CodeUnknown }

func newFetchError(status int, err error, format string, args ...any) *FetchError {
	return &FetchError{Message: fmt.Sprintf(format, args...), Status: status, err: err}
}

func newParseError(err error, format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...), err: err}
}

func newTimeoutError(timeout int64) *FetchError {
	return &FetchError{
		Message: fmt.Sprintf("Asset request timed out after %dms.", timeout),
		Timeout: true,
	}
}

// NewRendererError wraps a renderer failure, keeping its message.
func NewRendererError(err error) *RendererError {
	if err == nil {
		return &RendererError{Message: "Renderer failed to load the scene."}
	}
	return &RendererError{Message: err.Error(), err: err}
}

// AsLoadError maps any error onto the load taxonomy. Typed taxonomy errors
// pass through; other non-nil errors become renderer failures when fromRenderer
// is set and unknown failures otherwise.
func AsLoadError(err error, fromRenderer bool) LoadError {
	if err == nil {
		return &UnknownError{Message: "Scene loading failed with an unknown error."}
	}
	var loadErr LoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}
	if fromRenderer {
		return NewRendererError(err)
	}
	return &UnknownError{Message: "Scene loading failed with an unknown error."}
}

// IsTransient reports whether a failed attempt is worth a single retry: a
// timeout, a fetch without a response, or a retryable HTTP status.
func IsTransient(err error) bool {
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		return false
	}
	if fetchErr.Timeout || !fetchErr.HasStatus() {
		return true
	}
	return slices.Contains(transientStatuses, fetchErr.Status)
}
