package services

import "net/http"

// Error kinds. Controllers map these onto HTTP statuses; background workers
// log dependency errors and move on.
const (
	KindValidation    = "validation"
	KindUnauthorized  = "unauthorized"
	KindForbidden     = "forbidden"
	KindNotFound      = "not_found"
	KindConflict      = "conflict"
	KindQuotaExceeded = "quota_exceeded"
	KindDependency    = "dependency"
)

// Error is a typed failure with a machine-readable kind and optional detail
// (exhausted quota category, current counts, rival solver id, ...).
type Error struct {
	Kind    string
	Message string
	Detail  map[string]interface{}
}

func (e *Error) Error() string {
	return e.Message
}

func newErr(kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func ValidationErr(message string) *Error    { return newErr(KindValidation, message) }
func UnauthorizedErr(message string) *Error  { return newErr(KindUnauthorized, message) }
func ForbiddenErr(message string) *Error     { return newErr(KindForbidden, message) }
func NotFoundErr(message string) *Error      { return newErr(KindNotFound, message) }
func ConflictErr(message string) *Error      { return newErr(KindConflict, message) }
func QuotaExceededErr(message string) *Error { return newErr(KindQuotaExceeded, message) }
func DependencyErr(message string) *Error    { return newErr(KindDependency, message) }

// WithDetail attaches a detail key/value and returns the same error.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Detail == nil {
		e.Detail = map[string]interface{}{}
	}
	e.Detail[key] = value
	return e
}

// HTTPStatus maps an error to the status code controllers should write.
// Unknown errors are treated as internal.
func HTTPStatus(err error) int {
	se, ok := err.(*Error)
	if !ok {
		return http.StatusInternalServerError
	}
	switch se.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindQuotaExceeded:
		return http.StatusTooManyRequests
	case KindDependency:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// ErrDetail returns the detail map when err is a typed service error.
func ErrDetail(err error) map[string]interface{} {
	if se, ok := err.(*Error); ok {
		return se.Detail
	}
	return nil
}
