package errors

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// ErrorType represents different categories of application errors
type ErrorType int

const (
	NotFoundError ErrorType = iota
	InvalidPathError
	PathEscapeError
	ForbiddenError
	IOError
	ConfigurationError
)

// AppError represents application-specific errors with context
type AppError struct {
	Type    ErrorType
	Op      string // Operation that failed
	Err     error  // Original error
	Message string // User-friendly message
	Code    int    // HTTP status code
}

func (e *AppError) Error() string {
	if e.Op != "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// String returns the error type as a string for logging
func (et ErrorType) String() string {
	switch et {
	case NotFoundError:
		return "not_found"
	case InvalidPathError:
		return "invalid_path"
	case PathEscapeError:
		return "path_escape"
	case ForbiddenError:
		return "forbidden"
	case IOError:
		return "io"
	case ConfigurationError:
		return "configuration"
	default:
		return "unknown"
	}
}

// NewNotFoundError creates an error for an unknown distro or missing artifact
func NewNotFoundError(op string, err error) *AppError {
	return &AppError{
		Type:    NotFoundError,
		Op:      op,
		Err:     err,
		Message: "Not found",
		Code:    http.StatusNotFound,
	}
}

// NewInvalidPathError creates an error for a malformed requested path
func NewInvalidPathError(op string, err error) *AppError {
	return &AppError{
		Type:    InvalidPathError,
		Op:      op,
		Err:     err,
		Message: "Invalid path",
		Code:    http.StatusBadRequest,
	}
}

// NewPathEscapeError creates an error for a resolved path falling outside
// its containing directory. Treated as a security violation, never corrected.
func NewPathEscapeError(op string, err error) *AppError {
	return &AppError{
		Type:    PathEscapeError,
		Op:      op,
		Err:     err,
		Message: "Invalid path",
		Code:    http.StatusBadRequest,
	}
}

// NewForbiddenError creates an error for a filesystem permission denial
func NewForbiddenError(op string, err error) *AppError {
	return &AppError{
		Type:    ForbiddenError,
		Op:      op,
		Err:     err,
		Message: "Forbidden",
		Code:    http.StatusForbidden,
	}
}

// NewIOError creates an error for an unexpected filesystem failure
func NewIOError(op string, err error) *AppError {
	return &AppError{
		Type:    IOError,
		Op:      op,
		Err:     err,
		Message: "Internal server error",
		Code:    http.StatusInternalServerError,
	}
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(op string, err error) *AppError {
	return &AppError{
		Type:    ConfigurationError,
		Op:      op,
		Err:     err,
		Message: "Configuration error",
		Code:    http.StatusInternalServerError,
	}
}

// AsAppError extracts an AppError from an error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err is an AppError of the given type
func IsType(err error, t ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Type == t
	}
	return false
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool {
	return IsType(err, NotFoundError)
}

// IsPathError reports whether err is an invalid-path or path-escape error
func IsPathError(err error) bool {
	return IsType(err, InvalidPathError) || IsType(err, PathEscapeError)
}

// LogError logs an AppError with its classification
func LogError(logger *zap.Logger, err *AppError) {
	logger.Error(err.Message,
		zap.String("type", err.Type.String()),
		zap.String("operation", err.Op),
		zap.Int("code", err.Code),
		zap.Error(err.Err),
	)
}

// HandleHTTPError translates an error into an HTTP response and logs it.
// Path errors are logged at warn level as potential security probes.
func HandleHTTPError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case InvalidPathError, PathEscapeError:
			logger.Warn("Rejected request path, potential traversal probe",
				zap.String("type", appErr.Type.String()),
				zap.String("operation", appErr.Op),
				zap.Error(appErr.Err),
			)
		case NotFoundError:
			logger.Debug("Not found",
				zap.String("operation", appErr.Op),
				zap.Error(appErr.Err),
			)
		default:
			LogError(logger, appErr)
		}
		http.Error(w, appErr.Message, appErr.Code)
		return
	}

	logger.Error("Unhandled error", zap.Error(err))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// Wrap wraps an error with an additional operation, preserving its type
func Wrap(err error, op string) error {
	if err == nil {
		return nil
	}

	if appErr, ok := AsAppError(err); ok {
		return &AppError{
			Type:    appErr.Type,
			Op:      op + ": " + appErr.Op,
			Err:     appErr.Err,
			Message: appErr.Message,
			Code:    appErr.Code,
		}
	}

	return NewIOError(op, err)
}
