package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrUnsupportedDialect = errors.New("unsupported dialect")
	ErrConnection         = errors.New("connection error")
	ErrConnectionInUse    = errors.New("connection is current")
	ErrSQLExecution       = errors.New("sql execution failed")
)

// ValidationError reports malformed or empty input. It is always raised before any I/O.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// UnsupportedDialectError is returned for a dialect string outside the supported set.
type UnsupportedDialectError struct {
	Dialect   string
	Supported []string
}

func (e *UnsupportedDialectError) Error() string {
	return fmt.Sprintf("unsupported dialect %q (supported: %s)", e.Dialect, strings.Join(e.Supported, ", "))
}

func (e *UnsupportedDialectError) Is(target error) bool { return target == ErrUnsupportedDialect }

// ConnectionError covers pool build and validation failures, an unavailable current
// connection, and illegal lifecycle transitions such as closing the active connection.
type ConnectionError struct {
	Connection string
	Op         string
	Message    string
	Err        error
}

func NewConnectionError(connection, op, message string, err error) *ConnectionError {
	return &ConnectionError{Connection: connection, Op: op, Message: message, Err: err}
}

func (e *ConnectionError) Error() string {
	var b strings.Builder
	b.WriteString("connection ")
	b.WriteString(fmt.Sprintf("%q", e.Connection))
	if e.Op != "" {
		b.WriteString(" ")
		b.WriteString(e.Op)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// NewConnectionInUseError refuses an operation on the current connection.
// It matches both ErrConnection and ErrConnectionInUse.
func NewConnectionInUseError(connection, op, message string) *ConnectionError {
	return &ConnectionError{Connection: connection, Op: op, Message: message, Err: ErrConnectionInUse}
}

func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

// SQLExecutionError is returned when the backend rejects a statement.
type SQLExecutionError struct {
	Statement string
	Message   string
	Err       error
}

func NewSQLExecutionError(statement string, err error) *SQLExecutionError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &SQLExecutionError{Statement: statement, Message: msg, Err: err}
}

func (e *SQLExecutionError) Error() string {
	return fmt.Sprintf("sql execution failed: %s", e.Message)
}

func (e *SQLExecutionError) Unwrap() error { return e.Err }

func (e *SQLExecutionError) Is(target error) bool { return target == ErrSQLExecution }

// NotFoundError reports an absent connection or schema-introspection target.
type NotFoundError struct {
	Kind string // "connection", "table"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
