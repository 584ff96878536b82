package domain

// BadRequestError is a rule violation in the request (HTTP 400). The message
// names the violated rule.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return e.Message
}

// BadRequest creates a BadRequestError with the given message.
func BadRequest(message string) error {
	return &BadRequestError{Message: message}
}

// NotFoundError means the addressed resource does not exist (HTTP 404).
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// NotFound creates a NotFoundError with the given message.
func NotFound(message string) error {
	return &NotFoundError{Message: message}
}

// ConflictError means the write lost a concurrency race (HTTP 409): either a
// stale row version or a clashing appointment.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Conflict creates a ConflictError with the given message.
func Conflict(message string) error {
	return &ConflictError{Message: message}
}

// UnauthorizedError means the caller is not authenticated (HTTP 401).
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}

// Unauthorized creates an UnauthorizedError with the given message.
func Unauthorized(message string) error {
	return &UnauthorizedError{Message: message}
}

// ForbiddenError means the caller lacks authority over the resource's provider
// (HTTP 403).
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// Forbidden creates a ForbiddenError with the given message.
func Forbidden(message string) error {
	return &ForbiddenError{Message: message}
}
