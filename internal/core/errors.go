package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeEmptyName      = "empty_name"
	ErrCodeNameTaken      = "name_taken"
	ErrCodeNotJoined      = "not_joined"
	ErrCodeAlreadyJoined  = "already_joined"
	ErrCodeInvalidMessage = "invalid_message"
)

var (
	ErrEmptyName = errors.New("username cannot be empty")
	ErrNameTaken = errors.New("username already taken")
)

// RoomError wraps a code and human-readable message.
type RoomError struct {
	Code    string
	Message string
}

func (e *RoomError) Error() string {
	return e.Message
}

func roomError(code, msg string) *RoomError {
	return &RoomError{Code: code, Message: msg}
}
