package engine

import (
	"errors"
	"fmt"
)

// ErrorKind identifies the category of an engine failure.
type ErrorKind string

const (
	KindUserNotFound       ErrorKind = "UserNotFound"
	KindDuplicateUser      ErrorKind = "DuplicateUser"
	KindSubredditNotFound  ErrorKind = "SubredditNotFound"
	KindDuplicateSubreddit ErrorKind = "DuplicateSubreddit"
	KindAlreadyMember      ErrorKind = "AlreadyMember"
	KindNotMember          ErrorKind = "NotMember"
	KindPostNotFound       ErrorKind = "PostNotFound"
	KindCommentNotFound    ErrorKind = "CommentNotFound"
	KindMessageNotFound    ErrorKind = "MessageNotFound"
	KindRecipientNotFound  ErrorKind = "RecipientNotFound"
	KindInvalidCredentials ErrorKind = "InvalidCredentials"
	KindUnknownCommand     ErrorKind = "UnknownCommand"
)

// Error is a failure detected by the processor while validating a command.
// It never leaves partial state behind.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is reports whether target is an *Error of the same kind, so the sentinels
// below work with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrUserNotFound       = &Error{Kind: KindUserNotFound}
	ErrDuplicateUser      = &Error{Kind: KindDuplicateUser}
	ErrSubredditNotFound  = &Error{Kind: KindSubredditNotFound}
	ErrDuplicateSubreddit = &Error{Kind: KindDuplicateSubreddit}
	ErrAlreadyMember      = &Error{Kind: KindAlreadyMember}
	ErrNotMember          = &Error{Kind: KindNotMember}
	ErrPostNotFound       = &Error{Kind: KindPostNotFound}
	ErrCommentNotFound    = &Error{Kind: KindCommentNotFound}
	ErrMessageNotFound    = &Error{Kind: KindMessageNotFound}
	ErrRecipientNotFound  = &Error{Kind: KindRecipientNotFound}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
)

// ErrTimeout is returned by Client when no reply arrived within the wait
// budget. It is not an engine failure: the command may still be applied.
var ErrTimeout = errors.New("engine: timed out waiting for reply")

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the engine error kind carried by err, or "" if err is not an
// engine error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
