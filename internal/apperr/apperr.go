// Package apperr defines the caller-recoverable failures of the room service.
package apperr

import (
	"errors"
	"fmt"
)

// Kind groups errors by how a caller should react to them.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindConflict
	KindInvalidInput
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidInput:
		return "invalid_input"
	case KindForbidden:
		return "forbidden"
	}
	return "unknown"
}

// Error is a typed failure with a stable machine-readable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newErr(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

var (
	ErrRoomNotFound      = newErr(KindNotFound, "room_not_found", "room not found")
	ErrPlayerNotFound    = newErr(KindNotFound, "player_not_found", "player not found")
	ErrRoomNotJoinable   = newErr(KindConflict, "room_not_joinable", "room is not accepting players")
	ErrRoomFull          = newErr(KindConflict, "room_full", "room is full")
	ErrDuplicateName     = newErr(KindConflict, "duplicate_name", "name already taken in this room")
	ErrDuplicatePlayer   = newErr(KindConflict, "duplicate_player", "player already in this room")
	ErrCodeCollision     = newErr(KindConflict, "code_collision", "room code already in use")
	ErrInvalidTransition = newErr(KindConflict, "invalid_transition", "invalid room status transition")
	ErrNoActiveRound     = newErr(KindConflict, "no_active_round", "no round in progress")
	ErrAlreadyAnswered   = newErr(KindConflict, "already_answered", "answer already submitted for this round")
	ErrGameTypeMismatch  = newErr(KindInvalidInput, "game_type_mismatch", "game type does not match the room")
	ErrInvalidInput      = newErr(KindInvalidInput, "invalid_input", "invalid input")
	ErrWrongPasscode     = newErr(KindForbidden, "wrong_passcode", "wrong room passcode")
	ErrNotHost           = newErr(KindForbidden, "not_host", "only the host can do that")
)

// Invalid wraps ErrInvalidInput with a field-specific message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// As extracts the typed error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return 0
}
