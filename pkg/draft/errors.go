package draft

import (
	"errors"
	"fmt"
)

// Kind discriminates the rejection reasons a caller can act on.
type Kind string

const (
	KindNotYourTurn       Kind = "NOT_YOUR_TURN"
	KindNotLeader         Kind = "NOT_LEADER"
	KindWrongStatus       Kind = "WRONG_STATUS"
	KindQuotaMet          Kind = "QUOTA_ALREADY_MET"
	KindUnitUnavailable   Kind = "UNIT_UNAVAILABLE"
	KindSameElementBan    Kind = "SAME_ELEMENT_BAN"
	KindNotParticipant    Kind = "NOT_A_PARTICIPANT"
	KindInsufficientFunds Kind = "INSUFFICIENT_FUNDS"
	KindLobbyFull         Kind = "LOBBY_FULL"
	KindAlreadyJoined     Kind = "ALREADY_JOINED"
)

// ValidationError rejects an illegal action locally. It is surfaced verbatim
// to the acting user and never retried.
type ValidationError struct {
	Kind Kind
	Msg  string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validation(kind Kind, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// ConcurrencyError means the caller lost an exclusivity race to a concurrent
// writer. The caller must resynchronize from the next pushed state; the engine
// never retries the same action on its behalf.
type ConcurrencyError struct {
	Msg string
}

func (e *ConcurrencyError) Error() string {
	return e.Msg
}

// StateError marks a contract violation: an operation against a draft whose
// status cannot accept it. Logged and rejected, never retried.
type StateError struct {
	Msg string
}

func (e *StateError) Error() string {
	return e.Msg
}

func stateErr(format string, args ...interface{}) *StateError {
	return &StateError{Msg: fmt.Sprintf(format, args...)}
}

// ErrNotFound is returned when a draft id does not resolve to a document.
var ErrNotFound = errors.New("draft does not exist")

// IsValidation reports whether err is a ValidationError, optionally of the
// given kind.
func IsValidation(err error, kind Kind) bool {
	var v *ValidationError
	if !errors.As(err, &v) {
		return false
	}
	return kind == "" || v.Kind == kind
}
