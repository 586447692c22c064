package domain

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category
type Kind string

const (
	KindMissingField Kind = "missing_field"
	KindExecution    Kind = "execution"
	KindClient       Kind = "client"
	KindRecognition  Kind = "recognition"
	KindNoSpeech     Kind = "no_speech"
	KindMicrophone   Kind = "microphone"
	KindAssetMissing Kind = "asset_missing"
	KindDecode       Kind = "decode"
	KindUnauthorized Kind = "unauthorized"
)

// Error wraps an underlying error with a kind and a human-friendly message
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates an error of the given kind
func NewError(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

// WrapError creates an error of the given kind around err
func WrapError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Messages carried by recognition errors, one per failure category
const (
	MsgUnintelligible = "Could not understand audio"
	MsgRequestFailed  = "Could not request results from the speech service"
)
