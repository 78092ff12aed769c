// Package apperr defines the error kinds shared by the decoders, the
// modality handlers and the route layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kind groups errors by how the caller is expected to react to them.
type Kind string

const (
	KindInternal            Kind = "internal"
	KindValidation          Kind = "validation"
	KindDecode              Kind = "decode"
	KindServiceUnavailable  Kind = "service-unavailable"
	KindUnintelligibleAudio Kind = "unintelligible-audio"
	KindModelLoad           Kind = "model-load"
)

// Error carries a Kind alongside the failing operation and the cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return e.Msg + ": " + e.Err.Error()
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind so that errors.Is(err, apperr.ErrDecode)
// works through any amount of wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrValidation          = &Error{Kind: KindValidation}
	ErrDecode              = &Error{Kind: KindDecode}
	ErrServiceUnavailable  = &Error{Kind: KindServiceUnavailable}
	ErrUnintelligibleAudio = &Error{Kind: KindUnintelligibleAudio}
	ErrModelLoad           = &Error{Kind: KindModelLoad}
)

func newf(kind Kind, op string, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...), Err: err}
}

func Validation(op, format string, args ...any) *Error {
	return newf(KindValidation, op, nil, format, args...)
}

func Decode(op string, err error, format string, args ...any) *Error {
	return newf(KindDecode, op, err, format, args...)
}

func ServiceUnavailable(op string, err error, format string, args ...any) *Error {
	return newf(KindServiceUnavailable, op, err, format, args...)
}

func UnintelligibleAudio(op string, format string, args ...any) *Error {
	return newf(KindUnintelligibleAudio, op, nil, format, args...)
}

func ModelLoad(op string, err error, format string, args ...any) *Error {
	return newf(KindModelLoad, op, err, format, args...)
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
