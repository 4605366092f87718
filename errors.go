package ubjson

import (
	"errors"
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// Error codes for EncoderFailure: a short package prefix plus a
// SCREAMING_SNAKE description.
const (
	CodeUnsupportedType     goerrors.ErrorCode = "UBJSON_UNSUPPORTED_TYPE"
	CodeStringNotUTF8       goerrors.ErrorCode = "UBJSON_STRING_NOT_UTF8"
	CodeIntegerOutOfRange   goerrors.ErrorCode = "UBJSON_INTEGER_OUT_OF_RANGE"
	CodeRecursionViaHandler goerrors.ErrorCode = "UBJSON_RECURSION_VIA_DEFAULT"
)

// Error codes for DecoderFailure.
const (
	CodeTruncated             goerrors.ErrorCode = "UBJSON_TRUNCATED"
	CodeUnknownMarker         goerrors.ErrorCode = "UBJSON_UNKNOWN_MARKER"
	CodeInvalidTypedContainer goerrors.ErrorCode = "UBJSON_INVALID_TYPED_CONTAINER"
	CodeUnclosedContainer     goerrors.ErrorCode = "UBJSON_UNCLOSED_CONTAINER"
	CodeContainerMismatch     goerrors.ErrorCode = "UBJSON_CONTAINER_MISMATCH"
	CodeNegativeLength        goerrors.ErrorCode = "UBJSON_NEGATIVE_LENGTH"
	CodeBadUTF8               goerrors.ErrorCode = "UBJSON_BAD_UTF8"
	CodeDepthExceeded         goerrors.ErrorCode = "UBJSON_DEPTH_EXCEEDED"
	CodeLengthExceeded        goerrors.ErrorCode = "UBJSON_LENGTH_EXCEEDED"
	CodeHookRaised            goerrors.ErrorCode = "UBJSON_HOOK_RAISED"
)

// EncoderFailure is returned by the encoder. Kind is one of the
// CodeUnsupportedType-family constants above (without the UBJSON_ prefix,
// e.g. "UNSUPPORTED_TYPE"); Path names the traversal position that failed
// (a dotted key/index chain, e.g. "orders.3.total").
type EncoderFailure struct {
	Kind string
	Path string
	err  *goerrors.Error
}

func (e *EncoderFailure) Error() string {
	return fmt.Sprintf("ubjson: encode %s at %q: %s", e.Kind, e.Path, e.err.Message)
}

func (e *EncoderFailure) Unwrap() error { return e.err }

func newEncoderFailure(code goerrors.ErrorCode, kind, path, message string) *EncoderFailure {
	err := goerrors.NewWithContext(code, message, map[string]interface{}{"path": path})
	return &EncoderFailure{Kind: kind, Path: path, err: err}
}

// DecoderFailure is returned by the decoder. Kind is one of the
// CodeTruncated-family constants above (without the UBJSON_ prefix, e.g.
// "TRUNCATED"); Offset is the source byte index at which the failure was
// detected.
type DecoderFailure struct {
	Kind   string
	Offset int64
	err    *goerrors.Error
}

func (e *DecoderFailure) Error() string {
	return fmt.Sprintf("ubjson: decode %s at offset %d: %s", e.Kind, e.Offset, e.err.Message)
}

func (e *DecoderFailure) Unwrap() error { return e.err }

func newDecoderFailure(code goerrors.ErrorCode, kind string, offset int64, message string) *DecoderFailure {
	err := goerrors.NewWithContext(code, message, map[string]interface{}{"offset": offset})
	return &DecoderFailure{Kind: kind, Offset: offset, err: err}
}

// AsEncoderFailure is errors.As specialized for EncoderFailure, so callers
// (and tests) can unwrap a possibly-wrapped error without importing
// "errors" themselves just to spell out the target type.
func AsEncoderFailure(err error, target **EncoderFailure) bool {
	return errors.As(err, target)
}

// AsDecoderFailure is the DecoderFailure counterpart of AsEncoderFailure.
func AsDecoderFailure(err error, target **DecoderFailure) bool {
	return errors.As(err, target)
}

// wrapHookFailure wraps a hook-originated error as HOOK_RAISED, keeping
// the cause on the unwrap chain for errors.Is/errors.As.
func wrapHookFailure(cause error, offset int64) *DecoderFailure {
	err := goerrors.Wrap(cause, CodeHookRaised, "hook raised an error")
	err.Context = map[string]interface{}{"offset": offset}
	return &DecoderFailure{Kind: "HOOK_RAISED", Offset: offset, err: err}
}
