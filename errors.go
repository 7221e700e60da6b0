package vpack

import "fmt"

// ErrorKind distinguishes the failure modes the builder can raise. All of
// them are synchronous and non-recoverable: a builder that returns an
// error must be discarded, matching the rest of the package's "no partial
// rollback" discipline.
type ErrorKind int

const (
	ErrNone ErrorKind = iota
	ErrBuilderNeedOpenCompound
	ErrBuilderNeedOpenArray
	ErrBuilderNeedOpenObject
	ErrBuilderNeedSubvalue
	ErrBuilderKeyAlreadyWritten
	ErrBuilderUnexpectedType
	ErrBuilderUnexpectedValue
	ErrNumberOutOfRange
	ErrDuplicateAttributeName
	ErrBuilderExternalsDisallowed
	ErrNotImplemented
)

func (k ErrorKind) String() string {
	switch k {
	case ErrBuilderNeedOpenCompound:
		return "BuilderNeedOpenCompound"
	case ErrBuilderNeedOpenArray:
		return "BuilderNeedOpenArray"
	case ErrBuilderNeedOpenObject:
		return "BuilderNeedOpenObject"
	case ErrBuilderNeedSubvalue:
		return "BuilderNeedSubvalue"
	case ErrBuilderKeyAlreadyWritten:
		return "BuilderKeyAlreadyWritten"
	case ErrBuilderUnexpectedType:
		return "BuilderUnexpectedType"
	case ErrBuilderUnexpectedValue:
		return "BuilderUnexpectedValue"
	case ErrNumberOutOfRange:
		return "NumberOutOfRange"
	case ErrDuplicateAttributeName:
		return "DuplicateAttributeName"
	case ErrBuilderExternalsDisallowed:
		return "BuilderExternalsDisallowed"
	case ErrNotImplemented:
		return "NotImplemented"
	default:
		return "None"
	}
}

// BuilderError is the concrete error type raised by every Builder method.
// Kind identifies the failure mode for errors.Is-style matching; Msg adds
// context specific to the call site.
type BuilderError struct {
	Kind ErrorKind
	Msg  string
}

func builderErrf(kind ErrorKind, format string, args ...any) error {
	return &BuilderError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (e *BuilderError) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is lets callers write errors.Is(err, vpack.ErrKindDuplicateAttributeName):
// the sentinels below wrap each kind in a *BuilderError for comparison.
func (e *BuilderError) Is(target error) bool {
	other, ok := target.(*BuilderError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// Sentinel errors for errors.Is comparisons; Msg is intentionally blank.
var (
	ErrKindBuilderNeedOpenCompound   = &BuilderError{Kind: ErrBuilderNeedOpenCompound}
	ErrKindBuilderNeedOpenArray      = &BuilderError{Kind: ErrBuilderNeedOpenArray}
	ErrKindBuilderNeedOpenObject     = &BuilderError{Kind: ErrBuilderNeedOpenObject}
	ErrKindBuilderNeedSubvalue       = &BuilderError{Kind: ErrBuilderNeedSubvalue}
	ErrKindBuilderKeyAlreadyWritten  = &BuilderError{Kind: ErrBuilderKeyAlreadyWritten}
	ErrKindBuilderUnexpectedType     = &BuilderError{Kind: ErrBuilderUnexpectedType}
	ErrKindBuilderUnexpectedValue    = &BuilderError{Kind: ErrBuilderUnexpectedValue}
	ErrKindNumberOutOfRange          = &BuilderError{Kind: ErrNumberOutOfRange}
	ErrKindDuplicateAttributeName    = &BuilderError{Kind: ErrDuplicateAttributeName}
	ErrKindBuilderExternalsDisallowed = &BuilderError{Kind: ErrBuilderExternalsDisallowed}
	ErrKindNotImplemented            = &BuilderError{Kind: ErrNotImplemented}
)
