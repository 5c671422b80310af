package features

import "fmt"

// ErrorKind classifies why a feature build failed.
type ErrorKind string

const (
	KindMissingField  ErrorKind = "missing-field"
	KindMalformedDate ErrorKind = "malformed-date"
	KindEmptyUpstream ErrorKind = "empty-upstream-result"
	KindTransport     ErrorKind = "transport-error"
)

// BuildError reports a failed feature build. Feature assembly is
// all-or-nothing, so one BuildError voids the entire vector.
type BuildError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("build features: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("build features: %s: %s", e.Kind, e.Msg)
}

func (e *BuildError) Unwrap() error { return e.Err }

func missingField(what string) *BuildError {
	return &BuildError{Kind: KindMissingField, Msg: what}
}

func malformedDate(what string, err error) *BuildError {
	return &BuildError{Kind: KindMalformedDate, Msg: what, Err: err}
}

func emptyUpstream(what string) *BuildError {
	return &BuildError{Kind: KindEmptyUpstream, Msg: what}
}

func transport(what string, err error) *BuildError {
	return &BuildError{Kind: KindTransport, Msg: what, Err: err}
}
