package logging

import "errors"

// TaggedError remembers which logger tag an error belongs to, so the CLI can
// report it under the component that produced it.
type TaggedError struct {
	tag string
	err error
}

func (e *TaggedError) Error() string {
	if e == nil || e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *TaggedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// WithTag wraps err with a logger tag. A nil err stays nil.
func WithTag(tag string, err error) error {
	if err == nil {
		return nil
	}
	return &TaggedError{tag: tag, err: err}
}

// ErrorTag returns the first tag found in err's chain, or fallback.
func ErrorTag(err error, fallback string) string {
	var tagged *TaggedError
	if errors.As(err, &tagged) && tagged != nil && tagged.tag != "" {
		return tagged.tag
	}
	return fallback
}
