package blogservice

import (
	"errors"
	"fmt"
	"log/slog"
)

// ReadPolicy decides what a read returns when both the primary store and the
// fallback source fail.
type ReadPolicy int

const (
	// SwallowReadErrors logs the failure and returns an empty result so public pages still render.
	SwallowReadErrors ReadPolicy = iota
	// StrictReads returns the combined error to the caller.
	StrictReads
)

func ParseReadPolicy(s string) (ReadPolicy, error) {
	switch s {
	case "", "swallow":
		return SwallowReadErrors, nil
	case "strict":
		return StrictReads, nil
	default:
		return SwallowReadErrors, fmt.Errorf("unknown read policy %q", s)
	}
}

func (p ReadPolicy) String() string {
	switch p {
	case StrictReads:
		return "strict"
	default:
		return "swallow"
	}
}

// ReadSource tells which source served a read.
type ReadSource int

const (
	SourcePrimary ReadSource = iota
	SourceFallback
	// SourceNone means both sources failed and the read policy swallowed the error.
	SourceNone
)

// Degraded reports whether the result did not come from the primary store and
// must not outlive the request.
func (s ReadSource) Degraded() bool {
	return s != SourcePrimary
}

// readWithFallback runs primary and, on any error other than ErrRecordNotFound,
// retries the same read against fallback. When both fail the service's read
// policy picks between the empty value and the joined error.
func readWithFallback[T any](s *BlogService, op string, primary, fallback func(PostReader) (T, error)) (T, ReadSource, error) {
	var empty T

	v, err := primary(s.primary)
	if err == nil || errors.Is(err, ErrRecordNotFound) {
		return v, SourcePrimary, err
	}

	s.logger.Warn("primary store read failed, using fallback", slog.String("op", op), slog.String("error", err.Error()))

	if s.fallback != nil {
		fv, ferr := fallback(s.fallback)
		if ferr == nil || errors.Is(ferr, ErrRecordNotFound) {
			return fv, SourceFallback, ferr
		}
		err = errors.Join(err, ferr)
	}

	s.logger.Error("fallback read failed", slog.String("op", op), slog.String("policy", s.policy.String()), slog.String("error", err.Error()))

	if s.policy == StrictReads {
		return empty, SourceNone, fmt.Errorf("%s: %w", op, err)
	}

	return empty, SourceNone, nil
}
