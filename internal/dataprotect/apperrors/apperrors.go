// Package apperrors provides the standardized error kinds used across the
// data-protection packages.
package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds. Errors raised by the packages under internal/dataprotect wrap
// one of these, so callers can classify failures with errors.Is without
// depending on message text. The CLI's own argument errors wrap none of them.
var (
	// ErrConfiguration indicates a bad algorithm id, wrong master-secret size,
	// or malformed descriptor XML. Fails loudly at startup or first use.
	ErrConfiguration = errors.New("configuration error")

	// ErrRepository indicates a key repository I/O failure. During a key ring
	// rebuild this is absorbed by the serve-stale path and only surfaces if no
	// snapshot exists yet.
	ErrRepository = errors.New("repository error")

	// ErrCryptographic is the single opaque error for every cryptographic
	// failure: bad tag, wrong key, unknown key id, truncated payload, or a
	// revoked key used without explicit allowance. No differentiating detail
	// leaks to the caller.
	ErrCryptographic = errors.New("cryptographic failure")

	// ErrInvalidArgument indicates a programmer error: a nil or empty purpose
	// list, or nil plaintext. Fails immediately.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Wrap wraps err with additional context while preserving the error chain.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(fmt.Sprintf(format, args...)+": %w", err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
