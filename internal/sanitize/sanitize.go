// Package sanitize provides shared identifier and filename validation.
//
// Usernames become filesystem path components and vector collection name
// suffixes, and uploaded filenames become path components inside a tenant
// workspace, so both are validated before any path or collection name is
// derived from them.
package sanitize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validation errors for security checks.
var (
	// ErrInvalidUsername indicates the username format is invalid.
	ErrInvalidUsername = errors.New("invalid username format")

	// ErrInvalidFilename indicates the filename format is invalid.
	ErrInvalidFilename = errors.New("invalid filename format")
)

// usernamePattern matches valid usernames: alphanumeric plus -_. with an
// alphanumeric first character. Max 64 chars to keep derived collection
// names within store limits.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,63}$`)

// ValidateUsername checks that a username is safe to use as a path component
// and as part of a collection name.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: empty", ErrInvalidUsername)
	}
	if strings.Contains(username, "..") {
		return fmt.Errorf("%w: contains '..'", ErrInvalidUsername)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}
	return nil
}

// ValidateFilename checks that an uploaded filename is a bare name with no
// path separators or traversal sequences.
func ValidateFilename(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidFilename)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: contains path separator", ErrInvalidFilename)
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("%w: contains '..'", ErrInvalidFilename)
	}
	if name == "." {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	return nil
}
