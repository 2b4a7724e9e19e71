package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// handleRegex matches AT Protocol handles: dot-separated DNS labels with at
// least two segments.
var handleRegex = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)

// didRegex matches did:plc and did:web identifiers.
var didRegex = regexp.MustCompile(`^did:(plc|web):[a-zA-Z0-9._:%-]+$`)

// ValidateHandle validates a user handle or DID.
// Handles are used as storage keys, so anything that could escape a
// directory or a key namespace is rejected.
func ValidateHandle(handle string) error {
	if handle == "" {
		return New(ErrCodeInvalidHandle, "handle cannot be empty")
	}

	if len(handle) > 253 {
		return New(ErrCodeInvalidHandle, "handle too long (max 253 characters)")
	}

	for _, r := range handle {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidHandle, "handle contains invalid control characters")
		}
	}

	if strings.HasPrefix(handle, "did:") {
		if !didRegex.MatchString(handle) {
			return New(ErrCodeInvalidHandle, "invalid DID: %q", handle)
		}
		return nil
	}

	if !handleRegex.MatchString(handle) {
		return New(ErrCodeInvalidHandle, "invalid handle: %q", handle)
	}

	return nil
}

// pageRegex matches page record keys such as "blento.self" or "blento.links".
var pageRegex = regexp.MustCompile(`^blento\.[a-z0-9][a-z0-9-]{0,63}$`)

// ValidatePage validates a page record key.
func ValidatePage(page string) error {
	if page == "" {
		return New(ErrCodeInvalidPage, "page cannot be empty")
	}

	if !pageRegex.MatchString(page) {
		return New(ErrCodeInvalidPage, "invalid page %q (want blento.<name>, lowercase letters, digits and dashes)", page)
	}

	return nil
}

// ValidateItemID validates a card ID. IDs double as record keys, so they must
// be non-empty printable ASCII without path separators.
func ValidateItemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidItem, "item ID cannot be empty")
	}

	if len(id) > 512 {
		return New(ErrCodeInvalidItem, "item ID too long (max 512 characters)")
	}

	for _, r := range id {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return New(ErrCodeInvalidItem, "item ID contains invalid characters: %q", id)
		}
	}

	dangerousPatterns := []string{
		"..",
		"/",
		"\\",
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidItem, "item ID contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidatePath validates a relative file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidInput, "path cannot contain path traversal sequences (..)")
	}

	return nil
}
