package service

import "strings"

// ParseRepoID splits an "owner/name" repository identifier into its two
// segments. Both must be non-empty and the identifier must contain exactly
// one slash.
func ParseRepoID(id string) (owner, name string, err *Error) {
	parts := strings.Split(id, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", Errorf(CodeValidationFailed,
			"invalid repository %q: expected \"owner/name\"", id)
	}
	return parts[0], parts[1], nil
}
