/*
Package pathx validates the identifiers that address a room's virtual file tree.

Three grammars are used at the boundaries of the system:
  - names (a single file or folder key): [A-Za-z0-9._-]+
  - paths (slash-joined names as sent by clients): [A-Za-z0-9./_-]+
  - room ids accepted by the real-time join: [A-Za-z0-9-]+

The checks are byte-wise ASCII only, so any non-ASCII input is rejected.
*/
package pathx

// IsValidName reports whether s is a non-empty file or folder name.
func IsValidName(s string) bool {
	return matches(s, func(c byte) bool {
		return isAlnum(c) || c == '.' || c == '_' || c == '-'
	})
}

// IsValidPath reports whether s is non-empty and uses only path characters.
// It does not check segment structure; see the tree package for that.
func IsValidPath(s string) bool {
	return matches(s, func(c byte) bool {
		return isAlnum(c) || c == '.' || c == '_' || c == '-' || c == '/'
	})
}

// IsValidRoomID reports whether s satisfies the join grammar for room ids.
func IsValidRoomID(s string) bool {
	return matches(s, func(c byte) bool {
		return isAlnum(c) || c == '-'
	})
}

func matches(s string, allowed func(byte) bool) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !allowed(s[i]) {
			return false
		}
	}
	return true
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
