package repositories

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ToggleKeyPrefix is the key prefix of toggle state entries.
const ToggleKeyPrefix = "toggle:"

var ErrInvalidScope = errors.New("invalid scope")

// scopePrefix returns the key prefix shared by every entry of scope.
func scopePrefix(scope string) []byte {
	return []byte(ToggleKeyPrefix + scope + ":")
}

// toggleKey builds the key of postID within scope.
func toggleKey(scope string, postID int) []byte {
	return []byte(fmt.Sprintf("%s%s:%d", ToggleKeyPrefix, scope, postID))
}

// parseToggleKey extracts the post id from a key built by toggleKey.
func parseToggleKey(key []byte) (int, error) {
	s := string(key)
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return 0, fmt.Errorf("malformed toggle key %q", s)
	}
	id, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return 0, fmt.Errorf("malformed toggle key %q: %v", s, err)
	}
	return id, nil
}
