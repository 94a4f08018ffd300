package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// HashFields joins parts with ':' and returns the md5 hex digest. Used for
// ETags and cache keys, not for anything security-sensitive.
func HashFields(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("%x", sum)
}
