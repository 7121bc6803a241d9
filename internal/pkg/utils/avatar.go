package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// AvatarURL returns the Gravatar URL for an email address. Size defaults to
// 200px; "mp" gives a neutral silhouette for addresses without a profile.
func AvatarURL(email string, size int) string {
	if size <= 0 {
		size = 200
	}
	normalized := strings.ToLower(strings.TrimSpace(email))
	hash := md5.Sum([]byte(normalized))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=mp", hash, size)
}
