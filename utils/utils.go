package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateReference builds a payment reference like ERUDIO-7-3-AB12CD34EF.
// The random suffix carries the collision entropy; the unique constraint on
// Transaction.Reference is the actual authority.
func GenerateReference(prefix string, userID, targetID uint) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return fmt.Sprintf("%s-%d-%d-%s", prefix, userID, targetID, suffix)
}

// NewToken returns a random token for verification and invite links.
func NewToken() string {
	return uuid.NewString()
}

// Slugify lowercases a title and collapses it to hyphen-separated ascii words.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
