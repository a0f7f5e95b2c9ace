package security

import (
	"fmt"
	"strings"
	"unicode"
)

var usernameCharset = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

const (
	usernameLength = 12
	// Cap the prefix so the random suffix never drops below three
	// characters, even for long site names.
	maxUsernamePrefix = 8
)

// GenerateUsername synthesizes a 12-character display handle of the form
// PREFIX-SUFFIX, where PREFIX is the uppercase initials of the site name's
// words and SUFFIX is random alphanumeric filler. Uniqueness is the caller's
// concern, enforced at the persistence boundary.
func GenerateUsername(siteName string) (string, error) {
	words := strings.Fields(siteName)
	if len(words) == 0 {
		return "", fmt.Errorf("site name is required")
	}

	var prefix strings.Builder
	for _, word := range words {
		runes := []rune(word)
		prefix.WriteRune(unicode.ToUpper(runes[0]))
		if prefix.Len() >= maxUsernamePrefix {
			break
		}
	}

	initials := prefix.String()
	if len([]rune(initials)) > maxUsernamePrefix {
		initials = string([]rune(initials)[:maxUsernamePrefix])
	}

	suffixLen := usernameLength - len([]rune(initials)) - 1
	suffix := make([]rune, suffixLen)
	for i := 0; i < suffixLen; i++ {
		idx, err := randInt(len(usernameCharset))
		if err != nil {
			return "", err
		}
		suffix[i] = usernameCharset[idx]
	}

	return fmt.Sprintf("%s-%s", initials, string(suffix)), nil
}
