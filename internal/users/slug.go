package users

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Slugify lowercases the name and collapses anything non-alphanumeric into
// single hyphens, so "Orto di Maria  (Pula)" becomes "orto-di-maria-pula".
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(normalizeRune(r))
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// accented vowels are common in Sardinian business names
func normalizeRune(r rune) rune {
	switch r {
	case 'à', 'á', 'â', 'ä':
		return 'a'
	case 'è', 'é', 'ê', 'ë':
		return 'e'
	case 'ì', 'í', 'î', 'ï':
		return 'i'
	case 'ò', 'ó', 'ô', 'ö':
		return 'o'
	case 'ù', 'ú', 'û', 'ü':
		return 'u'
	default:
		return r
	}
}

type slugChecker interface {
	SlugExists(ctx context.Context, slug string, excludeUserID uuid.UUID) (bool, error)
}

// EnsureUniqueSlug returns the base slug, or the first numbered variant
// (slug-2, slug-3, ...) not already owned by another user.
func EnsureUniqueSlug(ctx context.Context, repo slugChecker, base string, excludeUserID uuid.UUID) (string, error) {
	if base == "" {
		base = "azienda"
	}
	candidate := base
	for i := 2; ; i++ {
		taken, err := repo.SlugExists(ctx, candidate, excludeUserID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
