package memorial

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	slugMaxLen           = 100
	slugConflictAttempts = 25
)

var reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify normalizes a display name into a URL-safe slug: lowercase, diacritics
// folded away, every run outside [a-z0-9] collapsed to a single hyphen, ends
// trimmed. Returns "" when the name has no alphanumeric characters; the
// allocator substitutes a generated token in that case.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	var folded []rune
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		folded = append(folded, r)
	}
	s = string(folded)

	s = reNonAlnum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > slugMaxLen {
		s = strings.Trim(s[:slugMaxLen], "-")
	}

	return s
}

// slugToken returns a short random token used to disambiguate slugs when the
// name yields nothing usable or the suffix loop is exhausted.
func slugToken() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(buf)
}

// allocateSlug derives the slug candidate for a new memorial: the normalized
// base when unused, otherwise base-{n} where n is the number of slugs already
// sharing the prefix. The candidate is only reserved once the insert succeeds;
// the caller retries with nextSlug on a unique-index conflict.
func (s *service) allocateSlug(ctx context.Context, name string) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = "memorial-" + slugToken()
	}

	existing, err := s.repo.ListSlugsByPrefix(ctx, base)
	if err != nil {
		return "", &PersistenceError{Op: "listing slugs", Err: err}
	}

	if len(existing) == 0 {
		return base, nil
	}

	return fmt.Sprintf("%s-%d", base, len(existing)), nil
}

// nextSlug produces the follow-up candidate after a conflict on the given
// attempt number (1-based): the numeric suffix is incremented, so base,
// base-1, base-2, ... are tried in order. Past the bounded attempts it falls
// back to a random token, which cannot realistically collide.
func nextSlug(candidate string, attempt int) string {
	base, n := splitSlugSuffix(candidate)

	if attempt >= slugConflictAttempts {
		return base + "-" + slugToken()
	}

	return fmt.Sprintf("%s-%d", base, n+1)
}

// splitSlugSuffix separates a trailing numeric disambiguator from its base,
// returning the whole slug and 0 when there is none.
func splitSlugSuffix(slug string) (string, int) {
	idx := strings.LastIndex(slug, "-")
	if idx <= 0 || idx == len(slug)-1 {
		return slug, 0
	}

	suffix := slug[idx+1:]
	n := 0
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return slug, 0
		}
		n = n*10 + int(r-'0')
	}

	return slug[:idx], n
}
