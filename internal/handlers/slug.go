package handlers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/SICout9010/K-Camp/internal/store"
)

// Thai letters are kept so Thai titles still produce readable URLs.
var slugUnsafe = regexp.MustCompile(`[^a-z0-9\x{0E00}-\x{0E7F}]+`)

// Slugify lowercases title and collapses everything but a-z, 0-9 and Thai
// into single dashes.
func Slugify(title string) string {
	s := slugUnsafe.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
	return strings.Trim(s, "-")
}

// uniqueSlug returns want, or want with the first free numeric suffix.
func uniqueSlug(ctx context.Context, s *store.Store, want string) (string, error) {
	if want == "" {
		want = "camp"
	}
	candidate := want
	for i := 2; ; i++ {
		taken, err := s.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		if i > 100 {
			return "", fmt.Errorf("no free slug for %q", want)
		}
		candidate = fmt.Sprintf("%s-%d", want, i)
	}
}
