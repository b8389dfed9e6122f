// Package i18n localizes user-facing messages. Thai is the default language,
// English is available through ?lang=en, the lang cookie or Accept-Language.
package i18n

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the user's language preference.
	LangCookieName = "lang"
)

var supported = []language.Tag{language.Thai, language.English}

var matcher = language.NewMatcher(supported)

type contextKey struct{}

func Supported() []language.Tag {
	return supported
}

func Default() language.Tag {
	return supported[0]
}

// ParseTag returns the supported tag closest to value.
func ParseTag(value string) (language.Tag, bool) {
	tag, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return Default(), false
	}
	return Match(tag), true
}

// Match picks the best supported tag, falling back to Thai.
func Match(tags ...language.Tag) language.Tag {
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default()
	}
	return supported[idx]
}

// ResolveTag determines the language of a request. The bool reports whether
// the choice came from the query and should be remembered in a cookie.
func ResolveTag(r *http.Request) (language.Tag, bool) {
	if r == nil {
		return Default(), false
	}

	if v := r.URL.Query().Get(LangParam); v != "" {
		if tag, ok := ParseTag(v); ok {
			return tag, true
		}
	}

	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := ParseTag(cookie.Value); ok {
			return tag, false
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			return Match(tags...), false
		}
	}

	return Default(), false
}

// Middleware stores the request language in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tag, persist := ResolveTag(r)
		if persist {
			http.SetCookie(w, &http.Cookie{
				Name:     LangCookieName,
				Value:    tag.String(),
				Path:     "/",
				MaxAge:   int((365 * 24 * time.Hour).Seconds()),
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(WithTag(r.Context(), tag)))
	})
}

func WithTag(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, contextKey{}, tag)
}

// Tag returns the language stored in ctx, or Thai.
func Tag(ctx context.Context) language.Tag {
	if ctx != nil {
		if tag, ok := ctx.Value(contextKey{}).(language.Tag); ok {
			return tag
		}
	}
	return Default()
}

// T translates key into the language of ctx.
func T(ctx context.Context, key string, args ...interface{}) string {
	return message.NewPrinter(Tag(ctx)).Sprintf(key, args...)
}
