package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SICout9010/K-Camp/internal/config"
	"github.com/SICout9010/K-Camp/internal/i18n"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/text/language"
)

func signedToken(t *testing.T, secret string, userID uint, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func serveSliding(handler *AuthHandler, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", "/", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	}
	rr := httptest.NewRecorder()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler.SlidingSession(next).ServeHTTP(rr, req)
	return rr
}

func sessionCookieFrom(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	return nil
}

func TestSlidingSession(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := &AuthHandler{cfg: cfg}

	t.Run("TokenRenewed", func(t *testing.T) {
		// 11 hours left is less than TokenDuration/2.
		token := signedToken(t, cfg.JWTSecret, 1, 11*time.Hour)
		rr := serveSliding(handler, token)

		if rr.Code != http.StatusOK {
			t.Errorf("expected status OK, got %v", rr.Code)
		}
		c := sessionCookieFrom(rr)
		if c == nil {
			t.Fatal("expected new auth_token cookie to be set")
		}
		if c.Value == token {
			t.Error("expected new token value, but got the old one")
		}
		if !c.HttpOnly {
			t.Error("expected HttpOnly session cookie")
		}
	})

	t.Run("TokenNotRenewed", func(t *testing.T) {
		token := signedToken(t, cfg.JWTSecret, 1, 13*time.Hour)
		rr := serveSliding(handler, token)
		if sessionCookieFrom(rr) != nil {
			t.Error("did not expect a new auth_token cookie to be set")
		}
	})

	t.Run("InvalidTokenPassesThrough", func(t *testing.T) {
		token := signedToken(t, "wrong-secret", 1, time.Hour)
		rr := serveSliding(handler, token)
		if rr.Code != http.StatusOK {
			t.Errorf("expected request to pass, got %v", rr.Code)
		}
		if sessionCookieFrom(rr) != nil {
			t.Error("forged tokens must not be renewed")
		}
	})

	t.Run("NoCookie", func(t *testing.T) {
		rr := serveSliding(handler, "")
		if rr.Code != http.StatusOK || sessionCookieFrom(rr) != nil {
			t.Errorf("unexpected response %v", rr.Code)
		}
	})
}

func TestCookieValue(t *testing.T) {
	if got := cookieValue("lang=th; auth_token=abc; other=1", CookieName); got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
	if got := cookieValue("", CookieName); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestHandleLogout(t *testing.T) {
	h := &AuthHandler{}
	ctx := i18n.WithTag(context.Background(), language.English)

	out, err := h.HandleLogout(ctx, &struct{}{})
	if err != nil {
		t.Fatalf("HandleLogout returned error: %v", err)
	}
	if out.Body.Message != i18n.T(ctx, i18n.KeyLoggedOut) {
		t.Errorf("unexpected message %q", out.Body.Message)
	}
	if len(out.SetCookie) != 1 || out.SetCookie[0].Name != CookieName || out.SetCookie[0].MaxAge != -1 {
		t.Errorf("expected the session cookie to be cleared, got %+v", out.SetCookie)
	}
	if th := i18n.T(context.Background(), i18n.KeyLoggedOut); th == out.Body.Message {
		t.Errorf("expected a Thai default message, got %q", th)
	}
}
