package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/SICout9010/K-Camp/internal/i18n"
	"github.com/SICout9010/K-Camp/internal/models"
	"github.com/SICout9010/K-Camp/internal/store"
	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CookieName    = "auth_token"
	TokenDuration = 24 * time.Hour
)

// AuthInput is embedded by operations that need the caller's identity. A
// session cookie or an X-API-KEY header is accepted.
type AuthInput struct {
	Cookie string `header:"Cookie"`
	APIKey string `header:"X-API-KEY"`
}

func (h *AuthHandler) GenerateToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

func (h *AuthHandler) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return []byte(h.cfg.JWTSecret), nil
}

// parseSession returns the user ID and expiry of a session token.
func (h *AuthHandler) parseSession(raw string) (uint, time.Time, error) {
	token, err := jwt.Parse(raw, h.keyFunc)
	if err != nil || !token.Valid {
		return 0, time.Time{}, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, time.Time{}, errors.New("invalid token claims")
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		return 0, time.Time{}, errors.New("invalid token claims")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0, time.Time{}, errors.New("token has no expiry")
	}
	return uint(userIDFloat), exp.Time, nil
}

func (h *AuthHandler) secureCookies() bool {
	return strings.HasPrefix(h.cfg.PublicURL, "https://")
}

func (h *AuthHandler) sessionCookie(token string) http.Cookie {
	return http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  time.Now().Add(TokenDuration),
		HttpOnly: true,
		Secure:   h.secureCookies(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
}

func cookieValue(header, name string) string {
	if header == "" {
		return ""
	}
	cookies, err := http.ParseCookie(header)
	if err != nil {
		return ""
	}
	for _, c := range cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// Authorize resolves the caller or fails with 401.
func (h *AuthHandler) Authorize(ctx context.Context, input AuthInput) (*models.User, error) {
	user, err := h.identify(ctx, input)
	if err != nil {
		return nil, huma.Error401Unauthorized(i18n.T(ctx, i18n.KeyUnauthorized))
	}
	return user, nil
}

// OptionalUser returns the caller, or nil for anonymous requests.
func (h *AuthHandler) OptionalUser(ctx context.Context, input AuthInput) *models.User {
	user, err := h.identify(ctx, input)
	if err != nil {
		return nil
	}
	return user
}

func (h *AuthHandler) identify(ctx context.Context, input AuthInput) (*models.User, error) {
	if input.APIKey != "" {
		key, err := h.store.APIKeyByKey(ctx, input.APIKey)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		if key.ExpiresAt != nil && now.After(*key.ExpiresAt) {
			return nil, errors.New("api key expired")
		}
		if err := h.store.TouchAPIKey(ctx, key.ID, now); err != nil {
			log.Printf("Failed to touch API key %d: %v", key.ID, err)
		}
		return h.store.GetUser(ctx, key.UserID)
	}

	raw := cookieValue(input.Cookie, CookieName)
	if raw == "" {
		return nil, store.ErrNotFound
	}
	userID, _, err := h.parseSession(raw)
	if err != nil {
		return nil, err
	}
	return h.store.GetUser(ctx, userID)
}

// SlidingSession renews the session cookie once it is past half its
// lifetime. It never rejects a request.
func (h *AuthHandler) SlidingSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(CookieName); err == nil {
			userID, exp, err := h.parseSession(cookie.Value)
			if err == nil && time.Until(exp) < TokenDuration/2 {
				if token, err := h.GenerateToken(userID); err == nil {
					c := h.sessionCookie(token)
					http.SetCookie(w, &c)
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

type UserResponse struct {
	ID        uint        `json:"id"`
	Username  string      `json:"username"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	Provider  string      `json:"provider"`
	AvatarURL string      `json:"avatar_url"`
}

type MeOutput struct {
	Body UserResponse
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *AuthInput) (*MeOutput, error) {
	user, err := h.Authorize(ctx, *input)
	if err != nil {
		return nil, err
	}
	out := &MeOutput{Body: UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
		Provider: user.Provider,
	}}
	if user.Avatar != "" && h.files != nil {
		out.Body.AvatarURL = h.files.URL(user.Avatar)
	}
	return out, nil
}

type LogoutOutput struct {
	SetCookie []http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Message string `json:"message"`
	}
}

func (h *AuthHandler) HandleLogout(ctx context.Context, input *struct{}) (*LogoutOutput, error) {
	out := &LogoutOutput{SetCookie: []http.Cookie{{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	}}}
	out.Body.Message = i18n.T(ctx, i18n.KeyLoggedOut)
	return out, nil
}
