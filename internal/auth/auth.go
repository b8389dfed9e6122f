package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/SICout9010/K-Camp/internal/config"
	"github.com/SICout9010/K-Camp/internal/i18n"
	"github.com/SICout9010/K-Camp/internal/models"
	"github.com/SICout9010/K-Camp/internal/storage"
	"github.com/SICout9010/K-Camp/internal/store"
	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	GoogleUserInfoURL   = "https://openidconnect.googleapis.com/v1/userinfo"
	FacebookUserInfoURL = "https://graph.facebook.com/me?fields=id,name,email,picture.type(large)"

	StateCookieName = "oauth_state"
	stateDuration   = 10 * time.Minute
	maxAvatarBytes  = 5 << 20
)

// Provider is an OAuth2 identity provider users can sign in with.
type Provider struct {
	Name        string
	DisplayName string
	OAuth       *oauth2.Config
	UserInfoURL string
}

func GoogleProvider(clientID, clientSecret, redirectURL string) *Provider {
	return &Provider{
		Name:        "google",
		DisplayName: "Google",
		OAuth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoints.Google,
		},
		UserInfoURL: GoogleUserInfoURL,
	}
}

func FacebookProvider(clientID, clientSecret, redirectURL string) *Provider {
	return &Provider{
		Name:        "facebook",
		DisplayName: "Facebook",
		OAuth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"email", "public_profile"},
			Endpoint:     endpoints.Facebook,
		},
		UserInfoURL: FacebookUserInfoURL,
	}
}

// Profile is the identity returned by a provider's userinfo endpoint.
type Profile struct {
	ID        string
	Name      string
	Email     string
	AvatarURL string
}

type AuthHandler struct {
	cfg        *config.Config
	store      *store.Store
	files      storage.FileStore
	providers  []*Provider
	httpClient *http.Client
}

// NewAuthHandler registers every provider that has a client ID configured.
// files may be nil, in which case avatars are not copied.
func NewAuthHandler(cfg *config.Config, s *store.Store, files storage.FileStore) *AuthHandler {
	h := &AuthHandler{
		cfg:        cfg,
		store:      s,
		files:      files,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if cfg.GoogleClientID != "" {
		h.AddProvider(GoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, h.callbackURL("google")))
	}
	if cfg.FacebookClientID != "" {
		h.AddProvider(FacebookProvider(cfg.FacebookClientID, cfg.FacebookClientSecret, h.callbackURL("facebook")))
	}
	return h
}

func (h *AuthHandler) AddProvider(p *Provider) {
	h.providers = append(h.providers, p)
}

func (h *AuthHandler) provider(name string) *Provider {
	for _, p := range h.providers {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (h *AuthHandler) callbackURL(provider string) string {
	return strings.TrimSuffix(h.cfg.PublicURL, "/") + "/auth/" + provider + "/callback"
}

type ProviderInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	LoginURL    string `json:"login_url"`
}

type ListProvidersOutput struct {
	Body []ProviderInfo
}

func (h *AuthHandler) HandleListProviders(ctx context.Context, input *struct{}) (*ListProvidersOutput, error) {
	out := &ListProvidersOutput{Body: []ProviderInfo{}}
	for _, p := range h.providers {
		out.Body = append(out.Body, ProviderInfo{
			Name:        p.Name,
			DisplayName: p.DisplayName,
			LoginURL:    "/auth/" + p.Name + "/login",
		})
	}
	return out, nil
}

type LoginInput struct {
	Provider string `path:"provider"`
	Redirect string `query:"redirect" doc:"Path to return to after signing in"`
}

type RedirectOutput struct {
	Status    int
	Location  string        `header:"Location"`
	SetCookie []http.Cookie `header:"Set-Cookie"`
}

type stateClaims struct {
	State    string `json:"state"`
	Verifier string `json:"verifier"`
	Provider string `json:"provider"`
	Redirect string `json:"redirect,omitempty"`
	jwt.RegisteredClaims
}

func (h *AuthHandler) HandleLogin(ctx context.Context, input *LoginInput) (*RedirectOutput, error) {
	p := h.provider(input.Provider)
	if p == nil {
		return nil, huma.Error404NotFound(i18n.T(ctx, i18n.KeyUnknownAuth))
	}

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	claims := stateClaims{
		State:    state,
		Verifier: verifier,
		Provider: p.Name,
		Redirect: safeRedirect(input.Redirect),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(stateDuration)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		return nil, huma.Error500InternalServerError(i18n.T(ctx, i18n.KeyGenericError))
	}

	return &RedirectOutput{
		Status:   http.StatusTemporaryRedirect,
		Location: p.OAuth.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier)),
		SetCookie: []http.Cookie{{
			Name:     StateCookieName,
			Value:    signed,
			Path:     "/auth",
			MaxAge:   int(stateDuration.Seconds()),
			HttpOnly: true,
			Secure:   h.secureCookies(),
			SameSite: http.SameSiteLaxMode,
		}},
	}, nil
}

type CallbackInput struct {
	Provider string `path:"provider"`
	Code     string `query:"code"`
	State    string `query:"state"`
	Cookie   string `header:"Cookie"`
}

func (h *AuthHandler) HandleCallback(ctx context.Context, input *CallbackInput) (*RedirectOutput, error) {
	p := h.provider(input.Provider)
	if p == nil {
		return nil, huma.Error404NotFound(i18n.T(ctx, i18n.KeyUnknownAuth))
	}
	if input.Code == "" {
		return nil, huma.Error400BadRequest(i18n.T(ctx, i18n.KeyLoginFailed))
	}

	claims, err := h.parseState(cookieValue(input.Cookie, StateCookieName))
	if err != nil || claims.State != input.State || claims.Provider != p.Name {
		return nil, huma.Error400BadRequest(i18n.T(ctx, i18n.KeyInvalidState))
	}

	token, err := p.OAuth.Exchange(ctx, input.Code, oauth2.VerifierOption(claims.Verifier))
	if err != nil {
		log.Printf("OAuth2 exchange with %s failed: %v", p.Name, err)
		return nil, huma.Error502BadGateway(i18n.T(ctx, i18n.KeyLoginFailed))
	}

	profile, err := fetchProfile(ctx, p.OAuth.Client(ctx, token), p.UserInfoURL)
	if err != nil {
		log.Printf("Fetching %s profile failed: %v", p.Name, err)
		return nil, huma.Error502BadGateway(i18n.T(ctx, i18n.KeyLoginFailed))
	}

	user, err := h.upsertUser(ctx, p.Name, profile)
	if err != nil {
		log.Printf("Saving %s user %s failed: %v", p.Name, profile.ID, err)
		return nil, huma.Error500InternalServerError(i18n.T(ctx, i18n.KeyGenericError))
	}

	session, err := h.GenerateToken(user.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError(i18n.T(ctx, i18n.KeyGenericError))
	}

	target := strings.TrimSuffix(h.cfg.FrontendURL, "/") + "/"
	if claims.Redirect != "" {
		target = strings.TrimSuffix(h.cfg.FrontendURL, "/") + claims.Redirect
	}
	return &RedirectOutput{
		Status:   http.StatusTemporaryRedirect,
		Location: target,
		SetCookie: []http.Cookie{
			h.sessionCookie(session),
			{Name: StateCookieName, Value: "", Path: "/auth", MaxAge: -1, HttpOnly: true},
		},
	}, nil
}

func (h *AuthHandler) parseState(raw string) (*stateClaims, error) {
	if raw == "" {
		return nil, fmt.Errorf("missing state cookie")
	}
	var claims stateClaims
	_, err := jwt.ParseWithClaims(raw, &claims, h.keyFunc)
	if err != nil {
		return nil, err
	}
	return &claims, nil
}

func (h *AuthHandler) upsertUser(ctx context.Context, provider string, profile Profile) (*models.User, error) {
	user, err := h.store.FindOrInitUser(ctx, provider, profile.ID)
	if err != nil {
		return nil, err
	}
	if profile.Name != "" {
		user.Name = profile.Name
	}
	if profile.Email != "" {
		user.Email = profile.Email
	}
	if user.Username == "" {
		user.Username = usernameFor(profile)
	}
	user.Role = RoleFor(user.Role, user.Email, h.cfg.OrganizerEmailDomain)

	if err := h.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	if user.Avatar == "" && profile.AvatarURL != "" && h.files != nil {
		key, err := h.copyAvatar(ctx, user.ID, profile.AvatarURL)
		if err != nil {
			log.Printf("Copying avatar of user %d failed: %v", user.ID, err)
		} else if err := h.store.UpdateUser(ctx, user.ID, map[string]interface{}{"avatar": key}); err != nil {
			log.Printf("Saving avatar of user %d failed: %v", user.ID, err)
		} else {
			user.Avatar = key
		}
	}
	return user, nil
}

// RoleFor returns the role a user gets on sign in. Addresses in the
// organizer domain may organize camps; admins keep their role.
func RoleFor(current models.Role, email, organizerDomain string) models.Role {
	if current == models.RoleAdmin {
		return models.RoleAdmin
	}
	if organizerDomain != "" && strings.HasSuffix(strings.ToLower(email), "@"+strings.ToLower(organizerDomain)) {
		return models.RoleOrganizer
	}
	return models.RoleStudent
}

func usernameFor(p Profile) string {
	if at := strings.Index(p.Email, "@"); at > 0 {
		return p.Email[:at]
	}
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

func (h *AuthHandler) copyAvatar(ctx context.Context, userID uint, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("avatar responded %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAvatarBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxAvatarBytes {
		return "", fmt.Errorf("avatar larger than %d bytes", maxAvatarBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	ext := ".jpg"
	if strings.Contains(contentType, "png") {
		ext = ".png"
	}
	key := storage.ObjectKey(fmt.Sprintf("avatars/%d", userID), "avatar"+ext)
	if err := h.files.Put(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", err
	}
	return key, nil
}

// userInfo covers the userinfo shapes of Google (sub, picture as string) and
// Facebook (id, picture.data.url).
type userInfo struct {
	Sub     string          `json:"sub"`
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Picture json.RawMessage `json:"picture"`
}

func fetchProfile(ctx context.Context, client *http.Client, url string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Profile{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return Profile{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("userinfo responded %s", resp.Status)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Profile{}, fmt.Errorf("decode userinfo: %w", err)
	}

	p := Profile{ID: info.Sub, Name: info.Name, Email: info.Email}
	if p.ID == "" {
		p.ID = info.ID
	}
	if p.ID == "" {
		return Profile{}, fmt.Errorf("userinfo has no subject")
	}

	var picture string
	if err := json.Unmarshal(info.Picture, &picture); err == nil {
		p.AvatarURL = picture
	} else {
		var nested struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		}
		if err := json.Unmarshal(info.Picture, &nested); err == nil {
			p.AvatarURL = nested.Data.URL
		}
	}
	return p, nil
}

// safeRedirect keeps only same-site absolute paths.
func safeRedirect(path string) string {
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.Contains(path, "\\") {
		return ""
	}
	return path
}
