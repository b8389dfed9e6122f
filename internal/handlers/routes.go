package handlers

import (
	"net/http"
	"strings"

	"github.com/SICout9010/K-Camp/internal/auth"
	"github.com/SICout9010/K-Camp/internal/config"
	"github.com/SICout9010/K-Camp/internal/i18n"
	"github.com/SICout9010/K-Camp/internal/storage"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Auth          *auth.AuthHandler
	Camps         *CampHandler
	Registrations *RegistrationHandler
	APIKeys       *APIKeyHandler
	// Files is served under /files/ when it keeps objects in memory.
	Files storage.FileStore
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}

// secured marks an operation as taking the session cookie or an API key.
func secured(o *huma.Operation) {
	o.Security = []map[string][]string{{"cookieAuth": {}}, {"apiKey": {}}}
}

func RegisterRoutes(r *chi.Mux, cfg *config.Config, h Handlers) huma.API {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	if cfg.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-KEY"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(i18n.Middleware)
	r.Use(h.Auth.SlidingSession)

	apiConfig := huma.DefaultConfig("K-Camp API", "1.0.0")
	apiConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.CookieName,
		},
		"apiKey": {
			Type: "apiKey",
			In:   "header",
			Name: "X-API-KEY",
		},
	}
	api := humachi.New(r, apiConfig)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	if mem, ok := h.Files.(*storage.MemoryStore); ok {
		r.Get("/files/*", serveMemory(mem))
	}

	// Auth
	huma.Get(api, "/auth/providers", h.Auth.HandleListProviders)
	huma.Get(api, "/auth/{provider}/login", h.Auth.HandleLogin)
	huma.Get(api, "/auth/{provider}/callback", h.Auth.HandleCallback)
	huma.Post(api, "/auth/logout", h.Auth.HandleLogout)
	huma.Get(api, "/me", h.Auth.HandleMe, secured)
	huma.Get(api, "/me/registrations", h.Registrations.HandleMyRegistrations, secured)

	huma.Get(api, "/api-keys", h.APIKeys.HandleList, secured)
	huma.Post(api, "/api-keys", h.APIKeys.HandleCreate, secured)
	huma.Delete(api, "/api-keys/{id}", h.APIKeys.HandleDelete, secured)

	huma.Get(api, "/faculties", h.Camps.HandleListFaculties)
	huma.Post(api, "/faculties", h.Camps.HandleCreateFaculty, secured)

	// Camps
	huma.Get(api, "/camps", h.Camps.HandleList)
	huma.Post(api, "/camps", h.Camps.HandleCreate, secured)
	huma.Get(api, "/camps/{slug}", h.Camps.HandleGet)
	huma.Patch(api, "/camps/{slug}", h.Camps.HandleUpdate, secured)
	huma.Delete(api, "/camps/{slug}", h.Camps.HandleDelete, secured)
	huma.Put(api, "/camps/{slug}/banner", h.Camps.HandleBanner, secured)
	huma.Put(api, "/camps/{slug}/form", h.Camps.HandleSetForm, secured)

	// Registrations
	huma.Get(api, "/camps/{slug}/register", h.Registrations.HandleRegisterPage)
	huma.Post(api, "/camps/{slug}/register", h.Registrations.HandleRegister)
	huma.Get(api, "/camps/{slug}/dashboard", h.Registrations.HandleDashboard, secured)
	huma.Get(api, "/camps/{slug}/export", h.Registrations.HandleExport, secured)
	huma.Post(api, "/camps/{slug}/recount", h.Registrations.HandleRecount, secured)
	huma.Post(api, "/registrations/{id}/status", h.Registrations.HandleStatus, secured)
	huma.Post(api, "/registrations/{id}/payment", h.Registrations.HandlePayment, secured)
	huma.Put(api, "/registrations/{id}/files", h.Registrations.HandleFiles, secured)
	huma.Get(api, "/registrations/{id}/history", h.Registrations.HandleHistory, secured)

	return api
}

func serveMemory(mem *storage.MemoryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		obj, ok := mem.Get(key)
		if !ok {
			http.NotFound(w, r)
			return
		}
		if obj.ContentType != "" {
			w.Header().Set("Content-Type", obj.ContentType)
		}
		w.Write(obj.Data)
	}
}
