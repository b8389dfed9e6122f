package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/SICout9010/K-Camp/internal/config"
	"github.com/SICout9010/K-Camp/internal/i18n"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR fake image")

type upload struct {
	name        string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, field string, files ...upload) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, u := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, u.name))
		h.Set("Content-Type", u.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(u.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func newRouter(f *fixture) *chi.Mux {
	r := chi.NewRouter()
	RegisterRoutes(r, &config.Config{}, Handlers{
		Auth:          f.auth,
		Camps:         f.camps,
		Registrations: f.regs,
		APIKeys:       f.keys,
		Files:         f.files,
	})
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRoutes_HealthAndHeaders(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)

	rr := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rr = serve(r, req)
	assert.NotEmpty(t, rr.Header().Get("Strict-Transport-Security"))

	rr = serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRoutes_ListAndLanguage(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)

	rr := serve(r, httptest.NewRequest(http.MethodGet, "/camps?lang=en", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var list struct {
		Items []CampResponse `json:"items"`
		Total int64          `json:"totalItems"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, int64(1), list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "robotics", list.Items[0].Slug)

	var langCookie string
	for _, c := range rr.Result().Cookies() {
		if c.Name == i18n.LangCookieName {
			langCookie = c.Value
		}
	}
	assert.Equal(t, "en", langCookie)

	req := httptest.NewRequest(http.MethodGet, "/camps/nope", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	rr = serve(r, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	var problemBody struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problemBody))
	english := i18n.WithTag(context.Background(), language.English)
	assert.Equal(t, i18n.T(english, i18n.KeyCampNotFound), problemBody.Detail)
}

func TestRoutes_UploadsAndRegistration(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f)
	organizer := f.as(f.organizer).Cookie
	student := f.as(f.student).Cookie

	// Banner
	body, contentType := multipartBody(t, "file", upload{"banner.PNG", "image/png", pngBytes})
	req := httptest.NewRequest(http.MethodPut, "/camps/robotics/banner", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cookie", organizer)
	rr := serve(r, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var banner struct {
		Camp CampResponse `json:"camp"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &banner))
	require.True(t, strings.HasPrefix(banner.Camp.BannerURL, "http://api.test/files/camps/"), banner.Camp.BannerURL)
	assert.True(t, strings.HasSuffix(banner.Camp.BannerURL, ".png"))

	rr = serve(r, httptest.NewRequest(http.MethodGet, strings.TrimPrefix(banner.Camp.BannerURL, "http://api.test"), nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, pngBytes, rr.Body.Bytes())
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))

	body, contentType = multipartBody(t, "file", upload{"banner.png", "image/png", pngBytes})
	req = httptest.NewRequest(http.MethodPut, "/camps/robotics/banner", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cookie", student)
	rr = serve(r, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// Registration
	req = httptest.NewRequest(http.MethodPost, "/camps/robotics/register",
		strings.NewReader(`{"fields":[{"key":"field_1","value":"สมชาย ใจดี"},{"key":"field_2","value":"somchai@example.com"},{"key":"interests","value":"robots"},{"key":"interests","value":"ai"}]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", student)
	rr = serve(r, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var registered struct {
		Success      bool `json:"success"`
		Registration struct {
			ID       uint                   `json:"id"`
			FormData map[string]interface{} `json:"form_data"`
		} `json:"registration"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registered))
	assert.True(t, registered.Success)
	assert.Equal(t, "สมชาย ใจดี", registered.Registration.FormData["field_1"])
	assert.Equal(t, []interface{}{"robots", "ai"}, registered.Registration.FormData["interests"])

	// Attachments
	body, contentType = multipartBody(t, "files",
		upload{"transcript.pdf", "application/pdf", []byte("%PDF-1.4 fake")},
		upload{"photo.jpg", "image/jpeg", []byte("\xff\xd8\xff fake")},
	)
	req = httptest.NewRequest(http.MethodPut, fmt.Sprintf("/registrations/%d/files", registered.Registration.ID), body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cookie", student)
	rr = serve(r, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var attached struct {
		Registration RegistrationResponse `json:"registration"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &attached))
	require.Len(t, attached.Registration.Files, 2)
	assert.True(t, strings.HasSuffix(attached.Registration.Files[0], ".pdf"))
	assert.Equal(t, 3, f.files.Len())

	stored, err := f.store.GetRegistration(context.Background(), registered.Registration.ID)
	require.NoError(t, err)
	for _, key := range stored.Files {
		assert.True(t, strings.HasPrefix(key, fmt.Sprintf("registrations/%d/", stored.ID)), key)
	}
}
