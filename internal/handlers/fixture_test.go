package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/SICout9010/K-Camp/internal/auth"
	"github.com/SICout9010/K-Camp/internal/config"
	"github.com/SICout9010/K-Camp/internal/lifecycle"
	"github.com/SICout9010/K-Camp/internal/models"
	"github.com/SICout9010/K-Camp/internal/registrar"
	"github.com/SICout9010/K-Camp/internal/storage"
	"github.com/SICout9010/K-Camp/internal/store"
	"github.com/SICout9010/K-Camp/internal/testutil"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"
)

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	t       *testing.T
	db      *gorm.DB
	store   *store.Store
	files   *storage.MemoryStore
	auth    *auth.AuthHandler
	manager *registrar.Manager
	camps   *CampHandler
	regs    *RegistrationHandler
	keys    *APIKeyHandler

	organizer models.User
	student   models.User
	admin     models.User
	// camp is published, open at now and has two seats.
	camp models.Camp
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	s := store.New(db)
	files := storage.NewMemoryStore("http://api.test")
	cfg := &config.Config{JWTSecret: "test-secret", PublicURL: "http://api.test", FrontendURL: "http://app.test"}
	authHandler := auth.NewAuthHandler(cfg, s, files)
	clock := func() time.Time { return now }
	manager := registrar.New(s, nil, registrar.WithClock(clock))

	f := &fixture{
		t:       t,
		db:      db,
		store:   s,
		files:   files,
		auth:    authHandler,
		manager: manager,
		camps:   NewCampHandler(s, manager, authHandler, files),
		regs:    NewRegistrationHandler(s, manager, authHandler, files, time.FixedZone("ICT", 7*60*60)),
		keys:    NewAPIKeyHandler(s, authHandler),
	}
	f.camps.now = clock
	f.regs.now = clock

	f.organizer = testutil.CreateUser(t, db, "organizer", models.RoleOrganizer)
	f.student = testutil.CreateUser(t, db, "student", models.RoleStudent)
	f.admin = testutil.CreateUser(t, db, "admin", models.RoleAdmin)
	f.camp = testutil.CreateOpenCamp(t, db, "robotics", f.organizer, now, 2)
	return f
}

// as returns the credentials of a signed in user.
func (f *fixture) as(u models.User) auth.AuthInput {
	f.t.Helper()
	token, err := f.auth.GenerateToken(u.ID)
	if err != nil {
		f.t.Fatalf("GenerateToken: %v", err)
	}
	return auth.AuthInput{Cookie: auth.CookieName + "=" + token}
}

func answers(name, email string) []lifecycle.Field {
	return []lifecycle.Field{
		{Key: "field_1", Value: name},
		{Key: "field_2", Value: email},
	}
}

// register submits the default form for u, or anonymously when u is nil.
func (f *fixture) register(slug string, u *models.User) (*RegistrationOutput, error) {
	in := &RegisterInput{Slug: slug}
	if u != nil {
		in.AuthInput = f.as(*u)
		in.Body.Fields = answers(u.Name, u.Email)
	} else {
		in.Body.Fields = answers("Anonymous Applicant", "anon@example.com")
	}
	return f.regs.HandleRegister(context.Background(), in)
}

func (f *fixture) mustRegister(u models.User) RegistrationResponse {
	f.t.Helper()
	out, err := f.register(f.camp.Slug, &u)
	if err != nil {
		f.t.Fatalf("register %s: %v", u.Name, err)
	}
	return out.Body.Registration
}

func (f *fixture) reloadCamp(id uint) models.Camp {
	f.t.Helper()
	var camp models.Camp
	if err := f.db.First(&camp, id).Error; err != nil {
		f.t.Fatalf("reload camp %d: %v", id, err)
	}
	return camp
}

func (f *fixture) createFaculty(code string) models.Faculty {
	f.t.Helper()
	fac := models.Faculty{Code: code, NameTH: "คณะ " + code, NameEN: code}
	if err := f.db.Create(&fac).Error; err != nil {
		f.t.Fatalf("create faculty: %v", err)
	}
	return fac
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d, got nil", status)
	}
	se, ok := err.(huma.StatusError)
	if !ok {
		t.Fatalf("expected huma status error, got %T: %v", err, err)
	}
	if se.GetStatus() != status {
		t.Errorf("expected status %d, got %d (%v)", status, se.GetStatus(), err)
	}
}
