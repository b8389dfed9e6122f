package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/SICout9010/K-Camp/internal/auth"
	"github.com/SICout9010/K-Camp/internal/i18n"
	"github.com/SICout9010/K-Camp/internal/models"
	"github.com/SICout9010/K-Camp/internal/registrar"
	"github.com/SICout9010/K-Camp/internal/storage"
	"github.com/SICout9010/K-Camp/internal/store"
	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/sync/errgroup"
)

// base holds what every camp facing handler needs.
type base struct {
	store     *store.Store
	registrar *registrar.Manager
	auth      *auth.AuthHandler
	files     storage.FileStore
	now       func() time.Time
}

func (b *base) campBySlug(ctx context.Context, slug string) (*models.Camp, error) {
	camp, err := b.store.CampBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound(i18n.T(ctx, i18n.KeyCampNotFound))
		}
		return nil, problem(ctx, "get camp", err)
	}
	return camp, nil
}

// managedCamp authorizes the caller as organizer of the camp or admin.
func (b *base) managedCamp(ctx context.Context, in auth.AuthInput, slug string) (*models.User, *models.Camp, error) {
	user, err := b.auth.Authorize(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	camp, err := b.campBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if !registrar.CanManage(*user, *camp) {
		return nil, nil, huma.Error403Forbidden(i18n.T(ctx, i18n.KeyForbidden))
	}
	return user, camp, nil
}

// visible reports whether user may see camp. Drafts are only shown to the
// people managing them.
func visible(camp models.Camp, user *models.User) bool {
	if camp.Status == models.CampStatusPublished || camp.Status == models.CampStatusCancelled ||
		camp.Status == models.CampStatusArchived {
		return true
	}
	return user != nil && registrar.CanManage(*user, camp)
}

// loadRelations queues the organizer and faculty lookups of camp on g. A
// missing organizer or faculty is left empty.
func (b *base) loadRelations(ctx context.Context, g *errgroup.Group, camp *models.Camp) {
	g.Go(func() error {
		u, err := b.store.GetUser(ctx, camp.OrganizerID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err == nil {
			camp.Organizer = *u
		}
		return err
	})
	g.Go(func() error {
		f, err := b.store.GetFaculty(ctx, camp.FacultyID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err == nil {
			camp.Faculty = *f
		}
		return err
	})
}
