package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SICout9010/K-Camp/internal/auth"
	"github.com/SICout9010/K-Camp/internal/i18n"
	"github.com/SICout9010/K-Camp/internal/lifecycle"
	"github.com/SICout9010/K-Camp/internal/models"
	"github.com/SICout9010/K-Camp/internal/registrar"
	"github.com/SICout9010/K-Camp/internal/roster"
	"github.com/SICout9010/K-Camp/internal/storage"
	"github.com/SICout9010/K-Camp/internal/store"
	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

const (
	maxAttachmentBytes = 10 << 20
	maxAttachments     = 5
)

type RegistrationHandler struct {
	base
	loc *time.Location
}

// NewRegistrationHandler builds the registration endpoints. loc is the zone
// roster dates are printed in.
func NewRegistrationHandler(s *store.Store, reg *registrar.Manager, authHandler *auth.AuthHandler, files storage.FileStore, loc *time.Location) *RegistrationHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &RegistrationHandler{
		base: base{store: s, registrar: reg, auth: authHandler, files: files, now: time.Now},
		loc:  loc,
	}
}

type RegisterPageInput struct {
	auth.AuthInput
	Slug string `path:"slug"`
}

type RegisterPageOutput struct {
	Body struct {
		Camp             CampResponse          `json:"camp"`
		Form             []models.FormField    `json:"form,omitempty"`
		Window           lifecycle.WindowState `json:"registration_status"`
		CanRegister      bool                  `json:"can_register"`
		Reason           string                `json:"reason,omitempty"`
		LoginRequired    bool                  `json:"login_required"`
		UserRegistration *RegistrationResponse `json:"user_registration,omitempty"`
	}
}

// HandleRegisterPage returns the form when the caller could register right
// now, otherwise the localized reason why not.
func (h *RegistrationHandler) HandleRegisterPage(ctx context.Context, input *RegisterPageInput) (*RegisterPageOutput, error) {
	user := h.auth.OptionalUser(ctx, input.AuthInput)
	camp, err := h.campBySlug(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	if !visible(*camp, user) {
		return nil, huma.Error404NotFound(i18n.T(ctx, i18n.KeyCampNotFound))
	}

	form, err := formFields(ctx, h.store, camp.ID)
	if err != nil {
		return nil, problem(ctx, "load form", err)
	}
	existing, checkErr := h.registrar.Precheck(ctx, *camp, user)
	var upstreamErr *registrar.UpstreamError
	if errors.As(checkErr, &upstreamErr) {
		return nil, problem(ctx, "check admission", checkErr)
	}

	out := &RegisterPageOutput{}
	out.Body.Camp = campResponse(*camp, h.files, h.now())
	out.Body.Window = out.Body.Camp.RegistrationStatus
	out.Body.LoginRequired = user == nil && !camp.AllowAnonymous
	if existing != nil {
		r := registrationResponse(*existing, h.files)
		out.Body.UserRegistration = &r
	}
	if checkErr != nil {
		var he huma.StatusError
		if errors.As(problem(ctx, "check admission", checkErr), &he) {
			out.Body.Reason = he.Error()
		}
		return out, nil
	}
	out.Body.CanRegister = true
	out.Body.Form = form
	return out, nil
}

type RegisterInput struct {
	auth.AuthInput
	Slug string `path:"slug"`
	Body struct {
		Fields []lifecycle.Field `json:"fields" doc:"Form answers in submission order; repeated keys hold multiple values"`
	}
}

type RegistrationOutput struct {
	Status int
	Body   struct {
		ActionResult
		Registration RegistrationResponse `json:"registration"`
	}
}

// missingRequired returns an error detail for every required non-file field
// that has no answer.
func missingRequired(ctx context.Context, form []models.FormField, fields []lifecycle.Field) []error {
	answered := map[string]bool{}
	for _, f := range fields {
		if strings.TrimSpace(f.Value) != "" {
			answered[f.Key] = true
		}
	}
	var details []error
	for _, f := range form {
		if f.Required && f.Type != models.FieldFile && !answered[f.Key] {
			details = append(details, &huma.ErrorDetail{
				Location: "body.fields",
				Message:  i18n.T(ctx, i18n.KeyFieldRequired, f.Label),
				Value:    f.Key,
			})
		}
	}
	return details
}

func (h *RegistrationHandler) HandleRegister(ctx context.Context, input *RegisterInput) (*RegistrationOutput, error) {
	user := h.auth.OptionalUser(ctx, input.AuthInput)
	camp, err := h.campBySlug(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	if !visible(*camp, user) {
		return nil, huma.Error404NotFound(i18n.T(ctx, i18n.KeyCampNotFound))
	}

	// A closed, full or duplicate registration is reported before any
	// problem with the answers.
	if _, err := h.registrar.Precheck(ctx, *camp, user); err != nil {
		return nil, problem(ctx, "register", err)
	}
	form, err := formFields(ctx, h.store, camp.ID)
	if err != nil {
		return nil, problem(ctx, "load form", err)
	}
	if details := missingRequired(ctx, form, input.Body.Fields); len(details) > 0 {
		return nil, huma.Error422UnprocessableEntity(i18n.T(ctx, i18n.KeyInvalidInput), details...)
	}

	reg, err := h.registrar.Admit(ctx, camp.ID, user, input.Body.Fields)
	if err != nil {
		return nil, problem(ctx, "register", err)
	}
	if user != nil {
		reg.User = user
		log.Printf("User %d registered for camp %s (registration %d)", user.ID, camp.Slug, reg.ID)
	} else {
		log.Printf("Anonymous registration %d for camp %s", reg.ID, camp.Slug)
	}

	out := &RegistrationOutput{Status: 201}
	out.Body.ActionResult = ok(ctx, i18n.KeyRegistered)
	out.Body.Registration = registrationResponse(*reg, h.files)
	return out, nil
}

type RegistrationIDInput struct {
	auth.AuthInput
	ID uint `path:"id"`
}

// ownedOrManaged loads a registration the caller either owns or manages.
func (h *RegistrationHandler) ownedOrManaged(ctx context.Context, in auth.AuthInput, id uint) (*models.User, *models.Registration, error) {
	user, err := h.auth.Authorize(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	reg, err := h.store.GetRegistration(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, huma.Error404NotFound(i18n.T(ctx, i18n.KeyRegNotFound))
		}
		return nil, nil, problem(ctx, "get registration", err)
	}
	if reg.UserID != nil && *reg.UserID == user.ID {
		return user, reg, nil
	}
	camp, err := h.store.GetCamp(ctx, reg.CampID)
	if err != nil {
		return nil, nil, problem(ctx, "get camp", err)
	}
	if !registrar.CanManage(*user, *camp) {
		return nil, nil, huma.Error403Forbidden(i18n.T(ctx, i18n.KeyForbidden))
	}
	return user, reg, nil
}

type FilesInput struct {
	auth.AuthInput
	ID      uint `path:"id"`
	RawBody huma.MultipartFormFiles[struct {
		Files []huma.FormFile `form:"files" required:"true"`
	}]
}

// HandleFiles attaches uploaded files to a registration.
func (h *RegistrationHandler) HandleFiles(ctx context.Context, input *FilesInput) (*RegistrationOutput, error) {
	_, reg, err := h.ownedOrManaged(ctx, input.AuthInput, input.ID)
	if err != nil {
		return nil, err
	}
	files := input.RawBody.Data().Files
	if len(files) == 0 || len(reg.Files)+len(files) > maxAttachments {
		return nil, huma.Error422UnprocessableEntity(i18n.T(ctx, i18n.KeyUploadFailed),
			&huma.ErrorDetail{Location: "body.files", Message: i18n.T(ctx, i18n.KeyFileCount, maxAttachments)})
	}
	for i, f := range files {
		if f.Size > maxAttachmentBytes {
			return nil, huma.Error422UnprocessableEntity(i18n.T(ctx, i18n.KeyUploadFailed),
				&huma.ErrorDetail{Location: fmt.Sprintf("body.files[%d]", i), Message: i18n.T(ctx, i18n.KeyFileTooLarge, maxAttachmentBytes>>20), Value: f.Filename})
		}
	}

	keys := append([]string{}, reg.Files...)
	var added []string
	for _, f := range files {
		key := storage.ObjectKey(fmt.Sprintf("registrations/%d", reg.ID), f.Filename)
		if err := h.files.Put(ctx, key, f.ContentType, f, f.Size); err != nil {
			log.Printf("Failed to store file for registration %d: %v", reg.ID, err)
			h.discard(ctx, added)
			return nil, huma.Error502BadGateway(i18n.T(ctx, i18n.KeyUploadFailed))
		}
		added = append(added, key)
	}
	keys = append(keys, added...)

	if err := h.store.UpdateRegistration(ctx, reg.ID, map[string]interface{}{
		"files": datatypes.JSONSlice[string](keys),
	}); err != nil {
		h.discard(ctx, added)
		return nil, problem(ctx, "save files", err)
	}
	reg.Files = keys

	out := &RegistrationOutput{Status: 200}
	out.Body.ActionResult = ok(ctx, i18n.KeyFilesUploaded)
	out.Body.Registration = registrationResponse(*reg, h.files)
	return out, nil
}

func (h *RegistrationHandler) discard(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := h.files.Delete(ctx, key); err != nil {
			log.Printf("Failed to delete orphaned file %s: %v", key, err)
		}
	}
}

type StatusInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		Status string  `json:"status" enum:"pending,reviewing,accepted,waitlist,rejected,cancelled"`
		Notes  *string `json:"notes,omitempty"`
	}
}

func (h *RegistrationHandler) HandleStatus(ctx context.Context, input *StatusInput) (*RegistrationOutput, error) {
	user, err := h.auth.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	to, err := lifecycle.ParseStatus(input.Body.Status)
	if err != nil {
		return nil, problem(ctx, "parse status", err)
	}
	reg, err := h.registrar.Transition(ctx, *user, input.ID, to, input.Body.Notes)
	if err != nil {
		if errors.Is(err, registrar.ErrNotFound) {
			return nil, huma.Error404NotFound(i18n.T(ctx, i18n.KeyRegNotFound))
		}
		return nil, problem(ctx, "update status", err)
	}

	out := &RegistrationOutput{Status: 200}
	out.Body.ActionResult = ok(ctx, i18n.KeyStatusUpdated)
	out.Body.Registration = registrationResponse(*reg, h.files)
	return out, nil
}

type PaymentInput struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		PaymentStatus string `json:"payment_status" enum:"unpaid,pending,paid,refunded"`
	}
}

func (h *RegistrationHandler) HandlePayment(ctx context.Context, input *PaymentInput) (*RegistrationOutput, error) {
	user, err := h.auth.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	to, err := lifecycle.ParsePaymentStatus(input.Body.PaymentStatus)
	if err != nil {
		return nil, problem(ctx, "parse payment status", err)
	}
	reg, err := h.registrar.UpdatePayment(ctx, *user, input.ID, to)
	if err != nil {
		if errors.Is(err, registrar.ErrNotFound) {
			return nil, huma.Error404NotFound(i18n.T(ctx, i18n.KeyRegNotFound))
		}
		return nil, problem(ctx, "update payment", err)
	}

	out := &RegistrationOutput{Status: 200}
	out.Body.ActionResult = ok(ctx, i18n.KeyPaymentUpdated)
	out.Body.Registration = registrationResponse(*reg, h.files)
	return out, nil
}

type HistoryOutput struct {
	Body []models.RegistrationHistory
}

func (h *RegistrationHandler) HandleHistory(ctx context.Context, input *RegistrationIDInput) (*HistoryOutput, error) {
	_, reg, err := h.ownedOrManaged(ctx, input.AuthInput, input.ID)
	if err != nil {
		return nil, err
	}
	entries, err := h.store.ListHistory(ctx, reg.ID)
	if err != nil {
		return nil, problem(ctx, "list history", err)
	}
	if entries == nil {
		entries = []models.RegistrationHistory{}
	}
	return &HistoryOutput{Body: entries}, nil
}

type CampSlugInput struct {
	auth.AuthInput
	Slug string `path:"slug"`
}

type DashboardStats struct {
	Total     int                               `json:"total"`
	ByStatus  map[models.RegistrationStatus]int `json:"by_status"`
	ByPayment map[models.PaymentStatus]int      `json:"by_payment"`
	// FillRate is current participants over capacity, in percent.
	FillRate       float64 `json:"fill_rate"`
	AcceptanceRate float64 `json:"acceptance_rate"`
	// Answers counts the chosen options of each select, radio and checkbox
	// field over registrations that are not cancelled.
	Answers map[string]map[string]int `json:"answers,omitempty"`
}

type DashboardOutput struct {
	Body struct {
		Camp          CampResponse           `json:"camp"`
		Form          []models.FormField     `json:"form"`
		Registrations []RegistrationResponse `json:"registrations"`
		Stats         DashboardStats         `json:"stats"`
		Faculties     []FacultyResponse      `json:"faculties"`
		Counted       []string               `json:"counted_statuses"`
	}
}

// Stats tallies registrations by review and payment status.
func Stats(camp models.Camp, form []models.FormField, regs []models.Registration) DashboardStats {
	s := DashboardStats{
		Total:     len(regs),
		ByStatus:  make(map[models.RegistrationStatus]int, len(models.RegistrationStatuses)),
		ByPayment: make(map[models.PaymentStatus]int, len(models.PaymentStatuses)),
	}
	for _, st := range models.RegistrationStatuses {
		s.ByStatus[st] = 0
	}
	for _, p := range models.PaymentStatuses {
		s.ByPayment[p] = 0
	}
	for _, r := range regs {
		s.ByStatus[r.Status]++
		s.ByPayment[r.PaymentStatus]++
	}
	if camp.MaxParticipants > 0 {
		s.FillRate = percent(camp.CurrentParticipants, camp.MaxParticipants)
	}
	if decided := s.Total - s.ByStatus[models.StatusCancelled]; decided > 0 {
		s.AcceptanceRate = percent(s.ByStatus[models.StatusAccepted], decided)
	}
	s.Answers = answerCounts(form, regs)
	return s
}

func answerCounts(form []models.FormField, regs []models.Registration) map[string]map[string]int {
	var out map[string]map[string]int
	for _, f := range form {
		switch f.Type {
		case models.FieldSelect, models.FieldRadio, models.FieldCheckbox:
		default:
			continue
		}
		counts := make(map[string]int, len(f.Options))
		for _, opt := range f.Options {
			counts[opt] = 0
		}
		for _, r := range regs {
			if r.Status == models.StatusCancelled {
				continue
			}
			for _, v := range r.FormData.Values(f.Key) {
				counts[v]++
			}
		}
		if out == nil {
			out = map[string]map[string]int{}
		}
		out[f.Key] = counts
	}
	return out
}

func percent(n, of int) float64 {
	return float64(int(float64(n)/float64(of)*1000+0.5)) / 10
}

func (h *RegistrationHandler) HandleDashboard(ctx context.Context, input *CampSlugInput) (*DashboardOutput, error) {
	_, camp, err := h.managedCamp(ctx, input.AuthInput, input.Slug)
	if err != nil {
		return nil, err
	}

	var (
		regs      []models.Registration
		form      []models.FormField
		faculties []models.Faculty
	)
	g, gctx := errgroup.WithContext(ctx)
	h.loadRelations(gctx, g, camp)
	g.Go(func() error {
		var err error
		regs, err = h.store.ListRegistrations(gctx, store.RegistrationFilter{CampID: camp.ID})
		return err
	})
	g.Go(func() error {
		var err error
		form, err = formFields(gctx, h.store, camp.ID)
		return err
	})
	g.Go(func() error {
		var err error
		faculties, err = h.store.ListFaculties(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, problem(ctx, "load dashboard", err)
	}

	out := &DashboardOutput{}
	out.Body.Camp = campResponse(*camp, h.files, h.now())
	out.Body.Form = form
	out.Body.Registrations = make([]RegistrationResponse, 0, len(regs))
	for _, r := range regs {
		out.Body.Registrations = append(out.Body.Registrations, registrationResponse(r, h.files))
	}
	out.Body.Stats = Stats(*camp, form, regs)
	out.Body.Faculties = make([]FacultyResponse, 0, len(faculties))
	for i := range faculties {
		out.Body.Faculties = append(out.Body.Faculties, *facultyResponse(&faculties[i]))
	}
	for _, st := range h.registrar.Counted().Statuses() {
		out.Body.Counted = append(out.Body.Counted, string(st))
	}
	return out, nil
}

type ExportOutput struct {
	Body roster.Export
}

func (h *RegistrationHandler) HandleExport(ctx context.Context, input *CampSlugInput) (*ExportOutput, error) {
	user, camp, err := h.managedCamp(ctx, input.AuthInput, input.Slug)
	if err != nil {
		return nil, err
	}
	regs, err := h.store.ListRegistrations(ctx, store.RegistrationFilter{CampID: camp.ID})
	if err != nil {
		return nil, problem(ctx, "list registrations", err)
	}
	log.Printf("User %d exported %d registrations of camp %s", user.ID, len(regs), camp.Slug)
	return &ExportOutput{Body: roster.Format(camp.Slug, regs, h.now(), h.loc)}, nil
}

type RecountOutput struct {
	Body struct {
		ActionResult
		CurrentParticipants int `json:"current_participants"`
	}
}

func (h *RegistrationHandler) HandleRecount(ctx context.Context, input *CampSlugInput) (*RecountOutput, error) {
	user, camp, err := h.managedCamp(ctx, input.AuthInput, input.Slug)
	if err != nil {
		return nil, err
	}
	n, err := h.registrar.Recount(ctx, *user, camp.ID)
	if err != nil {
		return nil, problem(ctx, "recount", err)
	}
	out := &RecountOutput{}
	out.Body.ActionResult = ok(ctx, i18n.KeyRecounted, n)
	out.Body.CurrentParticipants = n
	return out, nil
}

type MyRegistration struct {
	RegistrationResponse
	Camp CampResponse `json:"camp"`
}

type MyRegistrationsOutput struct {
	Body []MyRegistration
}

func (h *RegistrationHandler) HandleMyRegistrations(ctx context.Context, input *auth.AuthInput) (*MyRegistrationsOutput, error) {
	user, err := h.auth.Authorize(ctx, *input)
	if err != nil {
		return nil, err
	}
	regs, err := h.store.UserRegistrations(ctx, user.ID)
	if err != nil {
		return nil, problem(ctx, "list user registrations", err)
	}
	now := h.now()
	out := &MyRegistrationsOutput{Body: make([]MyRegistration, 0, len(regs))}
	for _, r := range regs {
		out.Body = append(out.Body, MyRegistration{
			RegistrationResponse: registrationResponse(r, h.files),
			Camp:                 campResponse(r.Camp, h.files, now),
		})
	}
	return out, nil
}
