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
	"github.com/SICout9010/K-Camp/internal/storage"
	"github.com/SICout9010/K-Camp/internal/store"
	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

const maxBannerBytes = 5 << 20

type CampHandler struct {
	base
}

func NewCampHandler(s *store.Store, reg *registrar.Manager, authHandler *auth.AuthHandler, files storage.FileStore) *CampHandler {
	return &CampHandler{base{store: s, registrar: reg, auth: authHandler, files: files, now: time.Now}}
}

type ListCampsInput struct {
	Page    int `query:"page" default:"1" minimum:"1"`
	PerPage int `query:"perPage" default:"6" minimum:"1" maximum:"50"`
}

type ListCampsOutput struct {
	Body struct {
		Items      []CampResponse `json:"items"`
		Page       int            `json:"page"`
		PerPage    int            `json:"perPage"`
		TotalItems int64          `json:"totalItems"`
		TotalPages int            `json:"totalPages"`
	}
}

// HandleList lists published public camps, featured first then newest.
func (h *CampHandler) HandleList(ctx context.Context, input *ListCampsInput) (*ListCampsOutput, error) {
	page := store.Page{Page: input.Page, PerPage: input.PerPage}
	if page.PerPage == 0 {
		page.PerPage = 6
	}
	camps, total, err := h.store.ListCamps(ctx, store.CampFilter{
		Status:     models.CampStatusPublished,
		Visibility: "public",
	}, page)
	if err != nil {
		return nil, problem(ctx, "list camps", err)
	}

	now := h.now()
	out := &ListCampsOutput{}
	out.Body.Items = make([]CampResponse, 0, len(camps))
	for _, c := range camps {
		out.Body.Items = append(out.Body.Items, campResponse(c, h.files, now))
	}
	out.Body.Page = max(page.Page, 1)
	out.Body.PerPage = page.PerPage
	out.Body.TotalItems = total
	out.Body.TotalPages = int((total + int64(page.PerPage) - 1) / int64(page.PerPage))
	return out, nil
}

type GetCampInput struct {
	auth.AuthInput
	Slug string `path:"slug"`
}

type CampDetail struct {
	Camp              CampResponse          `json:"camp"`
	Form              []models.FormField    `json:"form"`
	RegistrationCount int64                 `json:"registration_count"`
	HasRegistered     bool                  `json:"has_registered"`
	UserRegistration  *RegistrationResponse `json:"user_registration,omitempty"`
	IsOrganizer       bool                  `json:"is_organizer"`
	Window            lifecycle.WindowState `json:"registration_status"`
}

type GetCampOutput struct {
	Body CampDetail
}

// HandleGet returns the detail bundle of a camp and counts the view.
func (h *CampHandler) HandleGet(ctx context.Context, input *GetCampInput) (*GetCampOutput, error) {
	user := h.auth.OptionalUser(ctx, input.AuthInput)
	camp, err := h.campBySlug(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	if !visible(*camp, user) {
		return nil, huma.Error404NotFound(i18n.T(ctx, i18n.KeyCampNotFound))
	}

	var (
		form     []models.FormField
		count    int64
		existing *models.Registration
	)
	g, gctx := errgroup.WithContext(ctx)
	h.loadRelations(gctx, g, camp)
	g.Go(func() error {
		var err error
		form, err = formFields(gctx, h.store, camp.ID)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = h.store.CountRegistrations(gctx, store.RegistrationFilter{CampID: camp.ID, ExcludeCancelled: true})
		return err
	})
	if user != nil {
		g.Go(func() error {
			r, err := h.store.FirstRegistration(gctx, store.RegistrationFilter{CampID: camp.ID, UserID: user.ID, ExcludeCancelled: true})
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			existing = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, problem(ctx, "load camp detail", err)
	}

	if err := h.store.IncrementViews(ctx, camp.ID); err != nil {
		log.Printf("Failed to count view of camp %d: %v", camp.ID, err)
	}

	view := campResponse(*camp, h.files, h.now())
	out := &GetCampOutput{Body: CampDetail{
		Camp:              view,
		Form:              form,
		RegistrationCount: count,
		HasRegistered:     existing != nil,
		IsOrganizer:       user != nil && registrar.CanManage(*user, *camp),
		Window:            view.RegistrationStatus,
	}}
	if existing != nil {
		r := registrationResponse(*existing, h.files)
		out.Body.UserRegistration = &r
	}
	return out, nil
}

// formFields returns the camp's form, or the default fields when it has none.
func formFields(ctx context.Context, s *store.Store, campID uint) ([]models.FormField, error) {
	form, err := s.FormForCamp(ctx, campID)
	if errors.Is(err, store.ErrNotFound) {
		return models.DefaultFormFields(), nil
	}
	if err != nil {
		return nil, err
	}
	return form.Fields, nil
}

type CampBody struct {
	Title             string    `json:"title" minLength:"1" maxLength:"200"`
	Slug              string    `json:"slug,omitempty" maxLength:"120"`
	ShortDescription  string    `json:"short_description,omitempty"`
	Description       string    `json:"description,omitempty"`
	Category          string    `json:"category,omitempty"`
	TargetAudience    []string  `json:"target_audience,omitempty"`
	Tags              []string  `json:"tags,omitempty"`
	Location          string    `json:"location,omitempty"`
	LocationDetail    string    `json:"location_detail,omitempty"`
	Department        string    `json:"department,omitempty"`
	Requirements      string    `json:"requirements,omitempty"`
	Benefits          string    `json:"benefits,omitempty"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	RegistrationStart time.Time `json:"registration_start"`
	RegistrationEnd   time.Time `json:"registration_end"`
	MinParticipants   int       `json:"min_participants,omitempty" minimum:"0"`
	MaxParticipants   int       `json:"max_participants" minimum:"1"`
	RegistrationFee   float64   `json:"registration_fee,omitempty" minimum:"0"`
	AllowAnonymous    bool      `json:"allow_anonymous,omitempty"`
	ContactEmail      string    `json:"contact_email,omitempty"`
	ContactPhone      string    `json:"contact_phone,omitempty"`
	ContactLine       string    `json:"contact_line,omitempty"`
	Website           string    `json:"website,omitempty"`
	Facebook          string    `json:"facebook,omitempty"`
	Instagram         string    `json:"instagram,omitempty"`
	FacultyID         uint      `json:"faculty_id"`
	Visibility        string    `json:"visibility,omitempty" enum:"public,private"`
	Action            string    `json:"action,omitempty" enum:"draft,publish" doc:"draft (default) or publish"`
}

type CreateCampInput struct {
	auth.AuthInput
	Body CampBody
}

type CampActionOutput struct {
	Status int
	Body   struct {
		ActionResult
		Camp CampResponse `json:"camp"`
	}
}

func validateSchedule(ctx context.Context, start, end, regStart, regEnd time.Time) []error {
	var details []error
	if end.Before(start) {
		details = append(details, &huma.ErrorDetail{Location: "body.end_date", Message: i18n.T(ctx, i18n.KeyEndBeforeStart), Value: end})
	}
	if regEnd.Before(regStart) {
		details = append(details, &huma.ErrorDetail{Location: "body.registration_end", Message: i18n.T(ctx, i18n.KeyRegEndBeforeReg), Value: regEnd})
	}
	return details
}

func (h *CampHandler) HandleCreate(ctx context.Context, input *CreateCampInput) (*CampActionOutput, error) {
	user, err := h.auth.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if !user.CanOrganize() {
		return nil, huma.Error403Forbidden(i18n.T(ctx, i18n.KeyForbidden))
	}

	b := input.Body
	if details := validateSchedule(ctx, b.StartDate, b.EndDate, b.RegistrationStart, b.RegistrationEnd); len(details) > 0 {
		return nil, huma.Error422UnprocessableEntity(i18n.T(ctx, i18n.KeyInvalidInput), details...)
	}
	if _, err := h.store.GetFaculty(ctx, b.FacultyID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error422UnprocessableEntity(i18n.T(ctx, i18n.KeyInvalidInput),
				&huma.ErrorDetail{Location: "body.faculty_id", Message: i18n.T(ctx, i18n.KeyUnknownFaculty), Value: b.FacultyID})
		}
		return nil, problem(ctx, "get faculty", err)
	}

	want := Slugify(b.Slug)
	if want == "" {
		want = Slugify(b.Title)
	}
	slug, err := uniqueSlug(ctx, h.store, want)
	if err != nil {
		return nil, problem(ctx, "choose slug", err)
	}

	status := models.CampStatusDraft
	message := i18n.KeyDraftSaved
	if b.Action == "publish" {
		status = models.CampStatusPublished
		message = i18n.KeyCampCreated
	}
	visibility := b.Visibility
	if visibility == "" {
		visibility = "public"
	}

	camp := models.Camp{
		Title:             strings.TrimSpace(b.Title),
		Slug:              slug,
		ShortDescription:  b.ShortDescription,
		Description:       b.Description,
		Category:          b.Category,
		TargetAudience:    datatypes.JSONSlice[string](b.TargetAudience),
		Tags:              datatypes.JSONSlice[string](b.Tags),
		Location:          b.Location,
		LocationDetail:    b.LocationDetail,
		Department:        b.Department,
		Requirements:      b.Requirements,
		Benefits:          b.Benefits,
		StartDate:         b.StartDate,
		EndDate:           b.EndDate,
		RegistrationStart: b.RegistrationStart,
		RegistrationEnd:   b.RegistrationEnd,
		MinParticipants:   b.MinParticipants,
		MaxParticipants:   b.MaxParticipants,
		RegistrationFee:   b.RegistrationFee,
		AllowAnonymous:    b.AllowAnonymous,
		ContactEmail:      b.ContactEmail,
		ContactPhone:      b.ContactPhone,
		ContactLine:       b.ContactLine,
		Website:           b.Website,
		Facebook:          b.Facebook,
		Instagram:         b.Instagram,
		OrganizerID:       user.ID,
		FacultyID:         b.FacultyID,
		Status:            status,
		Visibility:        visibility,
	}
	if err := h.store.CreateCamp(ctx, &camp); err != nil {
		return nil, problem(ctx, "create camp", err)
	}
	log.Printf("Camp %s created by user %d (%s)", camp.Slug, user.ID, camp.Status)

	out := &CampActionOutput{Status: 201}
	out.Body.ActionResult = ok(ctx, message)
	out.Body.Camp = campResponse(camp, h.files, h.now())
	return out, nil
}

type UpdateCampInput struct {
	auth.AuthInput
	Slug string `path:"slug"`
	Body struct {
		Title             *string            `json:"title,omitempty" minLength:"1" maxLength:"200"`
		ShortDescription  *string            `json:"short_description,omitempty"`
		Description       *string            `json:"description,omitempty"`
		Category          *string            `json:"category,omitempty"`
		TargetAudience    []string           `json:"target_audience,omitempty"`
		Tags              []string           `json:"tags,omitempty"`
		Location          *string            `json:"location,omitempty"`
		LocationDetail    *string            `json:"location_detail,omitempty"`
		Department        *string            `json:"department,omitempty"`
		Requirements      *string            `json:"requirements,omitempty"`
		Benefits          *string            `json:"benefits,omitempty"`
		StartDate         *time.Time         `json:"start_date,omitempty"`
		EndDate           *time.Time         `json:"end_date,omitempty"`
		RegistrationStart *time.Time         `json:"registration_start,omitempty"`
		RegistrationEnd   *time.Time         `json:"registration_end,omitempty"`
		MinParticipants   *int               `json:"min_participants,omitempty" minimum:"0"`
		MaxParticipants   *int               `json:"max_participants,omitempty" minimum:"1"`
		RegistrationFee   *float64           `json:"registration_fee,omitempty" minimum:"0"`
		AllowAnonymous    *bool              `json:"allow_anonymous,omitempty"`
		ContactEmail      *string            `json:"contact_email,omitempty"`
		ContactPhone      *string            `json:"contact_phone,omitempty"`
		ContactLine       *string            `json:"contact_line,omitempty"`
		Website           *string            `json:"website,omitempty"`
		Facebook          *string            `json:"facebook,omitempty"`
		Instagram         *string            `json:"instagram,omitempty"`
		FacultyID         *uint              `json:"faculty_id,omitempty"`
		Status            *models.CampStatus `json:"status,omitempty" enum:"draft,published,cancelled,archived"`
		Visibility        *string            `json:"visibility,omitempty" enum:"public,private"`
		Featured          *bool              `json:"featured,omitempty" doc:"Admins only"`
	}
}

func (h *CampHandler) HandleUpdate(ctx context.Context, input *UpdateCampInput) (*CampActionOutput, error) {
	user, camp, err := h.managedCamp(ctx, input.AuthInput, input.Slug)
	if err != nil {
		return nil, err
	}

	b := input.Body
	updates := map[string]interface{}{}
	setString := func(column string, v *string) {
		if v != nil {
			updates[column] = *v
		}
	}
	setString("title", b.Title)
	setString("short_description", b.ShortDescription)
	setString("description", b.Description)
	setString("category", b.Category)
	setString("location", b.Location)
	setString("location_detail", b.LocationDetail)
	setString("department", b.Department)
	setString("requirements", b.Requirements)
	setString("benefits", b.Benefits)
	setString("contact_email", b.ContactEmail)
	setString("contact_phone", b.ContactPhone)
	setString("contact_line", b.ContactLine)
	setString("website", b.Website)
	setString("facebook", b.Facebook)
	setString("instagram", b.Instagram)
	setString("visibility", b.Visibility)
	if b.TargetAudience != nil {
		updates["target_audience"] = datatypes.JSONSlice[string](b.TargetAudience)
	}
	if b.Tags != nil {
		updates["tags"] = datatypes.JSONSlice[string](b.Tags)
	}

	start, end, regStart, regEnd := camp.StartDate, camp.EndDate, camp.RegistrationStart, camp.RegistrationEnd
	if b.StartDate != nil {
		start = *b.StartDate
		updates["start_date"] = start
	}
	if b.EndDate != nil {
		end = *b.EndDate
		updates["end_date"] = end
	}
	if b.RegistrationStart != nil {
		regStart = *b.RegistrationStart
		updates["registration_start"] = regStart
	}
	if b.RegistrationEnd != nil {
		regEnd = *b.RegistrationEnd
		updates["registration_end"] = regEnd
	}
	if details := validateSchedule(ctx, start, end, regStart, regEnd); len(details) > 0 {
		return nil, huma.Error422UnprocessableEntity(i18n.T(ctx, i18n.KeyInvalidInput), details...)
	}

	if b.MinParticipants != nil {
		updates["min_participants"] = *b.MinParticipants
	}
	if b.MaxParticipants != nil {
		updates["max_participants"] = *b.MaxParticipants
	}
	if b.RegistrationFee != nil {
		updates["registration_fee"] = *b.RegistrationFee
	}
	if b.AllowAnonymous != nil {
		updates["allow_anonymous"] = *b.AllowAnonymous
	}
	if b.FacultyID != nil {
		if _, err := h.store.GetFaculty(ctx, *b.FacultyID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, huma.Error422UnprocessableEntity(i18n.T(ctx, i18n.KeyInvalidInput),
					&huma.ErrorDetail{Location: "body.faculty_id", Message: i18n.T(ctx, i18n.KeyUnknownFaculty), Value: *b.FacultyID})
			}
			return nil, problem(ctx, "get faculty", err)
		}
		updates["faculty_id"] = *b.FacultyID
	}
	if b.Status != nil {
		updates["status"] = *b.Status
	}
	if b.Featured != nil {
		if !user.IsAdmin() {
			return nil, huma.Error403Forbidden(i18n.T(ctx, i18n.KeyForbidden))
		}
		updates["featured"] = *b.Featured
	}

	if len(updates) > 0 {
		if err := h.store.UpdateCamp(ctx, camp.ID, updates); err != nil {
			return nil, problem(ctx, "update camp", err)
		}
	}
	updated, err := h.store.GetCamp(ctx, camp.ID)
	if err != nil {
		return nil, problem(ctx, "reload camp", err)
	}

	out := &CampActionOutput{Status: 200}
	out.Body.ActionResult = ok(ctx, i18n.KeyCampUpdated)
	out.Body.Camp = campResponse(*updated, h.files, h.now())
	return out, nil
}

type DeleteCampInput struct {
	auth.AuthInput
	Slug string `path:"slug"`
}

type ActionOutput struct {
	Body ActionResult
}

func (h *CampHandler) HandleDelete(ctx context.Context, input *DeleteCampInput) (*ActionOutput, error) {
	user, err := h.auth.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	camp, err := h.campBySlug(ctx, input.Slug)
	if err != nil {
		return nil, err
	}

	deleted, err := h.registrar.DeleteCamp(ctx, *user, camp.ID)
	if err != nil {
		return nil, problem(ctx, "delete camp", err)
	}
	if deleted.Banner != "" && h.files != nil {
		if err := h.files.Delete(ctx, deleted.Banner); err != nil {
			log.Printf("Failed to delete banner of camp %d: %v", deleted.ID, err)
		}
	}
	log.Printf("Camp %s deleted by user %d", deleted.Slug, user.ID)
	return &ActionOutput{Body: ok(ctx, i18n.KeyCampDeleted)}, nil
}

type BannerInput struct {
	auth.AuthInput
	Slug    string `path:"slug"`
	RawBody huma.MultipartFormFiles[struct {
		File huma.FormFile `form:"file" contentType:"image/png,image/jpeg,image/webp,image/gif" required:"true"`
	}]
}

func (h *CampHandler) HandleBanner(ctx context.Context, input *BannerInput) (*CampActionOutput, error) {
	_, camp, err := h.managedCamp(ctx, input.AuthInput, input.Slug)
	if err != nil {
		return nil, err
	}
	file := input.RawBody.Data().File
	if !file.IsSet || file.Size > maxBannerBytes {
		return nil, huma.Error422UnprocessableEntity(i18n.T(ctx, i18n.KeyUploadFailed),
			&huma.ErrorDetail{Location: "body.file", Message: i18n.T(ctx, i18n.KeyBannerInvalid, maxBannerBytes>>20)})
	}

	key := storage.ObjectKey(fmt.Sprintf("camps/%d/banner", camp.ID), file.Filename)
	if err := h.files.Put(ctx, key, file.ContentType, file, file.Size); err != nil {
		log.Printf("Failed to store banner for camp %d: %v", camp.ID, err)
		return nil, huma.Error502BadGateway(i18n.T(ctx, i18n.KeyUploadFailed))
	}
	if err := h.store.UpdateCamp(ctx, camp.ID, map[string]interface{}{"banner": key}); err != nil {
		return nil, problem(ctx, "save banner", err)
	}
	if camp.Banner != "" {
		if err := h.files.Delete(ctx, camp.Banner); err != nil {
			log.Printf("Failed to delete old banner of camp %d: %v", camp.ID, err)
		}
	}
	camp.Banner = key

	out := &CampActionOutput{Status: 200}
	out.Body.ActionResult = ok(ctx, i18n.KeyCampUpdated)
	out.Body.Camp = campResponse(*camp, h.files, h.now())
	return out, nil
}

type SetFormInput struct {
	auth.AuthInput
	Slug string `path:"slug"`
	Body struct {
		Fields []models.FormField `json:"fields" minItems:"1"`
	}
}

type FormOutput struct {
	Body struct {
		ActionResult
		Fields []models.FormField `json:"fields"`
	}
}

func (h *CampHandler) HandleSetForm(ctx context.Context, input *SetFormInput) (*FormOutput, error) {
	_, camp, err := h.managedCamp(ctx, input.AuthInput, input.Slug)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var details []error
	for i, f := range input.Body.Fields {
		loc := fmt.Sprintf("body.fields[%d].key", i)
		switch {
		case strings.TrimSpace(f.Key) == "":
			details = append(details, &huma.ErrorDetail{Location: loc, Message: i18n.T(ctx, i18n.KeyFormKeyRequired)})
		case seen[f.Key]:
			details = append(details, &huma.ErrorDetail{Location: loc, Message: i18n.T(ctx, i18n.KeyFormKeyDup, f.Key), Value: f.Key})
		}
		seen[f.Key] = true
	}
	if len(details) > 0 {
		return nil, huma.Error422UnprocessableEntity(i18n.T(ctx, i18n.KeyInvalidInput), details...)
	}

	form, err := h.store.SaveForm(ctx, camp.ID, input.Body.Fields)
	if err != nil {
		return nil, problem(ctx, "save form", err)
	}
	out := &FormOutput{}
	out.Body.ActionResult = ok(ctx, i18n.KeyFormSaved)
	out.Body.Fields = form.Fields
	return out, nil
}

type ListFacultiesOutput struct {
	Body []FacultyResponse
}

func (h *CampHandler) HandleListFaculties(ctx context.Context, input *struct{}) (*ListFacultiesOutput, error) {
	faculties, err := h.store.ListFaculties(ctx)
	if err != nil {
		return nil, problem(ctx, "list faculties", err)
	}
	out := &ListFacultiesOutput{Body: make([]FacultyResponse, 0, len(faculties))}
	for i := range faculties {
		out.Body = append(out.Body, *facultyResponse(&faculties[i]))
	}
	return out, nil
}

type CreateFacultyInput struct {
	auth.AuthInput
	Body struct {
		Code   string `json:"code" minLength:"1"`
		NameTH string `json:"name_th" minLength:"1"`
		NameEN string `json:"name_en,omitempty"`
	}
}

type FacultyOutput struct {
	Status int
	Body   FacultyResponse
}

func (h *CampHandler) HandleCreateFaculty(ctx context.Context, input *CreateFacultyInput) (*FacultyOutput, error) {
	user, err := h.auth.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, huma.Error403Forbidden(i18n.T(ctx, i18n.KeyForbidden))
	}
	f := models.Faculty{Code: input.Body.Code, NameTH: input.Body.NameTH, NameEN: input.Body.NameEN}
	if err := h.store.CreateFaculty(ctx, &f); err != nil {
		return nil, problem(ctx, "create faculty", err)
	}
	return &FacultyOutput{Status: 201, Body: *facultyResponse(&f)}, nil
}
