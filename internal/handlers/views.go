package handlers

import (
	"time"

	"github.com/SICout9010/K-Camp/internal/lifecycle"
	"github.com/SICout9010/K-Camp/internal/models"
	"github.com/SICout9010/K-Camp/internal/storage"
)

type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type FacultyResponse struct {
	ID     uint   `json:"id"`
	Code   string `json:"code"`
	NameTH string `json:"name_th"`
	NameEN string `json:"name_en"`
}

type CampResponse struct {
	ID                  uint              `json:"id"`
	Slug                string            `json:"slug"`
	Title               string            `json:"title"`
	ShortDescription    string            `json:"short_description"`
	Description         string            `json:"description"`
	Category            string            `json:"category"`
	TargetAudience      []string          `json:"target_audience"`
	Tags                []string          `json:"tags"`
	Location            string            `json:"location"`
	LocationDetail      string            `json:"location_detail"`
	Department          string            `json:"department"`
	Requirements        string            `json:"requirements"`
	Benefits            string            `json:"benefits"`
	StartDate           time.Time         `json:"start_date"`
	EndDate             time.Time         `json:"end_date"`
	RegistrationStart   time.Time         `json:"registration_start"`
	RegistrationEnd     time.Time         `json:"registration_end"`
	MinParticipants     int               `json:"min_participants"`
	MaxParticipants     int               `json:"max_participants"`
	CurrentParticipants int               `json:"current_participants"`
	RegistrationFee     float64           `json:"registration_fee"`
	AllowAnonymous      bool              `json:"allow_anonymous"`
	ContactEmail        string            `json:"contact_email"`
	ContactPhone        string            `json:"contact_phone"`
	ContactLine         string            `json:"contact_line"`
	Website             string            `json:"website"`
	Facebook            string            `json:"facebook"`
	Instagram           string            `json:"instagram"`
	Status              models.CampStatus `json:"status"`
	Visibility          string            `json:"visibility"`
	Views               int               `json:"views"`
	Featured            bool              `json:"featured"`
	BannerURL           string            `json:"banner_url"`
	OrganizerID         uint              `json:"organizer_id"`
	Organizer           *UserSummary      `json:"organizer,omitempty"`
	FacultyID           uint              `json:"faculty_id"`
	Faculty             *FacultyResponse  `json:"faculty,omitempty"`
	// RegistrationStatus is the window classification at response time.
	RegistrationStatus lifecycle.WindowState `json:"registration_status"`
	CreatedAt          time.Time             `json:"created_at"`
}

type RegistrationResponse struct {
	ID                uint                      `json:"id"`
	CampID            uint                      `json:"camp_id"`
	UserID            *uint                     `json:"user_id"`
	User              *UserSummary              `json:"user,omitempty"`
	FormData          models.FormData           `json:"form_data"`
	Status            models.RegistrationStatus `json:"status"`
	PaymentStatus     models.PaymentStatus      `json:"payment_status"`
	Notes             string                    `json:"notes"`
	Files             []string                  `json:"files"`
	SubmittedAt       time.Time                 `json:"submitted_at"`
	ReviewedAt        *time.Time                `json:"reviewed_at"`
	ReviewedBy        *uint                     `json:"reviewed_by"`
	PaymentVerifiedAt *time.Time                `json:"payment_verified_at"`
}

func userSummary(u *models.User) *UserSummary {
	if u == nil || u.ID == 0 {
		return nil
	}
	return &UserSummary{ID: u.ID, Username: u.Username, Name: u.Name, Email: u.Email}
}

func facultyResponse(f *models.Faculty) *FacultyResponse {
	if f == nil || f.ID == 0 {
		return nil
	}
	return &FacultyResponse{ID: f.ID, Code: f.Code, NameTH: f.NameTH, NameEN: f.NameEN}
}

func campResponse(c models.Camp, files storage.FileStore, now time.Time) CampResponse {
	out := CampResponse{
		ID:                  c.ID,
		Slug:                c.Slug,
		Title:               c.Title,
		ShortDescription:    c.ShortDescription,
		Description:         c.Description,
		Category:            c.Category,
		TargetAudience:      nonNil(c.TargetAudience),
		Tags:                nonNil(c.Tags),
		Location:            c.Location,
		LocationDetail:      c.LocationDetail,
		Department:          c.Department,
		Requirements:        c.Requirements,
		Benefits:            c.Benefits,
		StartDate:           c.StartDate,
		EndDate:             c.EndDate,
		RegistrationStart:   c.RegistrationStart,
		RegistrationEnd:     c.RegistrationEnd,
		MinParticipants:     c.MinParticipants,
		MaxParticipants:     c.MaxParticipants,
		CurrentParticipants: c.CurrentParticipants,
		RegistrationFee:     c.RegistrationFee,
		AllowAnonymous:      c.AllowAnonymous,
		ContactEmail:        c.ContactEmail,
		ContactPhone:        c.ContactPhone,
		ContactLine:         c.ContactLine,
		Website:             c.Website,
		Facebook:            c.Facebook,
		Instagram:           c.Instagram,
		Status:              c.Status,
		Visibility:          c.Visibility,
		Views:               c.Views,
		Featured:            c.Featured,
		OrganizerID:         c.OrganizerID,
		Organizer:           userSummary(&c.Organizer),
		FacultyID:           c.FacultyID,
		Faculty:             facultyResponse(&c.Faculty),
		RegistrationStatus:  lifecycle.Classify(now, lifecycle.SnapshotOf(c)),
		CreatedAt:           c.CreatedAt,
	}
	if c.Banner != "" && files != nil {
		out.BannerURL = files.URL(c.Banner)
	}
	return out
}

func registrationResponse(r models.Registration, files storage.FileStore) RegistrationResponse {
	out := RegistrationResponse{
		ID:                r.ID,
		CampID:            r.CampID,
		UserID:            r.UserID,
		User:              userSummary(r.User),
		FormData:          r.FormData,
		Status:            r.Status,
		PaymentStatus:     r.PaymentStatus,
		Notes:             r.Notes,
		Files:             []string{},
		SubmittedAt:       r.SubmittedAt,
		ReviewedAt:        r.ReviewedAt,
		ReviewedBy:        r.ReviewedByID,
		PaymentVerifiedAt: r.PaymentVerifiedAt,
	}
	if out.FormData == nil {
		out.FormData = models.FormData{}
	}
	if files != nil {
		out.Files = storage.URLs(files, r.Files)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
