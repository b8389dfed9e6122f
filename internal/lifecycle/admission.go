package lifecycle

import (
	"strings"
	"time"

	"github.com/SICout9010/K-Camp/internal/models"
)

// Field is one submitted form value, in submission order.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CheckAdmission applies the admission preconditions in order: the window
// must be open, then the user must not hold another active registration for
// the camp. existing is the user's latest registration for the camp, if any.
func CheckAdmission(now time.Time, camp models.Camp, existing *models.Registration) error {
	if err := WindowError(Classify(now, SnapshotOf(camp))); err != nil {
		return err
	}
	if existing != nil && existing.Status != models.StatusCancelled {
		return ErrAlreadyRegistered
	}
	return nil
}

// HasCapacity is the capacity re-check made right before a registration is
// written.
func HasCapacity(camp models.Camp) bool {
	return camp.CurrentParticipants < camp.MaxParticipants
}

// BuildFormData groups submitted fields by key, keeping first-seen key order.
// File inputs are uploaded separately and never stored as answers.
func BuildFormData(fields []Field) models.FormData {
	data := models.FormData{}
	for _, f := range fields {
		if f.Key == "" || f.Key == "files" || strings.HasPrefix(f.Key, "file_") {
			continue
		}
		data = data.Add(f.Key, f.Value)
	}
	return data
}

func InitialPaymentStatus(fee float64) models.PaymentStatus {
	if fee > 0 {
		return models.PaymentUnpaid
	}
	return models.PaymentPaid
}

// NewRegistration builds the pending record for an admitted submission.
func NewRegistration(now time.Time, camp models.Camp, userID *uint, fields []Field) models.Registration {
	return models.Registration{
		CampID:        camp.ID,
		UserID:        userID,
		FormData:      BuildFormData(fields),
		Status:        models.StatusPending,
		PaymentStatus: InitialPaymentStatus(camp.RegistrationFee),
		SubmittedAt:   now,
	}
}
