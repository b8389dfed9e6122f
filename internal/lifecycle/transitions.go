package lifecycle

import (
	"fmt"

	"github.com/SICout9010/K-Camp/internal/models"
)

var statusTransitions = map[models.RegistrationStatus][]models.RegistrationStatus{
	models.StatusPending:   {models.StatusReviewing, models.StatusAccepted, models.StatusWaitlist, models.StatusRejected, models.StatusCancelled},
	models.StatusReviewing: {models.StatusAccepted, models.StatusWaitlist, models.StatusRejected, models.StatusCancelled},
	models.StatusWaitlist:  {models.StatusReviewing, models.StatusAccepted, models.StatusRejected, models.StatusCancelled},
	models.StatusAccepted:  {models.StatusReviewing, models.StatusWaitlist, models.StatusRejected, models.StatusCancelled},
	models.StatusRejected:  {models.StatusReviewing, models.StatusWaitlist, models.StatusAccepted},
	models.StatusCancelled: nil,
}

var paymentTransitions = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentUnpaid:   {models.PaymentPending, models.PaymentPaid},
	models.PaymentPending:  {models.PaymentUnpaid, models.PaymentPaid},
	models.PaymentPaid:     {models.PaymentRefunded},
	models.PaymentRefunded: nil,
}

func ParseStatus(s string) (models.RegistrationStatus, error) {
	status := models.RegistrationStatus(s)
	if _, ok := statusTransitions[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return status, nil
}

func ParsePaymentStatus(s string) (models.PaymentStatus, error) {
	status := models.PaymentStatus(s)
	if _, ok := paymentTransitions[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return status, nil
}

// CanTransition reports whether a registration may move from one status to
// another. Staying in the same status is always allowed so notes can be
// edited.
func CanTransition(from, to models.RegistrationStatus) bool {
	if from == to {
		_, ok := statusTransitions[from]
		return ok
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func CanTransitionPayment(from, to models.PaymentStatus) bool {
	if from == to {
		_, ok := paymentTransitions[from]
		return ok
	}
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
