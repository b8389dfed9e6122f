package lifecycle

import (
	"fmt"

	"github.com/SICout9010/K-Camp/internal/models"
)

// CountedSet is the set of registration statuses that occupy a seat in
// current_participants.
type CountedSet map[models.RegistrationStatus]bool

// DefaultCountedSet counts every registration that still holds a seat:
// submitted, under review or accepted.
func DefaultCountedSet() CountedSet {
	return CountedSet{
		models.StatusPending:   true,
		models.StatusReviewing: true,
		models.StatusAccepted:  true,
	}
}

// AcceptedOnly counts accepted registrations only.
func AcceptedOnly() CountedSet {
	return CountedSet{models.StatusAccepted: true}
}

func ParseCountedSet(values []string) (CountedSet, error) {
	if len(values) == 0 {
		return DefaultCountedSet(), nil
	}
	set := CountedSet{}
	for _, v := range values {
		status, err := ParseStatus(v)
		if err != nil {
			return nil, err
		}
		if status == models.StatusCancelled {
			return nil, fmt.Errorf("cancelled registrations cannot be counted")
		}
		set[status] = true
	}
	return set, nil
}

func (c CountedSet) Counts(status models.RegistrationStatus) bool {
	return c[status]
}

// Delta is the counter change caused by moving a registration from one
// status to another: +1 when entering the set, -1 when leaving it.
func (c CountedSet) Delta(from, to models.RegistrationStatus) int {
	switch {
	case !c.Counts(from) && c.Counts(to):
		return 1
	case c.Counts(from) && !c.Counts(to):
		return -1
	default:
		return 0
	}
}

func (c CountedSet) Statuses() []models.RegistrationStatus {
	var out []models.RegistrationStatus
	for _, s := range models.RegistrationStatuses {
		if c[s] {
			out = append(out, s)
		}
	}
	return out
}
