// Package roster renders a camp's registrations as a flat comma separated
// roster for organizers.
package roster

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SICout9010/K-Camp/internal/models"
)

// Header is the fixed first row of every export.
var Header = []string{"ID", "ชื่อ-นามสกุล", "อีเมล", "สถานะ", "วันที่สมัคร", "หมายเหตุ"}

const notAvailable = "N/A"

// Export is the rendered roster and the file name offered for download.
type Export struct {
	CSV      string `json:"csv"`
	Filename string `json:"filename"`
}

// Format renders registrations in the order given; callers pass them newest
// submission first. Values are not quoted.
func Format(slug string, registrations []models.Registration, now time.Time, loc *time.Location) Export {
	if loc == nil {
		loc = time.UTC
	}
	rows := make([]string, 0, len(registrations)+1)
	rows = append(rows, strings.Join(Header, ","))
	for _, r := range registrations {
		rows = append(rows, strings.Join(Row(r, loc), ","))
	}
	return Export{
		CSV:      strings.Join(rows, "\n"),
		Filename: Filename(slug, now.In(loc)),
	}
}

// Row returns the export columns of one registration.
func Row(r models.Registration, loc *time.Location) []string {
	submitted := r.SubmittedAt
	if submitted.IsZero() {
		submitted = r.CreatedAt
	}
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		displayName(r),
		displayEmail(r),
		string(r.Status),
		ThaiDate(submitted.In(loc)),
		r.Notes,
	}
}

func displayName(r models.Registration) string {
	if v := r.FormData.Get("field_1"); v != "" {
		return v
	}
	if r.User != nil && r.User.Name != "" {
		return r.User.Name
	}
	return notAvailable
}

func displayEmail(r models.Registration) string {
	if v := r.FormData.Get("field_2"); v != "" {
		return v
	}
	if r.User != nil && r.User.Email != "" {
		return r.User.Email
	}
	return notAvailable
}

// ThaiDate formats t as day/month/year in the Buddhist Era, without padding.
func ThaiDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year()+543)
}

func Filename(slug string, day time.Time) string {
	return fmt.Sprintf("registrations-%s-%s.csv", slug, day.Format("2006-01-02"))
}
