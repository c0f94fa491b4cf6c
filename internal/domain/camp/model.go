package camp

import (
	"strings"
	"time"

	"github.com/medcamp/medcamp/internal/platform/apperr"
)

// Camp maps to the camps table.
type Camp struct {
	ID          int64     `json:"camp_id"`
	CampName    string    `json:"camp_name"`
	CampDate    time.Time `json:"camp_date"`
	Area        *string   `json:"area"`
	District    *string   `json:"district"`
	Mandal      *string   `json:"mandal"`
	Coordinator *string   `json:"coordinator"`
	Sponsor     *string   `json:"sponsor"`
	Agenda      *string   `json:"agenda"`
	CreatedBy   *int64    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Input is the create/update body.
type Input struct {
	CampName    string  `json:"camp_name"`
	CampDate    string  `json:"camp_date"`
	Area        *string `json:"area"`
	District    *string `json:"district"`
	Mandal      *string `json:"mandal"`
	Coordinator *string `json:"coordinator"`
	Sponsor     *string `json:"sponsor"`
	Agenda      *string `json:"agenda"`
}

// Stats is the dashboard summary.
type Stats struct {
	TotalCamps         int64 `json:"totalCamps"`
	UpcomingCamps      int64 `json:"upcomingCamps"`
	TotalRegistrations int64 `json:"totalRegistrations"`
	TodayRegistrations int64 `json:"todayRegistrations"`
	TotalUsers         int64 `json:"totalUsers"`
}

// toCamp checks the required fields and builds the row to write.
func (in *Input) toCamp() (*Camp, error) {
	name := strings.TrimSpace(in.CampName)
	date, dateErr := time.Parse("2006-01-02", firstN(strings.TrimSpace(in.CampDate), 10))

	checks := map[string]bool{
		"camp_name": name != "",
		"camp_date": dateErr == nil,
	}
	if verr := apperr.NewValidation("camp_name and camp_date are required", checks, []string{"camp_name", "camp_date"}); verr != nil {
		return nil, verr
	}
	return &Camp{
		CampName:    name,
		CampDate:    date,
		Area:        in.Area,
		District:    in.District,
		Mandal:      in.Mandal,
		Coordinator: in.Coordinator,
		Sponsor:     in.Sponsor,
		Agenda:      in.Agenda,
	}, nil
}

// firstN lets "2025-02-01T00:00:00.000Z" through as its date part.
func firstN(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
