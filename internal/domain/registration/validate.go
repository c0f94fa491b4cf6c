package registration

import (
	"strconv"
	"strings"
	"time"

	"github.com/medcamp/medcamp/internal/platform/apperr"
)

const (
	mobileLen = 10
	aadharLen = 12

	invalidFieldsMessage = "Missing or invalid required fields"
)

// Submission is the registration form as posted. Every field is optional at
// the decoding stage; Normalize decides what is acceptable.
type Submission struct {
	RegistrationNumber   FlexString   `json:"registration_number"`
	CampID               FlexString   `json:"camp_id"`
	FirstName            FlexString   `json:"first_name"`
	MiddleName           FlexString   `json:"middle_name"`
	LastName             FlexString   `json:"last_name"`
	GuardianTypeID       FlexString   `json:"guardian_type_id"`
	GuardianName         FlexString   `json:"guardian_name"`
	Age                  FlexString   `json:"age"`
	Mobile               FlexString   `json:"mobile"`
	Aadhar               FlexString   `json:"aadhar"`
	Email                FlexString   `json:"email"`
	LastPeriodDate       FlexString   `json:"last_period_date"`
	MaritalStatusID      FlexString   `json:"marital_status_id"`
	MarriageDate         FlexString   `json:"marriage_date"`
	ChildrenCount        FlexString   `json:"children_count"`
	AbortionCount        FlexString   `json:"abortion_count"`
	HighestEducation     FlexString   `json:"highest_education"`
	Employment           FlexString   `json:"employment"`
	Address              FlexString   `json:"address"`
	Remarks              FlexString   `json:"remarks"`
	VaccinationAwareness FlexBool     `json:"vaccination_awareness"`
	PreviouslyScreened   FlexBool     `json:"previously_screened"`
	ConsultationReasons  []FlexString `json:"consultation_reasons"`
}

// requiredOrder is the order failing fields are reported in.
var requiredOrder = []string{
	"camp_id", "first_name", "last_name", "guardian_name",
	"guardian_type_id", "age", "mobile", "aadhar",
	"children_count", "abortion_count", "consultation_reasons",
}

// Normalize validates s and converts it into an Intake. Every failing field
// is reported in a single *apperr.ValidationError. withCamp is false on the
// update path, where the camp is fixed.
func (s *Submission) Normalize(withCamp bool) (*Intake, error) {
	checks := make(map[string]bool, len(requiredOrder))
	in := &Intake{}

	if withCamp {
		id, ok := positiveInt(s.CampID)
		checks["camp_id"] = ok
		in.CampID = int64(id)
	}

	in.FirstName = s.FirstName.String()
	checks["first_name"] = in.FirstName != ""
	in.LastName = s.LastName.String()
	checks["last_name"] = in.LastName != ""
	in.GuardianName = s.GuardianName.String()
	checks["guardian_name"] = in.GuardianName != ""

	in.GuardianTypeID, checks["guardian_type_id"] = positiveInt(s.GuardianTypeID)
	in.Age, checks["age"] = positiveInt(s.Age)

	in.Mobile = digitsOnly(s.Mobile.String())
	checks["mobile"] = len(in.Mobile) == mobileLen
	in.Aadhar = digitsOnly(s.Aadhar.String())
	checks["aadhar"] = len(in.Aadhar) == aadharLen
	// Column widths. A no-op once the length checks above pass.
	in.Mobile = truncate(in.Mobile, mobileLen)
	in.Aadhar = truncate(in.Aadhar, aadharLen)

	// Counts are optional; a supplied value must still be a whole number.
	var ok bool
	if in.ChildrenCount, ok = countOrZero(s.ChildrenCount); !ok {
		checks["children_count"] = false
	}
	if in.AbortionCount, ok = countOrZero(s.AbortionCount); !ok {
		checks["abortion_count"] = false
	}

	if len(s.ConsultationReasons) > 0 {
		in.ConsultationReasons, checks["consultation_reasons"] = reasonIDs(s.ConsultationReasons)
	}

	if verr := apperr.NewValidation(invalidFieldsMessage, checks, requiredOrder); verr != nil {
		return nil, verr
	}

	in.RegistrationNumber = optional(s.RegistrationNumber)
	in.MiddleName = optional(s.MiddleName)
	in.Email = optional(s.Email)
	in.HighestEducation = optional(s.HighestEducation)
	in.Employment = optional(s.Employment)
	in.Address = optional(s.Address)
	in.Remarks = optional(s.Remarks)
	in.LastPeriodDate = parseDate(s.LastPeriodDate.String())
	in.MarriageDate = parseDate(s.MarriageDate.String())
	if id, ok := positiveInt(s.MaritalStatusID); ok {
		in.MaritalStatusID = &id
	}
	in.VaccinationAwareness = bool(s.VaccinationAwareness)
	in.PreviouslyScreened = bool(s.PreviouslyScreened)
	return in, nil
}

func positiveInt(f FlexString) (int, bool) {
	n, err := strconv.Atoi(f.String())
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func countOrZero(f FlexString) (int, bool) {
	if f.String() == "" {
		return 0, true
	}
	n, err := strconv.Atoi(f.String())
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// reasonIDs parses and de-duplicates reason ids, keeping first-seen order.
func reasonIDs(raw []FlexString) ([]int, bool) {
	seen := make(map[int]bool, len(raw))
	ids := make([]int, 0, len(raw))
	for _, r := range raw {
		id, ok := positiveInt(r)
		if !ok {
			return nil, false
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, true
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func optional(f FlexString) *string {
	s := f.String()
	if s == "" {
		return nil
	}
	return &s
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
}

// parseDate returns the calendar date of s in UTC, or nil when s is empty or
// in no recognised layout. Bad dates are dropped rather than rejected.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		t = t.UTC()
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &d
	}
	return nil
}
