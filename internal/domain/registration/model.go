package registration

import (
	"time"
)

// Record is the registrations row shared by the read views.
type Record struct {
	ID                   int64      `json:"registration_id"`
	CampID               int64      `json:"camp_id"`
	OPDNumber            string     `json:"opd_number"`
	RegistrationNumber   *string    `json:"registration_number"`
	FirstName            string     `json:"first_name"`
	MiddleName           *string    `json:"middle_name"`
	LastName             string     `json:"last_name"`
	GuardianTypeID       int        `json:"guardian_type_id"`
	GuardianName         string     `json:"guardian_name"`
	Age                  int        `json:"age"`
	Mobile               string     `json:"mobile"`
	Aadhar               string     `json:"aadhar"`
	Email                *string    `json:"email"`
	LastPeriodDate       *time.Time `json:"last_period_date"`
	MaritalStatusID      *int       `json:"marital_status_id"`
	MarriageDate         *time.Time `json:"marriage_date"`
	ChildrenCount        int        `json:"children_count"`
	AbortionCount        int        `json:"abortion_count"`
	HighestEducation     *string    `json:"highest_education"`
	Employment           *string    `json:"employment"`
	Address              *string    `json:"address"`
	Remarks              *string    `json:"remarks"`
	VaccinationAwareness int16      `json:"vaccination_awareness"`
	PreviouslyScreened   int16      `json:"previously_screened"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Registration is the detail view: reasons as ids.
type Registration struct {
	Record
	ConsultationReasons []int `json:"consultation_reasons"`
}

// CampRegistration is the camp roster view: lookup names resolved and
// reasons as names.
type CampRegistration struct {
	Record
	GuardianType        string   `json:"guardian_type"`
	MaritalStatus       *string  `json:"marital_status"`
	ConsultationReasons []string `json:"consultation_reasons"`
}

// Summary is one line of the all-camps registration list.
type Summary struct {
	ID                 int64     `json:"registration_id"`
	CampID             int64     `json:"camp_id"`
	CampName           string    `json:"camp_name"`
	OPDNumber          string    `json:"opd_number"`
	RegistrationNumber *string   `json:"registration_number"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	GuardianName       string    `json:"guardian_name"`
	Age                int       `json:"age"`
	Mobile             string    `json:"mobile"`
	CreatedAt          time.Time `json:"created_at"`
}

// Created is what the intake transaction reports back to the caller.
type Created struct {
	RegistrationID     int64   `json:"registrationId"`
	OPDNumber          string  `json:"opdNumber"`
	RegistrationNumber *string `json:"registrationNumber"`
}

// Intake is a validated, normalized submission ready to be written.
type Intake struct {
	CampID               int64
	RegistrationNumber   *string
	FirstName            string
	MiddleName           *string
	LastName             string
	GuardianTypeID       int
	GuardianName         string
	Age                  int
	Mobile               string
	Aadhar               string
	Email                *string
	LastPeriodDate       *time.Time
	MaritalStatusID      *int
	MarriageDate         *time.Time
	ChildrenCount        int
	AbortionCount        int
	HighestEducation     *string
	Employment           *string
	Address              *string
	Remarks              *string
	VaccinationAwareness bool
	PreviouslyScreened   bool
	ConsultationReasons  []int
}

// Lookup is one row of a reference table.
type Lookup struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Lookups feeds the registration form's select lists.
type Lookups struct {
	GuardianTypes       []Lookup `json:"guardian_types"`
	MaritalStatuses     []Lookup `json:"marital_statuses"`
	ConsultationReasons []Lookup `json:"consultation_reasons"`
}

func flag(b bool) int16 {
	if b {
		return 1
	}
	return 0
}
