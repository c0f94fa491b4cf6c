package exam

import (
	"strconv"
	"strings"
	"time"

	"github.com/medcamp/medcamp/internal/domain/registration"
	"github.com/medcamp/medcamp/internal/platform/apperr"
)

// Exam maps to the doctor_exams table.
type Exam struct {
	ID                     int64           `json:"doctor_exam_id"`
	RegistrationID         *int64          `json:"registration_id"`
	UserID                 *int64          `json:"user_id"`
	VisualFindings         []VisualFinding `json:"visual_findings"`
	VIAResult              VIAResult       `json:"via_result"`
	VIAExtendsEndocervical *YesNo          `json:"via_extends_endocervical"`
	VIAQuadrantCount       *QuadrantCount  `json:"via_quadrant_count"`
	VIAQuadrants           []Quadrant      `json:"via_quadrants"`
	BiopsyTaken            int16           `json:"biopsy_taken"`
	BiopsySiteNotes        *string         `json:"biopsy_site_notes"`
	ActionsTaken           []Action        `json:"actions_taken"`
	ActionsOtherText       *string         `json:"actions_other_text"`
	CreatedAt              time.Time       `json:"created_at"`
	// RecordedBy is the examiner's username, filled on reads.
	RecordedBy *string `json:"recorded_by,omitempty"`
}

// Submission is the POST body as the exam form sends it.
type Submission struct {
	RegistrationID         registration.FlexString `json:"registration_id"`
	VisualFindings         []string                `json:"visual_findings"`
	VIAResult              string                  `json:"via_result"`
	VIAExtendsEndocervical string                  `json:"via_extends_endocervical"`
	VIAQuadrantCount       string                  `json:"via_quadrant_count"`
	VIAQuadrants           []string                `json:"via_quadrants"`
	BiopsyTaken            registration.FlexBool   `json:"biopsy_taken"`
	BiopsySiteNotes        string                  `json:"biopsy_site_notes"`
	ActionsTaken           []string                `json:"actions_taken"`
	ActionsOtherText       string                  `json:"actions_other_text"`
}

var fieldOrder = []string{
	"registration_id", "visual_findings", "via_result", "via_extends_endocervical",
	"via_quadrant_count", "via_quadrants", "actions_taken", "actions_other_text",
}

// Validate checks every coded field and builds the row to store. The
// endocervical and quadrant-count answers only apply to a positive result
// and are dropped otherwise; so is free text without the Others action.
func (s *Submission) Validate(userID int64) (*Exam, error) {
	result := VIAResult(strings.TrimSpace(s.VIAResult))
	if result == "" {
		return nil, apperr.NewValidation("via_result is required",
			map[string]bool{"via_result": false}, nil)
	}

	e := &Exam{VIAResult: result}
	checks := map[string]bool{"via_result": result.Valid()}

	if raw := s.RegistrationID.String(); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		checks["registration_id"] = err == nil && id > 0
		e.RegistrationID = &id
	}
	if userID > 0 {
		e.UserID = &userID
	}

	var ok bool
	e.VisualFindings, ok = parseSet(s.VisualFindings, VisualFinding.Valid)
	checks["visual_findings"] = ok
	e.VIAQuadrants, ok = parseSet(s.VIAQuadrants, Quadrant.Valid)
	checks["via_quadrants"] = ok
	e.ActionsTaken, ok = parseSet(s.ActionsTaken, Action.Valid)
	checks["actions_taken"] = ok

	if result == VIAPositive {
		if v := YesNo(strings.TrimSpace(s.VIAExtendsEndocervical)); v != "" {
			checks["via_extends_endocervical"] = v.Valid()
			e.VIAExtendsEndocervical = &v
		}
		if v := QuadrantCount(strings.TrimSpace(s.VIAQuadrantCount)); v != "" {
			checks["via_quadrant_count"] = v.Valid()
			e.VIAQuadrantCount = &v
		}
	}

	if hasAction(e.ActionsTaken, ActionOthers) {
		text := strings.TrimSpace(s.ActionsOtherText)
		checks["actions_other_text"] = text != ""
		e.ActionsOtherText = &text
	}

	if s.BiopsyTaken {
		e.BiopsyTaken = 1
		if notes := strings.TrimSpace(s.BiopsySiteNotes); notes != "" {
			e.BiopsySiteNotes = &notes
		}
	}

	if verr := apperr.NewValidation("Invalid doctor exam fields", checks, fieldOrder); verr != nil {
		return nil, verr
	}
	return e, nil
}

func hasAction(actions []Action, want Action) bool {
	for _, a := range actions {
		if a == want {
			return true
		}
	}
	return false
}
