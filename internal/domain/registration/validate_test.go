package registration

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/medcamp/medcamp/internal/platform/apperr"
)

func decode(t *testing.T, body string) *Submission {
	t.Helper()
	var s Submission
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return &s
}

const validBody = `{"camp_id":1,"first_name":"A","last_name":"B","guardian_name":"C",
	"guardian_type_id":1,"age":30,"mobile":"9876543210","aadhar":"123456789012",
	"consultation_reasons":[1,3]}`

func validationFields(t *testing.T, err error) []string {
	t.Helper()
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return verr.Fields
}

func TestNormalize_Valid(t *testing.T) {
	in, err := decode(t, validBody).Normalize(true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.CampID != 1 || in.GuardianTypeID != 1 || in.Age != 30 {
		t.Errorf("unexpected numbers %+v", in)
	}
	if in.Mobile != "9876543210" || in.Aadhar != "123456789012" {
		t.Errorf("unexpected ids %q %q", in.Mobile, in.Aadhar)
	}
	if !reflect.DeepEqual(in.ConsultationReasons, []int{1, 3}) {
		t.Errorf("unexpected reasons %v", in.ConsultationReasons)
	}
	if in.ChildrenCount != 0 || in.AbortionCount != 0 {
		t.Error("counts should default to 0")
	}
	if in.MiddleName != nil || in.Email != nil || in.MaritalStatusID != nil {
		t.Error("absent optional fields should be nil")
	}
}

func TestNormalize_EmptyReportsEveryField(t *testing.T) {
	_, err := decode(t, `{}`).Normalize(true)
	got := validationFields(t, err)
	want := []string{"camp_id", "first_name", "last_name", "guardian_name", "guardian_type_id", "age", "mobile", "aadhar"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalize_SingleFieldFailures(t *testing.T) {
	tests := []struct {
		name  string
		patch string
		field string
	}{
		{"blank first name", `"first_name":"   "`, "first_name"},
		{"missing last name", `"last_name":null`, "last_name"},
		{"blank guardian", `"guardian_name":""`, "guardian_name"},
		{"guardian type not integer", `"guardian_type_id":"father"`, "guardian_type_id"},
		{"zero age", `"age":0`, "age"},
		{"negative age", `"age":"-4"`, "age"},
		{"fractional age", `"age":30.5`, "age"},
		{"nine digit mobile", `"mobile":"987654321"`, "mobile"},
		{"eleven digit mobile", `"mobile":"98765432101"`, "mobile"},
		{"short aadhar", `"aadhar":"12345"`, "aadhar"},
		{"camp not a number", `"camp_id":"north"`, "camp_id"},
		{"negative children", `"children_count":-1`, "children_count"},
		{"bad reason", `"consultation_reasons":[1,"x"]`, "consultation_reasons"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m map[string]any
			_ = json.Unmarshal([]byte(validBody), &m)
			var patch map[string]any
			if err := json.Unmarshal([]byte("{"+tt.patch+"}"), &patch); err != nil {
				t.Fatalf("bad patch: %v", err)
			}
			for k, v := range patch {
				m[k] = v
			}
			b, _ := json.Marshal(m)

			_, err := decode(t, string(b)).Normalize(true)
			got := validationFields(t, err)
			if !reflect.DeepEqual(got, []string{tt.field}) {
				t.Errorf("got %v, want [%s]", got, tt.field)
			}
		})
	}
}

func TestNormalize_MobileDigits(t *testing.T) {
	s := decode(t, validBody)
	s.Mobile = "98-765 43210"
	s.Aadhar = "1234 5678 9012"
	in, err := s.Normalize(true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Mobile != "9876543210" {
		t.Errorf("expected 9876543210, got %q", in.Mobile)
	}
	if in.Aadhar != "123456789012" {
		t.Errorf("expected 123456789012, got %q", in.Aadhar)
	}

	s.Mobile = "98765-4321"
	_, err = s.Normalize(true)
	if got := validationFields(t, err); !reflect.DeepEqual(got, []string{"mobile"}) {
		t.Errorf("got %v", got)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"98765432101", mobileLen, "9876543210"},
		{"9876543210", mobileLen, "9876543210"},
		{"1234", aadharLen, "1234"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.n); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}

	s := decode(t, validBody)
	s.Mobile = "98765432101"
	_, err := s.Normalize(true)
	if got := validationFields(t, err); !reflect.DeepEqual(got, []string{"mobile"}) {
		t.Errorf("got %v", got)
	}
}

func TestNormalize_FractionalNumbersRejected(t *testing.T) {
	for _, body := range []string{
		`{"camp_id":1,"first_name":"A","last_name":"B","guardian_name":"C",
			"guardian_type_id":1,"age":"30.5","mobile":"9876543210","aadhar":"123456789012"}`,
		`{"camp_id":1,"first_name":"A","last_name":"B","guardian_name":"C",
			"guardian_type_id":1,"age":30.0,"mobile":"9876543210","aadhar":"123456789012"}`,
	} {
		_, err := decode(t, body).Normalize(true)
		if got := validationFields(t, err); !reflect.DeepEqual(got, []string{"age"}) {
			t.Errorf("got %v", got)
		}
	}
}

func TestNormalize_NumericMobile(t *testing.T) {
	in, err := decode(t, `{"camp_id":"2","first_name":"A","last_name":"B","guardian_name":"C",
		"guardian_type_id":"2","age":"41","mobile":9876543210,"aadhar":123456789012}`).Normalize(true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Mobile != "9876543210" || in.CampID != 2 || in.Age != 41 {
		t.Errorf("unexpected intake %+v", in)
	}
}

func TestNormalize_Dates(t *testing.T) {
	tests := []struct {
		raw  string
		want *time.Time
	}{
		{"2024-03-09", date(2024, 3, 9)},
		{"2024-03-09T18:30:00.000Z", date(2024, 3, 9)},
		{"2024-03-09T23:30:00+05:30", date(2024, 3, 9)},
		{"2024-03-10T02:00:00+05:30", date(2024, 3, 9)},
		{"03/09/2024", date(2024, 3, 9)},
		{"not a date", nil},
		{"2024-13-45", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			s := decode(t, validBody)
			s.LastPeriodDate = FlexString(tt.raw)
			in, err := s.Normalize(true)
			if err != nil {
				t.Fatalf("a bad date must not fail validation: %v", err)
			}
			switch {
			case tt.want == nil && in.LastPeriodDate != nil:
				t.Errorf("expected nil, got %v", in.LastPeriodDate)
			case tt.want != nil && (in.LastPeriodDate == nil || !in.LastPeriodDate.Equal(*tt.want)):
				t.Errorf("expected %v, got %v", tt.want, in.LastPeriodDate)
			}
		})
	}
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestNormalize_ReasonsDeduplicated(t *testing.T) {
	s := decode(t, validBody)
	s.ConsultationReasons = []FlexString{"3", "1", "3", "1", "5"}
	in, err := s.Normalize(true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(in.ConsultationReasons, []int{3, 1, 5}) {
		t.Errorf("got %v", in.ConsultationReasons)
	}
}

func TestNormalize_Flags(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`true`, true},
		{`1`, true},
		{`"yes"`, true},
		{`false`, false},
		{`0`, false},
		{`"0"`, false},
		{`null`, false},
		{`""`, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var b FlexBool
			if err := json.Unmarshal([]byte(tt.raw), &b); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if bool(b) != tt.want {
				t.Errorf("got %v, want %v", b, tt.want)
			}
		})
	}
}

func TestNormalize_OptionalFields(t *testing.T) {
	s := decode(t, validBody)
	s.MiddleName = "  K "
	s.Email = "a@b.in"
	s.MaritalStatusID = "2"
	s.ChildrenCount = "3"
	s.RegistrationNumber = "REG-77"
	in, err := s.Normalize(true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.MiddleName == nil || *in.MiddleName != "K" {
		t.Errorf("middle name %v", in.MiddleName)
	}
	if in.MaritalStatusID == nil || *in.MaritalStatusID != 2 {
		t.Errorf("marital status %v", in.MaritalStatusID)
	}
	if in.ChildrenCount != 3 {
		t.Errorf("children %d", in.ChildrenCount)
	}
	if in.RegistrationNumber == nil || *in.RegistrationNumber != "REG-77" {
		t.Errorf("registration number %v", in.RegistrationNumber)
	}
}

func TestNormalize_MaritalStatusGarbageIsNull(t *testing.T) {
	s := decode(t, validBody)
	s.MaritalStatusID = "single"
	in, err := s.Normalize(true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.MaritalStatusID != nil {
		t.Errorf("expected nil, got %d", *in.MaritalStatusID)
	}
}

func TestNormalize_UpdateIgnoresCamp(t *testing.T) {
	s := decode(t, validBody)
	s.CampID = ""
	if _, err := s.Normalize(false); err != nil {
		t.Errorf("update path must not require camp_id: %v", err)
	}
}

func TestFlexString_RejectsObjects(t *testing.T) {
	var s Submission
	if err := json.Unmarshal([]byte(`{"first_name":{"x":1}}`), &s); err == nil {
		t.Error("expected error for object value")
	}
}
