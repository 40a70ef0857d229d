package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // v7
		"123e4567-e89b-12d3-a456-426614174000", // v1
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B", // uppercase
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"urn:uuid:123e4567-e89b-12d3-a456-426614174000",
		"",
	}
	for _, id := range valid {
		if !IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = true, want false", id)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidMonth(t *testing.T) {
	valid := []string{"2024-01", "1999-12"}
	invalid := []string{"2024-13", "2024-1", "2024/01", "202401", ""}
	for _, s := range valid {
		if _, ok := IsValidMonth(s); !ok {
			t.Errorf("IsValidMonth(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidMonth(s); ok {
			t.Errorf("IsValidMonth(%q) = true, want false", s)
		}
	}
}

func TestIsValidTimeOfDay(t *testing.T) {
	valid := []string{"00:00", "09:00", "18:30", "23:59"}
	invalid := []string{"24:00", "9:00", "09:60", "0900", "", "09:00:00"}
	for _, s := range valid {
		if !IsValidTimeOfDay(s) {
			t.Errorf("IsValidTimeOfDay(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidTimeOfDay(s) {
			t.Errorf("IsValidTimeOfDay(%q) = true, want false", s)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"a", "b", "c"}
	if !IsInSlice("a", slice) {
		t.Errorf("IsInSlice('a') = false, want true")
	}
	if IsInSlice("d", slice) {
		t.Errorf("IsInSlice('d') = true, want false")
	}
}

type structFixture struct {
	ReportMonth string   `json:"report_month" validate:"required"`
	EmployeeIDs []string `json:"employee_ids" validate:"omitempty,max=2,dive,uuid"`
	Internal    string   `json:"-"`
}

func TestStruct(t *testing.T) {
	ok := structFixture{ReportMonth: "2024-03", EmployeeIDs: []string{"123e4567-e89b-12d3-a456-426614174000"}}
	if errs := Struct(ok); errs != nil {
		t.Fatalf("Struct(valid) = %v, want nil", errs)
	}

	bad := structFixture{EmployeeIDs: []string{"not-a-uuid"}}
	got := Struct(bad).ToMap()
	if got["report_month"] != "is required" {
		t.Errorf("report_month message = %q, want %q", got["report_month"], "is required")
	}
	if got["employee_ids[0]"] != "must be a valid UUID" {
		t.Errorf("employee_ids[0] message = %q, want %q", got["employee_ids[0]"], "must be a valid UUID")
	}

	tooMany := structFixture{
		ReportMonth: "2024-03",
		EmployeeIDs: []string{
			"123e4567-e89b-12d3-a456-426614174000",
			"123e4567-e89b-12d3-a456-426614174001",
			"123e4567-e89b-12d3-a456-426614174002",
		},
	}
	if msg := Struct(tooMany).ToMap()["employee_ids"]; msg != "must have at most 2 item(s)" {
		t.Errorf("employee_ids message = %q", msg)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "date", Message: "invalid"},
		{Field: "employee_id", Message: "required"},
	}
	got := errs.Error()
	want := "date: invalid; employee_id: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "date", Message: "invalid"},
		{Field: "employee_id", Message: "required"},
	}
	got := errs.ToMap()
	want := map[string]string{"date": "invalid", "employee_id": "required"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestValidationErrors_OrNil(t *testing.T) {
	var errs ValidationErrors
	if errs.OrNil() != nil {
		t.Errorf("empty OrNil() = non-nil, want nil")
	}
	errs = append(errs, ValidationError{Field: "x", Message: "y"})
	if errs.OrNil() == nil {
		t.Errorf("non-empty OrNil() = nil")
	}
}
