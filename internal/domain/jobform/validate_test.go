package jobform_test

import (
	"maps"
	"slices"
	"testing"

	"jobapply/internal/domain/jobform"
)

// validForm returns a Developer application that passes every rule.
func validForm() jobform.Form {
	f := jobform.NewForm()
	f.FullName = "Jane Doe"
	f.Email = "jane@x.com"
	f.PhoneNumber = "5551234"
	f.Position = jobform.PositionDeveloper
	f.RelevantExperience = "3"
	f.AdditionalSkills[jobform.SkillJavaScript] = true
	f.PreferredInterviewTime = "2026-11-02T10:30"
	return f
}

// TestValidate_EmptyForm tests that the untouched form reports the always-required fields only.
func TestValidate_EmptyForm(t *testing.T) {
	errs := jobform.Validate(jobform.NewForm())

	want := []string{
		jobform.FieldFullName,
		jobform.FieldEmail,
		jobform.FieldPhoneNumber,
		jobform.FieldAdditionalSkills,
		jobform.FieldPreferredInterviewTime,
	}
	if got := errs.Fields(); !slices.Equal(got, want) {
		t.Fatalf("Fields() = %v, want %v", got, want)
	}

	wantMsgs := map[string]string{
		jobform.FieldFullName:               "Full Name is required",
		jobform.FieldEmail:                  "Email is required",
		jobform.FieldPhoneNumber:            "Phone Number is required",
		jobform.FieldAdditionalSkills:       "At least one skill must be selected",
		jobform.FieldPreferredInterviewTime: "Preferred Interview Time is required",
	}
	for field, msg := range wantMsgs {
		if errs[field] != msg {
			t.Errorf("errs[%s] = %q, want %q", field, errs[field], msg)
		}
	}
}

// TestValidate_ValidForm tests that a complete Developer application passes.
func TestValidate_ValidForm(t *testing.T) {
	if errs := jobform.Validate(validForm()); len(errs) != 0 {
		t.Fatalf("Validate() = %v, want no errors", errs)
	}
}

// TestValidate_Email tests the email rule.
func TestValidate_Email(t *testing.T) {
	tests := []struct {
		email   string
		wantMsg string
	}{
		{"", "Email is required"},
		{"jane", "Email is invalid"},
		{"jane@x", "Email is invalid"},
		{"@x.com", "Email is invalid"},
		{"jane@x.", "Email is invalid"},
		{"jane@x.com", ""},
		{"a b@c.d", ""}, // unanchored match on "b@c.d"
		{"first.last@sub.domain.org", ""},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			f := validForm()
			f.Email = tt.email
			got := jobform.Validate(f)[jobform.FieldEmail]
			if got != tt.wantMsg {
				t.Errorf("email %q: got %q, want %q", tt.email, got, tt.wantMsg)
			}
		})
	}
}

// TestValidate_PhoneNumber tests the loose numeric phone rule.
func TestValidate_PhoneNumber(t *testing.T) {
	tests := []struct {
		phone   string
		wantErr bool
	}{
		{"5551234", false},
		{" 5551234 ", false},
		{"1e5", false},
		{"0x1F", false},
		{"   ", false}, // blank coerces to 0
		{"-12", false},
		{"555-1234", true},
		{"abc", true},
		{"12a", true},
	}
	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			f := validForm()
			f.PhoneNumber = tt.phone
			errs := jobform.Validate(f)
			if errs.Has(jobform.FieldPhoneNumber) != tt.wantErr {
				t.Errorf("phone %q: error = %q, wantErr %v", tt.phone, errs[jobform.FieldPhoneNumber], tt.wantErr)
			}
			if tt.wantErr && errs[jobform.FieldPhoneNumber] != "Phone Number must be a valid number" {
				t.Errorf("unexpected message %q", errs[jobform.FieldPhoneNumber])
			}
		})
	}
}

// TestValidate_RelevantExperience tests the experience rule for Developer and Designer.
func TestValidate_RelevantExperience(t *testing.T) {
	tests := []struct {
		name     string
		position jobform.Position
		value    string
		wantMsg  string
	}{
		{"developer empty", jobform.PositionDeveloper, "", "Relevant Experience is required"},
		{"developer zero", jobform.PositionDeveloper, "0", "Relevant Experience must be a number greater than 0"},
		{"developer negative", jobform.PositionDeveloper, "-3", "Relevant Experience must be a number greater than 0"},
		{"developer text", jobform.PositionDeveloper, "lots", "Relevant Experience must be a number greater than 0"},
		{"developer blank", jobform.PositionDeveloper, "  ", "Relevant Experience must be a number greater than 0"},
		{"developer two", jobform.PositionDeveloper, "2", ""},
		{"developer fraction", jobform.PositionDeveloper, "0.5", ""},
		{"designer empty", jobform.PositionDesigner, "", "Relevant Experience is required"},
		{"designer two", jobform.PositionDesigner, "2", ""},
		{"manager ignores", jobform.PositionManager, "", ""},
		{"none ignores", jobform.PositionNone, "-1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			f.Position = tt.position
			f.RelevantExperience = tt.value
			f.PortfolioURL = "https://a.b/c"
			f.ManagementExperience = "5 years"
			got := jobform.Validate(f)[jobform.FieldRelevantExperience]
			if got != tt.wantMsg {
				t.Errorf("got %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

// TestValidate_PortfolioURL tests the Designer-only portfolio rule.
func TestValidate_PortfolioURL(t *testing.T) {
	tests := []struct {
		url     string
		wantMsg string
	}{
		{"", "Portfolio URL is required"},
		{"ftp://x.com", "Portfolio URL is invalid"},
		{"https://", "Portfolio URL is invalid"},
		{"https://x", "Portfolio URL is invalid"},
		{"https://.com", "Portfolio URL is invalid"},
		{"https://a.b/c d", "Portfolio URL is invalid"},
		{"www.example.com", "Portfolio URL is invalid"},
		{"https://a.b/c", ""},
		{"http://portfolio.example.com/work?id=1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			f := validForm()
			f.Position = jobform.PositionDesigner
			f.PortfolioURL = tt.url
			got := jobform.Validate(f)[jobform.FieldPortfolioURL]
			if got != tt.wantMsg {
				t.Errorf("url %q: got %q, want %q", tt.url, got, tt.wantMsg)
			}
		})
	}
}

// TestValidate_PortfolioURL_NotDesigner tests that a bad portfolio never blocks other positions.
func TestValidate_PortfolioURL_NotDesigner(t *testing.T) {
	f := validForm()
	f.PortfolioURL = "ftp://x.com"
	if errs := jobform.Validate(f); len(errs) != 0 {
		t.Errorf("Validate() = %v, want no errors for Developer", errs)
	}
}

// TestValidate_ManagementExperience tests the Manager-only rule.
func TestValidate_ManagementExperience(t *testing.T) {
	f := validForm()
	f.Position = jobform.PositionManager
	f.RelevantExperience = ""

	errs := jobform.Validate(f)
	if errs[jobform.FieldManagementExperience] != "Management Experience is required" {
		t.Errorf("empty management experience: got %q", errs[jobform.FieldManagementExperience])
	}
	if errs.Has(jobform.FieldRelevantExperience) {
		t.Error("relevant experience must not be checked for Manager")
	}

	f.ManagementExperience = "Led a team of four"
	if errs := jobform.Validate(f); len(errs) != 0 {
		t.Errorf("Validate() = %v, want no errors", errs)
	}
}

// TestValidate_Skills tests that any single skill satisfies the rule.
func TestValidate_Skills(t *testing.T) {
	for _, skill := range jobform.Skills {
		t.Run(string(skill), func(t *testing.T) {
			f := validForm()
			f.AdditionalSkills = map[jobform.Skill]bool{
				jobform.SkillJavaScript: false,
				jobform.SkillCSS:        false,
				jobform.SkillPython:     false,
			}
			f.AdditionalSkills[skill] = true
			if errs := jobform.Validate(f); errs.Has(jobform.FieldAdditionalSkills) {
				t.Errorf("only %s checked: unexpected error %q", skill, errs[jobform.FieldAdditionalSkills])
			}
		})
	}

	f := validForm()
	f.AdditionalSkills[jobform.SkillJavaScript] = false
	if errs := jobform.Validate(f); errs[jobform.FieldAdditionalSkills] != "At least one skill must be selected" {
		t.Errorf("no skills: got %q", errs[jobform.FieldAdditionalSkills])
	}
}

// TestValidate_Cumulative tests that failures on several fields are all reported.
func TestValidate_Cumulative(t *testing.T) {
	f := jobform.NewForm()
	f.Position = jobform.PositionDesigner
	f.Email = "nope"
	f.PhoneNumber = "call me"

	errs := jobform.Validate(f)
	for _, field := range []string{
		jobform.FieldFullName,
		jobform.FieldEmail,
		jobform.FieldPhoneNumber,
		jobform.FieldRelevantExperience,
		jobform.FieldPortfolioURL,
		jobform.FieldAdditionalSkills,
		jobform.FieldPreferredInterviewTime,
	} {
		if !errs.Has(field) {
			t.Errorf("missing error for %s", field)
		}
	}
	if errs.Has(jobform.FieldManagementExperience) {
		t.Error("management experience must not be checked for Designer")
	}
}

// TestValidate_Idempotent tests that validating an unchanged form twice gives identical results.
func TestValidate_Idempotent(t *testing.T) {
	f := jobform.NewForm()
	f.Position = jobform.PositionDeveloper
	f.RelevantExperience = "-3"

	first := jobform.Validate(f)
	second := jobform.Validate(f)
	if !maps.Equal(first, second) {
		t.Errorf("first = %v, second = %v", first, second)
	}
	if f.AdditionalSkills[jobform.SkillJavaScript] {
		t.Error("Validate mutated the form")
	}
}
