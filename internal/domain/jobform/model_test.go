package jobform_test

import (
	"errors"
	"slices"
	"testing"

	"jobapply/internal/domain/jobform"
)

// TestPosition_Applies tests the position gating shared by validation and display.
func TestPosition_Applies(t *testing.T) {
	tests := []struct {
		position jobform.Position
		want     []string
	}{
		{jobform.PositionNone, []string{"fullName", "email", "phoneNumber", "position", "additionalSkills", "preferredInterviewTime"}},
		{jobform.PositionDeveloper, []string{"fullName", "email", "phoneNumber", "position", "relevantExperience", "additionalSkills", "preferredInterviewTime"}},
		{jobform.PositionDesigner, []string{"fullName", "email", "phoneNumber", "position", "relevantExperience", "portfolioURL", "additionalSkills", "preferredInterviewTime"}},
		{jobform.PositionManager, []string{"fullName", "email", "phoneNumber", "position", "managementExperience", "additionalSkills", "preferredInterviewTime"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.position), func(t *testing.T) {
			if got := tt.position.ApplicableFields(); !slices.Equal(got, tt.want) {
				t.Errorf("ApplicableFields() = %v, want %v", got, tt.want)
			}
		})
	}

	if jobform.PositionDeveloper.Applies("salary") {
		t.Error("unknown field must not apply")
	}
}

// TestParsePosition tests the select value parser.
func TestParsePosition(t *testing.T) {
	for _, s := range []string{"", "Developer", "Designer", "Manager"} {
		if p, err := jobform.ParsePosition(s); err != nil || string(p) != s {
			t.Errorf("ParsePosition(%q) = %q, %v", s, p, err)
		}
	}
	for _, s := range []string{"developer", "CEO", " Manager"} {
		if _, err := jobform.ParsePosition(s); !errors.Is(err, jobform.ErrInvalidPosition) {
			t.Errorf("ParsePosition(%q) err = %v, want ErrInvalidPosition", s, err)
		}
	}
}

// TestSummarize tests the summary rows for each position.
func TestSummarize(t *testing.T) {
	f := jobform.NewForm()
	f.FullName = "Sam Lee"
	f.Email = "sam@lee.dev"
	f.PhoneNumber = "021555"
	f.Position = jobform.PositionDesigner
	f.RelevantExperience = "4"
	f.PortfolioURL = "https://sam.design"
	f.ManagementExperience = "left over from an earlier choice"
	f.AdditionalSkills[jobform.SkillPython] = true
	f.AdditionalSkills[jobform.SkillJavaScript] = true
	f.PreferredInterviewTime = "2026-11-02T10:30"

	lines := jobform.Summarize(f)
	got := map[string]string{}
	var order []string
	for _, l := range lines {
		got[l.Label] = l.Value
		order = append(order, l.Field)
	}

	if got["Additional Skills"] != "JavaScript, Python" {
		t.Errorf("Additional Skills = %q, want %q", got["Additional Skills"], "JavaScript, Python")
	}
	if got["Portfolio URL"] != "https://sam.design" {
		t.Errorf("Portfolio URL = %q", got["Portfolio URL"])
	}
	if _, ok := got["Management Experience"]; ok {
		t.Error("Management Experience must be omitted for Designer")
	}
	if !slices.Equal(order, jobform.PositionDesigner.ApplicableFields()) {
		t.Errorf("order = %v", order)
	}
}
