package jobform

import (
	"errors"
	"fmt"
	"maps"
)

// Field names, as posted by the form and used as keys in Errors.
const (
	FieldFullName               = "fullName"
	FieldEmail                  = "email"
	FieldPhoneNumber            = "phoneNumber"
	FieldPosition               = "position"
	FieldRelevantExperience     = "relevantExperience"
	FieldPortfolioURL           = "portfolioURL"
	FieldManagementExperience   = "managementExperience"
	FieldAdditionalSkills       = "additionalSkills"
	FieldPreferredInterviewTime = "preferredInterviewTime"
)

// FieldOrder is the display order of the form and the summary.
var FieldOrder = []string{
	FieldFullName,
	FieldEmail,
	FieldPhoneNumber,
	FieldPosition,
	FieldRelevantExperience,
	FieldPortfolioURL,
	FieldManagementExperience,
	FieldAdditionalSkills,
	FieldPreferredInterviewTime,
}

// Labels maps field names to their human-readable label.
var Labels = map[string]string{
	FieldFullName:               "Full Name",
	FieldEmail:                  "Email",
	FieldPhoneNumber:            "Phone Number",
	FieldPosition:               "Position",
	FieldRelevantExperience:     "Relevant Experience",
	FieldPortfolioURL:           "Portfolio URL",
	FieldManagementExperience:   "Management Experience",
	FieldAdditionalSkills:       "Additional Skills",
	FieldPreferredInterviewTime: "Preferred Interview Time",
}

// Position is the role applied for. The empty Position means none selected.
type Position string

// Positions
const (
	PositionNone      Position = ""
	PositionDeveloper Position = "Developer"
	PositionDesigner  Position = "Designer"
	PositionManager   Position = "Manager"
)

// Positions lists the selectable positions in display order.
var Positions = []Position{PositionDeveloper, PositionDesigner, PositionManager}

// Skill is one of the additional-skill checkboxes.
type Skill string

// Skills
const (
	SkillJavaScript Skill = "JavaScript"
	SkillCSS        Skill = "CSS"
	SkillPython     Skill = "Python"
)

// Skills lists the skill flags in display order.
var Skills = []Skill{SkillJavaScript, SkillCSS, SkillPython}

// Domain errors
var (
	ErrUnknownField    = errors.New("unknown form field")
	ErrInvalidPosition = errors.New("position must be one of: Developer, Designer, Manager")
	ErrUnknownSkill    = errors.New("skill must be one of: JavaScript, CSS, Python")
	ErrInvalidChecked  = errors.New("checkbox value must be on, off, true, false, 1, 0 or empty")
	ErrSubmitted       = errors.New("application already submitted")
	ErrNotSubmitted    = errors.New("application not submitted")
)

// Form holds the applicant's current field values.
// Conditional fields keep their value when they stop applying; they are
// simply neither validated nor shown.
type Form struct {
	FullName               string
	Email                  string
	PhoneNumber            string
	Position               Position
	RelevantExperience     string
	PortfolioURL           string
	ManagementExperience   string
	AdditionalSkills       map[Skill]bool
	PreferredInterviewTime string
}

// NewForm returns the all-empty form shown when the page is first opened.
// POST: every skill flag is present and false
func NewForm() Form {
	skills := make(map[Skill]bool, len(Skills))
	for _, s := range Skills {
		skills[s] = false
	}
	return Form{AdditionalSkills: skills}
}

// Clone returns a copy that shares no mutable state with f.
func (f Form) Clone() Form {
	c := f
	c.AdditionalSkills = maps.Clone(f.AdditionalSkills)
	return c
}

// Value returns the text value of a scalar field.
// PRE: name is a scalar field (not additionalSkills)
// POST: returns the value, or false if name is not a scalar field
func (f Form) Value(name string) (string, bool) {
	switch name {
	case FieldFullName:
		return f.FullName, true
	case FieldEmail:
		return f.Email, true
	case FieldPhoneNumber:
		return f.PhoneNumber, true
	case FieldPosition:
		return string(f.Position), true
	case FieldRelevantExperience:
		return f.RelevantExperience, true
	case FieldPortfolioURL:
		return f.PortfolioURL, true
	case FieldManagementExperience:
		return f.ManagementExperience, true
	case FieldPreferredInterviewTime:
		return f.PreferredInterviewTime, true
	}
	return "", false
}

// SelectedSkills returns the checked skills in display order.
func (f Form) SelectedSkills() []Skill {
	var out []Skill
	for _, s := range Skills {
		if f.AdditionalSkills[s] {
			out = append(out, s)
		}
	}
	return out
}

// HasSkill reports whether at least one skill flag is set.
func (f Form) HasSkill() bool {
	for _, checked := range f.AdditionalSkills {
		if checked {
			return true
		}
	}
	return false
}

// ParsePosition converts a posted select value into a Position.
// PRE: none
// POST: returns ErrInvalidPosition for anything outside "", Developer, Designer, Manager
func ParsePosition(s string) (Position, error) {
	p := Position(s)
	if p == PositionNone {
		return p, nil
	}
	for _, v := range Positions {
		if v == p {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPosition, s)
}

// ParseSkill converts a checkbox name into a Skill.
func ParseSkill(s string) (Skill, bool) {
	for _, v := range Skills {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// Applies reports whether field is part of the form for this position.
// The validator, the editable view and the summary all use this rule.
// INVARIANT: depends on p only
func (p Position) Applies(field string) bool {
	switch field {
	case FieldRelevantExperience:
		return p == PositionDeveloper || p == PositionDesigner
	case FieldPortfolioURL:
		return p == PositionDesigner
	case FieldManagementExperience:
		return p == PositionManager
	}
	_, known := Labels[field]
	return known
}

// ApplicableFields returns the fields shown for p, in display order.
func (p Position) ApplicableFields() []string {
	out := make([]string, 0, len(FieldOrder))
	for _, f := range FieldOrder {
		if p.Applies(f) {
			out = append(out, f)
		}
	}
	return out
}
