package jobform

import (
	"fmt"
	"maps"
	"strings"
	"time"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// Draft is the state of one application while it is being filled in.
// It starts Editing and moves to Submitted once a submit attempt finds no
// errors. There is no way back.
// INVARIANT: Submitted implies Validate(form) is empty and form is frozen
type Draft struct {
	id          string
	form        Form
	errors      Errors
	submitted   bool
	startedAt   time.Time
	submittedAt time.Time
}

// NewDraft starts an empty application.
// PRE: id is non-empty
// POST: Editing, all fields empty, no errors
func NewDraft(id string, startedAt time.Time) *Draft {
	return &Draft{
		id:        id,
		form:      NewForm(),
		errors:    Errors{},
		startedAt: startedAt,
	}
}

// ID returns the application reference.
func (d *Draft) ID() string { return d.id }

// StartedAt returns when the draft was created.
func (d *Draft) StartedAt() time.Time { return d.startedAt }

// SubmittedAt returns when the draft was accepted (zero while Editing).
func (d *Draft) SubmittedAt() time.Time { return d.submittedAt }

// Submitted reports whether the draft has been accepted.
func (d *Draft) Submitted() bool { return d.submitted }

// Form returns a copy of the current values.
func (d *Draft) Form() Form { return d.form.Clone() }

// Errors returns a copy of the result of the last submit attempt.
// Empty until the first attempt; not refreshed by UpdateField.
func (d *Draft) Errors() Errors { return maps.Clone(d.errors) }

// UpdateField replaces one value. For a skill name it replaces only that
// flag and keeps the others. No validation runs here.
// PRE: draft is Editing
// POST: the named value is replaced; errors are left as they were
func (d *Draft) UpdateField(name, value string) error {
	if d.submitted {
		return ErrSubmitted
	}

	if skill, ok := ParseSkill(name); ok {
		checked, err := parseChecked(value)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		skills := maps.Clone(d.form.AdditionalSkills)
		skills[skill] = checked
		d.form.AdditionalSkills = skills
		return nil
	}

	switch name {
	case FieldFullName:
		d.form.FullName = value
	case FieldEmail:
		d.form.Email = value
	case FieldPhoneNumber:
		d.form.PhoneNumber = value
	case FieldPosition:
		p, err := ParsePosition(value)
		if err != nil {
			return err
		}
		d.form.Position = p
	case FieldRelevantExperience:
		d.form.RelevantExperience = value
	case FieldPortfolioURL:
		d.form.PortfolioURL = value
	case FieldManagementExperience:
		d.form.ManagementExperience = value
	case FieldPreferredInterviewTime:
		d.form.PreferredInterviewTime = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// SetSkill checks or unchecks one skill.
// PRE: draft is Editing
// POST: only the named flag changes
func (d *Draft) SetSkill(skill Skill, checked bool) error {
	if _, ok := ParseSkill(string(skill)); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSkill, skill)
	}
	return d.UpdateField(string(skill), checkboxValue(checked))
}

// Submit validates the current values and stores the result. With no
// errors the draft becomes Submitted; that transition is one-way.
// PRE: none
// POST: Errors() equals the returned map; Submitted() is true iff it is empty
func (d *Draft) Submit() Errors {
	errs := Validate(d.form)
	d.errors = errs
	if len(errs) == 0 && !d.submitted {
		d.submitted = true
		d.submittedAt = timeNow()
	}
	return maps.Clone(errs)
}

// Summary returns the read-only echo of the submitted values.
// PRE: draft is Submitted
// POST: returns ErrNotSubmitted while Editing
func (d *Draft) Summary() ([]SummaryLine, error) {
	if !d.submitted {
		return nil, ErrNotSubmitted
	}
	return Summarize(d.form), nil
}

func parseChecked(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on", "true", "1", "checked":
		return true, nil
	case "", "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrInvalidChecked, v)
}

func checkboxValue(checked bool) string {
	if checked {
		return "on"
	}
	return ""
}
