package projections

import (
	"context"
	"time"

	"jobapply/internal/domain/jobform"
)

// GetApplicationQuery carries query parameters.
type GetApplicationQuery struct {
	Token string
}

// FieldView is one input of the editable form.
type FieldView struct {
	Name  string
	Label string
	Value string
	Error string
}

// OptionView is one option of the position select.
type OptionView struct {
	Value    string
	Label    string
	Selected bool
}

// SkillView is one checkbox of the skills group.
type SkillView struct {
	Name    string
	Checked bool
}

// GetApplicationResult carries everything needed to render either view.
// Fields lists only the inputs that apply to the current position.
type GetApplicationResult struct {
	Reference   string
	Submitted   bool
	StartedAt   time.Time
	SubmittedAt time.Time
	Position    string
	Positions   []OptionView
	Fields      map[string]FieldView
	Applicable  []string
	Skills      []SkillView
	SkillsError string
	Errors      jobform.Errors
	Summary     []jobform.SummaryLine
}

// Applies reports whether the named input is shown.
func (r GetApplicationResult) Applies(field string) bool {
	_, ok := r.Fields[field]
	return ok
}

// GetApplicationDeps holds dependencies for GetApplication.
type GetApplicationDeps struct {
	DraftStore DraftReader
}

// QueryGetApplication builds the view of one application session.
// PRE: Token names a live session
// POST: Summary is set iff Submitted; Fields and Errors reflect the last event
func QueryGetApplication(ctx context.Context, query GetApplicationQuery, deps GetApplicationDeps) (GetApplicationResult, error) {
	var result GetApplicationResult
	err := deps.DraftStore.With(ctx, query.Token, func(d *jobform.Draft) error {
		result = buildApplicationResult(d)
		return nil
	})
	if err != nil {
		return GetApplicationResult{}, err
	}
	return result, nil
}

func buildApplicationResult(d *jobform.Draft) GetApplicationResult {
	form := d.Form()
	errs := d.Errors()

	result := GetApplicationResult{
		Reference:   d.ID(),
		Submitted:   d.Submitted(),
		StartedAt:   d.StartedAt(),
		SubmittedAt: d.SubmittedAt(),
		Position:    string(form.Position),
		Fields:      make(map[string]FieldView),
		Applicable:  form.Position.ApplicableFields(),
		Errors:      errs,
		SkillsError: errs[jobform.FieldAdditionalSkills],
	}

	result.Positions = append(result.Positions, OptionView{
		Value: "", Label: "Select a position", Selected: form.Position == jobform.PositionNone,
	})
	for _, p := range jobform.Positions {
		result.Positions = append(result.Positions, OptionView{
			Value: string(p), Label: string(p), Selected: form.Position == p,
		})
	}

	for _, name := range result.Applicable {
		value, ok := form.Value(name)
		if !ok {
			continue
		}
		result.Fields[name] = FieldView{
			Name:  name,
			Label: jobform.Labels[name],
			Value: value,
			Error: errs[name],
		}
	}

	for _, s := range jobform.Skills {
		result.Skills = append(result.Skills, SkillView{Name: string(s), Checked: form.AdditionalSkills[s]})
	}

	if summary, err := d.Summary(); err == nil {
		result.Summary = summary
	}
	return result
}
