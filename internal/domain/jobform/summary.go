package jobform

import "strings"

// SummaryLine is one "Label: value" row of the submitted application.
type SummaryLine struct {
	Field string
	Label string
	Value string
}

// Summarize lists the fields that apply to f.Position with their values.
// Skills are joined with ", " in display order.
// INVARIANT: shows exactly the fields Validate checks for this position
func Summarize(f Form) []SummaryLine {
	fields := f.Position.ApplicableFields()
	lines := make([]SummaryLine, 0, len(fields))
	for _, field := range fields {
		var value string
		if field == FieldAdditionalSkills {
			names := make([]string, 0, len(Skills))
			for _, s := range f.SelectedSkills() {
				names = append(names, string(s))
			}
			value = strings.Join(names, ", ")
		} else {
			value, _ = f.Value(field)
		}
		lines = append(lines, SummaryLine{Field: field, Label: Labels[field], Value: value})
	}
	return lines
}
