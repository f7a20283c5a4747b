package jobform

import (
	"regexp"
)

// space is the browser whitespace class, which unlike RE2's \s includes \v
// and the Unicode space separators.
const space = `\t\n\v\f\r \x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}`

var (
	// Unanchored: any nonspace@nonspace.nonspace run inside the value passes.
	emailPattern = regexp.MustCompile(`[^` + space + `]+@[^` + space + `]+\.[^` + space + `]+`)

	portfolioPattern = regexp.MustCompile(`^https?://[^` + space + `$.?#][^\n\r\x{2028}\x{2029}][^` + space + `]*$`)
)

// Errors maps a field name to the message shown beneath it.
// A field without a key is valid.
type Errors map[string]string

// Has reports whether field failed validation.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Fields returns the failing field names in display order.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for _, f := range FieldOrder {
		if e.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks every rule against f and collects one message per failing field.
// Rules do not short-circuit across fields; fields that do not apply to the
// selected position are never checked.
// PRE: none
// POST: returns a new non-nil map; empty means f is valid
// INVARIANT: f is not mutated; equal forms give equal results
func Validate(f Form) Errors {
	errs := Errors{}

	if f.FullName == "" {
		errs[FieldFullName] = required(FieldFullName)
	}

	if f.Email == "" {
		errs[FieldEmail] = required(FieldEmail)
	} else if !emailPattern.MatchString(f.Email) {
		errs[FieldEmail] = invalid(FieldEmail)
	}

	if f.PhoneNumber == "" {
		errs[FieldPhoneNumber] = required(FieldPhoneNumber)
	} else if _, ok := looseNumber(f.PhoneNumber); !ok {
		errs[FieldPhoneNumber] = Labels[FieldPhoneNumber] + " must be a valid number"
	}

	if f.Position.Applies(FieldRelevantExperience) {
		if f.RelevantExperience == "" {
			errs[FieldRelevantExperience] = required(FieldRelevantExperience)
		} else if n, ok := looseNumber(f.RelevantExperience); !ok || n <= 0 {
			errs[FieldRelevantExperience] = Labels[FieldRelevantExperience] + " must be a number greater than 0"
		}
	}

	if f.Position.Applies(FieldPortfolioURL) {
		if f.PortfolioURL == "" {
			errs[FieldPortfolioURL] = required(FieldPortfolioURL)
		} else if !portfolioPattern.MatchString(f.PortfolioURL) {
			errs[FieldPortfolioURL] = invalid(FieldPortfolioURL)
		}
	}

	if f.Position.Applies(FieldManagementExperience) && f.ManagementExperience == "" {
		errs[FieldManagementExperience] = required(FieldManagementExperience)
	}

	if !f.HasSkill() {
		errs[FieldAdditionalSkills] = "At least one skill must be selected"
	}

	if f.PreferredInterviewTime == "" {
		errs[FieldPreferredInterviewTime] = required(FieldPreferredInterviewTime)
	}

	return errs
}

func required(field string) string {
	return Labels[field] + " is required"
}

func invalid(field string) string {
	return Labels[field] + " is invalid"
}
