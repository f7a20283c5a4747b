package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"jobapply/internal/domain/jobform"
)

// DraftStore defines the session store interface needed by application orchestrators.
type DraftStore interface {
	Create(ctx context.Context, d *jobform.Draft) (string, error)
	With(ctx context.Context, token string, fn func(*jobform.Draft) error) error
}

// SubmissionRecorder receives the outcome of every submit attempt.
type SubmissionRecorder interface {
	RecordSubmission(accepted bool, failedFields []string, took time.Duration)
}

// --- Start Application ---

// StartApplicationDeps holds dependencies for StartApplication.
type StartApplicationDeps struct {
	DraftStore DraftStore
	GenerateID func() string
	Now        func() time.Time
}

// StartApplicationResult carries the new session token and application reference.
type StartApplicationResult struct {
	Token     string
	Reference string
}

// ExecuteStartApplication opens an empty application in a new session.
// PRE: deps are non-nil
// POST: a Draft in Editing state is stored under the returned token
func ExecuteStartApplication(ctx context.Context, deps StartApplicationDeps) (StartApplicationResult, error) {
	draft := jobform.NewDraft(deps.GenerateID(), deps.Now())
	token, err := deps.DraftStore.Create(ctx, draft)
	if err != nil {
		return StartApplicationResult{}, fmt.Errorf("start application: %w", err)
	}
	slog.Info("application_started", "reference", draft.ID())
	return StartApplicationResult{Token: token, Reference: draft.ID()}, nil
}

// --- Update Field ---

// UpdateFieldInput carries a single change event from the form.
type UpdateFieldInput struct {
	Token string
	Name  string
	Value string
}

// UpdateFieldDeps holds dependencies for UpdateField.
type UpdateFieldDeps struct {
	DraftStore DraftStore
}

// ExecuteUpdateField applies one field change without validating.
// PRE: Token names a live session
// POST: the field is replaced; stored errors are unchanged
func ExecuteUpdateField(ctx context.Context, input UpdateFieldInput, deps UpdateFieldDeps) error {
	err := deps.DraftStore.With(ctx, input.Token, func(d *jobform.Draft) error {
		return d.UpdateField(input.Name, input.Value)
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", input.Name, err)
	}
	return nil
}

// --- Submit Application ---

// SubmitApplicationInput carries a full form post.
// Fields holds the scalar values by field name; Skills holds every
// checkbox, with unchecked boxes present as false.
type SubmitApplicationInput struct {
	Token  string
	Fields map[string]string
	Skills map[jobform.Skill]bool
}

// SubmitApplicationDeps holds dependencies for SubmitApplication.
type SubmitApplicationDeps struct {
	DraftStore DraftStore
	Recorder   SubmissionRecorder // optional: nil skips recording
}

// SubmitApplicationResult carries the outcome of one submit attempt.
type SubmitApplicationResult struct {
	Reference string
	Errors    jobform.Errors
	Submitted bool
}

// ExecuteSubmitApplication applies the posted values and submits the draft.
// Values are applied in display order, so position is known before the
// conditional fields are set. A value that cannot be applied aborts before
// validation.
// PRE: Token names a live session
// POST: draft holds the posted values; Submitted iff the returned Errors is empty
func ExecuteSubmitApplication(ctx context.Context, input SubmitApplicationInput, deps SubmitApplicationDeps) (SubmitApplicationResult, error) {
	start := time.Now()
	var result SubmitApplicationResult
	var position jobform.Position

	err := deps.DraftStore.With(ctx, input.Token, func(d *jobform.Draft) error {
		if !d.Submitted() {
			for _, name := range jobform.FieldOrder {
				value, ok := input.Fields[name]
				if !ok {
					continue
				}
				if err := d.UpdateField(name, value); err != nil {
					return err
				}
			}
			for _, skill := range jobform.Skills {
				if checked, ok := input.Skills[skill]; ok {
					if err := d.SetSkill(skill, checked); err != nil {
						return err
					}
				}
			}
		}
		result = SubmitApplicationResult{
			Reference: d.ID(),
			Errors:    d.Submit(),
			Submitted: d.Submitted(),
		}
		position = d.Form().Position
		return nil
	})
	if err != nil {
		return SubmitApplicationResult{}, fmt.Errorf("submit application: %w", err)
	}

	failed := result.Errors.Fields()
	if deps.Recorder != nil {
		deps.Recorder.RecordSubmission(result.Submitted, failed, time.Since(start))
	}
	if result.Submitted {
		slog.Info("application_submitted", "reference", result.Reference, "position", string(position))
	} else {
		slog.Info("application_rejected", "reference", result.Reference, "position", string(position), "failed_fields", failed)
	}
	return result, nil
}
