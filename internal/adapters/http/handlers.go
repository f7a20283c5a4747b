package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"jobapply/internal/adapters/http/middleware"
	"jobapply/internal/adapters/session"
	"jobapply/internal/application/orchestrators"
	"jobapply/internal/application/projections"
	"jobapply/internal/domain/jobform"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json_encode_failed", "error", err.Error())
	}
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// renderTemplate executes layout.html with the named page into a buffer,
// so a template failure still yields a clean 500.
func renderTemplate(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	funcMap := template.FuncMap{
		"csrfToken":      func() string { return csrf.Token(r) },
		"csrfField":      func() template.HTML { return csrf.TemplateField(r) },
		"renderMarkdown": renderMarkdown,
		"label":          func(field string) string { return jobform.Labels[field] },
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2 Jan 2006 15:04")
		},
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, fmt.Errorf("parse %s: %w", templateName, err))
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, fmt.Errorf("render %s: %w", templateName, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// submissionRecorder returns the perf collector as a recorder, or nil when
// no collector is configured.
func submissionRecorder() orchestrators.SubmissionRecorder {
	if perfCollector == nil {
		return nil
	}
	return perfCollector
}

// startApplication opens a new draft and points the session cookie at it.
func startApplication(w http.ResponseWriter, r *http.Request) (string, error) {
	deps := orchestrators.StartApplicationDeps{
		DraftStore: drafts,
		GenerateID: generateID,
		Now:        timeNow,
	}
	result, err := orchestrators.ExecuteStartApplication(r.Context(), deps)
	if err != nil {
		return "", err
	}
	middleware.SetSessionCookie(w, result.Token, int(options.SessionTTL.Seconds()), options.Production())
	return result.Token, nil
}

// currentToken returns the token of the caller's live draft, starting a new
// application when the cookie is missing or names an expired session.
func currentToken(w http.ResponseWriter, r *http.Request) (string, error) {
	if token, ok := middleware.TokenFromContext(r.Context()); ok {
		err := drafts.With(r.Context(), token, func(*jobform.Draft) error { return nil })
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, session.ErrNotFound) {
			return "", err
		}
	}
	return startApplication(w, r)
}

// statusForDraftError maps domain errors from a draft update to a status code.
func statusForDraftError(err error) int {
	switch {
	case errors.Is(err, jobform.ErrSubmitted):
		return http.StatusConflict
	case errors.Is(err, jobform.ErrUnknownField),
		errors.Is(err, jobform.ErrInvalidPosition),
		errors.Is(err, jobform.ErrUnknownSkill),
		errors.Is(err, jobform.ErrInvalidChecked):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// handleRoot redirects the bare root to the form and 404s everything else.
func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/apply", http.StatusSeeOther)
}

// handleApply handles both GET (render) and POST (full-form submit) for /apply
func handleApply(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		handleGetApply(w, r)
	case http.MethodPost:
		handlePostApply(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func handleGetApply(w http.ResponseWriter, r *http.Request) {
	token, err := currentToken(w, r)
	if err != nil {
		internalError(w, err)
		return
	}
	result, err := projections.QueryGetApplication(r.Context(), projections.GetApplicationQuery{Token: token}, projections.GetApplicationDeps{DraftStore: drafts})
	if err != nil {
		internalError(w, err)
		return
	}
	renderApplication(w, r, http.StatusOK, result)
}

// renderApplication shows the summary once submitted and the editable form otherwise.
func renderApplication(w http.ResponseWriter, r *http.Request, status int, result projections.GetApplicationResult) {
	data := map[string]any{
		"App":   result,
		"Intro": options.Intro,
	}
	if result.Submitted {
		renderTemplate(w, r, status, "summary.html", data)
		return
	}
	renderTemplate(w, r, status, "form.html", data)
}

// parseSubmission reads a full-form post. Every scalar field present in the
// body is applied; checkboxes absent from the body are unchecked.
func parseSubmission(r *http.Request, token string) (orchestrators.SubmitApplicationInput, error) {
	if err := r.ParseForm(); err != nil {
		return orchestrators.SubmitApplicationInput{}, err
	}
	input := orchestrators.SubmitApplicationInput{
		Token:  token,
		Fields: make(map[string]string),
		Skills: make(map[jobform.Skill]bool, len(jobform.Skills)),
	}
	for _, name := range jobform.FieldOrder {
		if name == jobform.FieldAdditionalSkills {
			continue
		}
		if r.PostForm.Has(name) {
			input.Fields[name] = r.PostForm.Get(name)
		}
	}
	for _, s := range jobform.Skills {
		input.Skills[s] = r.PostForm.Has(string(s))
	}
	return input, nil
}

func handlePostApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	isHTML := isHTMLRequest(r)

	token, err := currentToken(w, r)
	if err != nil {
		internalError(w, err)
		return
	}
	input, err := parseSubmission(r, token)
	if err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	deps := orchestrators.SubmitApplicationDeps{
		DraftStore: drafts,
		Recorder:   submissionRecorder(),
	}
	result, err := orchestrators.ExecuteSubmitApplication(ctx, input, deps)
	if err != nil {
		if status := statusForDraftError(err); status != http.StatusInternalServerError {
			http.Error(w, err.Error(), status)
			return
		}
		internalError(w, err)
		return
	}

	if result.Submitted {
		http.Redirect(w, r, "/apply", http.StatusSeeOther)
		return
	}

	if !isHTML {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"reference": result.Reference,
			"errors":    result.Errors,
		})
		return
	}
	view, err := projections.QueryGetApplication(ctx, projections.GetApplicationQuery{Token: token}, projections.GetApplicationDeps{DraftStore: drafts})
	if err != nil {
		internalError(w, err)
		return
	}
	renderApplication(w, r, http.StatusUnprocessableEntity, view)
}

// handleApplyField applies one change event posted by the form script.
func handleApplyField(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	token, err := currentToken(w, r)
	if err != nil {
		internalError(w, err)
		return
	}

	input := orchestrators.UpdateFieldInput{
		Token: token,
		Name:  r.PostForm.Get("name"),
		Value: r.PostForm.Get("value"),
	}
	if err := orchestrators.ExecuteUpdateField(r.Context(), input, orchestrators.UpdateFieldDeps{DraftStore: drafts}); err != nil {
		if status := statusForDraftError(err); status != http.StatusInternalServerError {
			http.Error(w, err.Error(), status)
			return
		}
		internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleApplyNew discards the caller's draft and starts over.
func handleApplyNew(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if token, ok := middleware.TokenFromContext(r.Context()); ok {
		drafts.Delete(r.Context(), token)
	}
	if _, err := startApplication(w, r); err != nil {
		internalError(w, err)
		return
	}
	http.Redirect(w, r, "/apply", http.StatusSeeOther)
}

// applicationResponse is the JSON shape of GET /api/application.
type applicationResponse struct {
	Reference   string                `json:"reference"`
	Submitted   bool                  `json:"submitted"`
	StartedAt   time.Time             `json:"startedAt"`
	SubmittedAt *time.Time            `json:"submittedAt,omitempty"`
	Position    string                `json:"position"`
	Applicable  []string              `json:"applicableFields"`
	Values      map[string]string     `json:"values"`
	Skills      []string              `json:"additionalSkills"`
	Errors      map[string]string     `json:"errors"`
	Summary     []summaryLineResponse `json:"summary,omitempty"`
}

type summaryLineResponse struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Value string `json:"value"`
}

func handleApplicationAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	token, err := currentToken(w, r)
	if err != nil {
		internalError(w, err)
		return
	}
	result, err := projections.QueryGetApplication(r.Context(), projections.GetApplicationQuery{Token: token}, projections.GetApplicationDeps{DraftStore: drafts})
	if err != nil {
		internalError(w, err)
		return
	}

	resp := applicationResponse{
		Reference:  result.Reference,
		Submitted:  result.Submitted,
		StartedAt:  result.StartedAt,
		Position:   result.Position,
		Applicable: result.Applicable,
		Values:     make(map[string]string, len(result.Fields)),
		Skills:     []string{},
		Errors:     map[string]string{},
	}
	if result.Submitted {
		at := result.SubmittedAt
		resp.SubmittedAt = &at
	}
	for name, f := range result.Fields {
		resp.Values[name] = f.Value
	}
	for _, s := range result.Skills {
		if s.Checked {
			resp.Skills = append(resp.Skills, s.Name)
		}
	}
	for field, msg := range result.Errors {
		resp.Errors[field] = msg
	}
	for _, line := range result.Summary {
		resp.Summary = append(resp.Summary, summaryLineResponse{Field: line.Field, Label: line.Label, Value: line.Value})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePerfAPI returns the last hour of request timings and submit outcomes.
func handlePerfAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if perfCollector == nil {
		http.Error(w, "perf collector disabled", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(timeNow().Add(-time.Hour), 10))
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
