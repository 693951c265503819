package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"campdesk/internal/application/format"
	"campdesk/internal/application/projections"
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

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeFieldErrors reports per-field validation messages as a 422.
func writeFieldErrors(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error":  "validation failed",
		"fields": fields,
	})
}

// isForm reports whether the request carries a form-encoded body.
func isForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}

// parseRequestForm parses the body as urlencoded or multipart, whichever the
// request carries. ParseForm alone skips multipart values.
func parseRequestForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxUploadBytes)
	}
	return r.ParseForm()
}

const templatesDir = "internal/adapters/http/templates"

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	funcMap := template.FuncMap{
		"csrfToken":       func() string { return csrf.Token(r) },
		"eur":             format.EUR,
		"date":            format.Date,
		"isoDate":         format.ISODate,
		"add":             func(a, b int) int { return a + b },
		"sub":             func(a, b int) int { return a - b },
		"renderMarkdown":  renderMarkdown,
		"sortHeaderArgs":  sortHeaderArgs,
		"paginationQuery": paginationQuery,
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// renderMarkdown converts newsletter markdown to HTML. Raw HTML in the
// input stays escaped since mdRenderer is built without WithUnsafe.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// sortHeaderArgs packages the data the shared sortHeader template block
// needs to render one clickable column header.
func sortHeaderArgs(col, label, activeSort, activeDir, search, status string, perPage int) map[string]string {
	nextDir := "asc"
	if col == activeSort && activeDir == "asc" {
		nextDir = "desc"
	}
	return map[string]string{
		"Col": col, "Label": label,
		"ActiveSort": activeSort, "ActiveDir": activeDir, "NextDir": nextDir,
		"Search": search, "Status": status,
		"PerPage": strconv.Itoa(perPage),
	}
}

// paginationQuery builds the query string for a pagination link, carrying
// the active sort and filters along to the target page.
func paginationQuery(page int, sort, dir, search, status string, perPage int) template.URL {
	q := url.Values{"page": {strconv.Itoa(page)}}
	if sort != "" {
		q.Set("sort", sort)
		q.Set("dir", dir)
	}
	if search != "" {
		q.Set("q", search)
	}
	if status != "" {
		q.Set("status", status)
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	return template.URL(q.Encode())
}

// parseCents reads a euro amount typed as "145.50" or "145,50" into cents.
// A bare integer is taken as whole euros.
func parseCents(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, nil
	}
	whole, frac, found := strings.Cut(s, ".")
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if !found {
		return units * 100, nil
	}
	if len(frac) > 2 {
		frac = frac[:2]
	}
	for len(frac) < 2 {
		frac += "0"
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if units < 0 {
		return units*100 - cents, nil
	}
	return units*100 + cents, nil
}

// parseDay reads a YYYY-MM-DD form value, tolerating emptiness.
func parseDay(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// handleHealthz answers liveness probes.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDashboard handles GET /, the landing screen with operational
// counts and the backend revenue summary.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	deps := projections.DashboardDeps{
		SessionStore:     stores.SessionStore,
		RequestStore:     stores.RequestStore,
		InvoiceStore:     stores.InvoiceStore,
		TransactionStore: stores.TransactionStore,
		Invoker:          invoker,
	}
	result, err := projections.QueryGetDashboard(r.Context(), deps)
	if err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		renderTemplate(w, r, "dashboard.html", result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
