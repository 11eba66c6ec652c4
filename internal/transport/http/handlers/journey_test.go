package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"peopleops/internal/app/server"
	"peopleops/internal/auth"
	"peopleops/internal/platform/config"
)

const testPassword = "Journey123!"

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

func newTestApp(t *testing.T) (*server.App, *httptest.Server) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		TokenTTL:           time.Hour,
		DataEncryptionKey:  "0123456789abcdef0123456789abcdef",
		Environment:        "test",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		RunMigrations:      true,
		MigrationsDir:      migrationsDir(t),
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		MaxUploadBytes:     10 * 1024 * 1024,
		BlobDir:            t.TempDir(),
		RateLimitPerMinute: 1000,
	}

	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return app, ts
}

func migrationsDir(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to resolve working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "migrations")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("module root not found")
		}
		dir = parent
	}
}

func createPrincipal(t *testing.T, app *server.App, email, role, managerID string) string {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	var id string
	err = app.DB.QueryRow(context.Background(), `
    INSERT INTO principals (email, first_name, last_name, role, manager_id, status, password_hash)
    VALUES ($1,$2,$3,$4,NULLIF($5,'')::uuid,'active',$6)
    RETURNING id
  `, email, "Journey", "Tester", role, managerID, hash).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create principal: %v", err)
	}
	return id
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

func TestOnboardingDocumentVerificationActivatesEmployee(t *testing.T) {
	app, ts := newTestApp(t)
	client := ts.Client()
	admin := login(t, client, ts.URL, "admin@test.local", "ChangeMe123!")

	principalID := createPrincipal(t, app, uniqueEmail("onboard"), "employee", "")

	resp := postJSON(t, client, ts.URL+"/api/v1/employees", admin, map[string]any{
		"principalId": principalID,
		"jobTitle":    "Analyst",
	})
	profile := decodeObject(t, resp)
	profileID, _ := profile["id"].(string)
	if profileID == "" {
		t.Fatal("expected profile id")
	}
	if profile["status"] != "onboarding" {
		t.Fatalf("expected onboarding status, got %v", profile["status"])
	}

	doc1 := uploadDocument(t, client, ts.URL, admin, "file", "contract.pdf", map[string]string{
		"employeeProfileId": profileID,
		"category":          "contract",
	})
	doc2 := uploadDocument(t, client, ts.URL, admin, "document", "id-card.pdf", map[string]string{
		"employeeProfileId": profileID,
		"category":          "onboarding",
	})
	if doc1["verification"] != "pending" || doc2["verification"] != "pending" {
		t.Fatalf("expected onboarding uploads to start pending, got %v / %v", doc1["verification"], doc2["verification"])
	}

	first := decodeObject(t, postJSON(t, client, ts.URL+"/api/v1/documents/"+doc1["id"].(string)+"/verify", admin, map[string]any{}))
	if first["employeeActivated"] != false {
		t.Fatal("activation must wait for the last pending document")
	}

	second := decodeObject(t, postJSON(t, client, ts.URL+"/api/v1/documents/"+doc2["id"].(string)+"/verify", admin, map[string]any{}))
	if second["employeeActivated"] != true {
		t.Fatal("verifying the last pending document must activate the profile")
	}

	updated := decodeObject(t, getJSON(t, client, ts.URL+"/api/v1/employees/"+profileID, admin))
	if updated["status"] != "active" {
		t.Fatalf("expected active profile, got %v", updated["status"])
	}

	history := decodeList(t, getJSON(t, client, ts.URL+"/api/v1/employees/"+profileID+"/history", admin))
	found := false
	for _, entry := range history {
		if entry["fromStatus"] == "onboarding" && entry["toStatus"] == "active" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an onboarding to active history entry")
	}
}

func TestDocumentVersioningAndShareIdempotence(t *testing.T) {
	app, ts := newTestApp(t)
	client := ts.Client()
	admin := login(t, client, ts.URL, "admin@test.local", "ChangeMe123!")

	targetID := createPrincipal(t, app, uniqueEmail("share-target"), "employee", "")

	doc := uploadDocument(t, client, ts.URL, admin, "file", "handbook.pdf", map[string]string{
		"category": "general",
	})
	docID := doc["id"].(string)
	if version(t, doc) != 1 {
		t.Fatalf("expected version 1 on upload, got %v", doc["version"])
	}

	doc = decodeObject(t, putJSON(t, client, ts.URL+"/api/v1/documents/"+docID, admin, map[string]any{
		"fileName": "handbook-v2.pdf",
	}))
	if version(t, doc) != 2 {
		t.Fatalf("expected metadata update to bump version to 2, got %v", doc["version"])
	}

	doc = decodeObject(t, postJSON(t, client, ts.URL+"/api/v1/documents/"+docID+"/shares", admin, map[string]any{
		"principalId": targetID,
		"permission":  "view",
	}))
	if version(t, doc) != 3 {
		t.Fatalf("expected new share to bump version to 3, got %v", doc["version"])
	}

	// A duplicate grant is a no-op: the existing level survives and version
	// does not move.
	doc = decodeObject(t, postJSON(t, client, ts.URL+"/api/v1/documents/"+docID+"/shares", admin, map[string]any{
		"principalId": targetID,
		"permission":  "edit",
	}))
	if version(t, doc) != 3 {
		t.Fatalf("duplicate grant must not bump version, got %v", doc["version"])
	}
	if got := sharePermission(t, doc, targetID); got != "view" {
		t.Fatalf("duplicate grant must keep the original level, got %s", got)
	}

	doc = decodeObject(t, putJSON(t, client, ts.URL+"/api/v1/documents/"+docID+"/shares/"+targetID, admin, map[string]any{
		"permission": "edit",
	}))
	if version(t, doc) != 4 {
		t.Fatalf("expected share update to bump version to 4, got %v", doc["version"])
	}
	if got := sharePermission(t, doc, targetID); got != "edit" {
		t.Fatalf("expected updated level edit, got %s", got)
	}

	doc = decodeObject(t, deleteJSON(t, client, ts.URL+"/api/v1/documents/"+docID+"/shares/"+targetID, admin))
	if version(t, doc) != 5 {
		t.Fatalf("expected unshare to bump version to 5, got %v", doc["version"])
	}
	if _, ok := doc["shares"]; ok {
		t.Fatal("expected no remaining shares")
	}
}

func TestDuplicateAppraisalSlot(t *testing.T) {
	app, ts := newTestApp(t)
	client := ts.Client()
	admin := login(t, client, ts.URL, "admin@test.local", "ChangeMe123!")

	employeeID := createPrincipal(t, app, uniqueEmail("appraisee"), "employee", "")
	payload := map[string]any{
		"employeeId":    employeeID,
		"appraisalDate": "2026-06-30T00:00:00Z",
		"goals":         []map[string]any{{"title": "ship the migration", "weightage": 100}},
	}

	first := decodeObject(t, postJSON(t, client, ts.URL+"/api/v1/appraisals", admin, payload))
	firstID, _ := first["id"].(string)
	if firstID == "" {
		t.Fatal("expected appraisal id")
	}

	postJSONStatus(t, client, ts.URL+"/api/v1/appraisals", admin, payload, http.StatusConflict)

	// Cancelling frees the (employee, date) slot.
	postJSON(t, client, ts.URL+"/api/v1/appraisals/"+firstID+"/cancel", admin, map[string]any{})
	replacement := decodeObject(t, postJSON(t, client, ts.URL+"/api/v1/appraisals", admin, payload))
	if replacement["id"] == firstID {
		t.Fatal("expected a fresh appraisal after cancellation")
	}
}

func TestReviewCompletesAppraisalOnce(t *testing.T) {
	app, ts := newTestApp(t)
	client := ts.Client()
	admin := login(t, client, ts.URL, "admin@test.local", "ChangeMe123!")

	employeeEmail := uniqueEmail("reviewee")
	employeeID := createPrincipal(t, app, employeeEmail, "employee", "")

	created := decodeObject(t, postJSON(t, client, ts.URL+"/api/v1/appraisals", admin, map[string]any{
		"employeeId":    employeeID,
		"appraisalDate": "2026-07-15T00:00:00Z",
		"goals":         []map[string]any{{"title": "close the audit findings", "weightage": 100}},
	}))
	appraisalID := created["id"].(string)

	employee := login(t, client, ts.URL, employeeEmail, testPassword)
	postJSON(t, client, ts.URL+"/api/v1/appraisals/"+appraisalID+"/self-assessment", employee, map[string]any{
		"text": "closed all findings ahead of schedule",
	})

	completed := decodeObject(t, postJSON(t, client, ts.URL+"/api/v1/appraisals/"+appraisalID+"/review", admin, map[string]any{
		"review": "strong year",
		"rating": 4,
	}))
	if completed["status"] != "completed" {
		t.Fatalf("expected completed, got %v", completed["status"])
	}
	if rating(t, completed, "manualRating") != 4 {
		t.Fatalf("expected manual rating 4, got %v", completed["manualRating"])
	}

	// A second review loses the status guard and must not touch the stored
	// rating.
	postJSONStatus(t, client, ts.URL+"/api/v1/appraisals/"+appraisalID+"/review", admin, map[string]any{
		"review": "revised opinion",
		"rating": 2,
	}, http.StatusConflict)

	after := decodeObject(t, getJSON(t, client, ts.URL+"/api/v1/appraisals/"+appraisalID, admin))
	if rating(t, after, "manualRating") != 4 {
		t.Fatalf("rejected review must leave the rating at 4, got %v", after["manualRating"])
	}
}

func TestManagerScopeOnWarnings(t *testing.T) {
	app, ts := newTestApp(t)
	client := ts.Client()

	managerEmail := uniqueEmail("manager")
	managerID := createPrincipal(t, app, managerEmail, "manager", "")
	reportID := createPrincipal(t, app, uniqueEmail("report"), "employee", managerID)

	manager := login(t, client, ts.URL, managerEmail, testPassword)

	team := decodeList(t, getJSON(t, client, ts.URL+"/api/v1/employees/team", manager))
	foundReport := false
	for _, member := range team {
		if member["id"] == reportID {
			foundReport = true
		}
	}
	if !foundReport {
		t.Fatal("expected the direct report in the manager's team listing")
	}

	created := decodeObject(t, postJSON(t, client, ts.URL+"/api/v1/warnings", manager, map[string]any{
		"employeeId":  reportID,
		"severity":    "high",
		"subject":     "missed shifts",
		"description": "three unexcused absences in july",
		"dateIssued":  "2026-08-01",
		"validUntil":  "2027-08-01",
	}))
	warningID := created["id"].(string)

	escalated := decodeObject(t, postJSON(t, client, ts.URL+"/api/v1/warnings/"+warningID+"/escalate", manager, map[string]any{}))
	if escalated["escalated"] != true {
		t.Fatal("expected warning to be escalated")
	}
	firstEscalation, _ := escalated["escalationDate"].(string)
	if firstEscalation == "" {
		t.Fatal("expected escalation date")
	}

	// Escalation is one-shot: the second attempt is rejected and the original
	// escalation date stands.
	postJSONStatus(t, client, ts.URL+"/api/v1/warnings/"+warningID+"/escalate", manager, map[string]any{}, http.StatusConflict)
	after := decodeObject(t, getJSON(t, client, ts.URL+"/api/v1/warnings/"+warningID, manager))
	if after["escalationDate"] != firstEscalation {
		t.Fatalf("escalation date moved from %s to %v", firstEscalation, after["escalationDate"])
	}

	resolved := decodeObject(t, postJSON(t, client, ts.URL+"/api/v1/warnings/"+warningID+"/resolve", manager, map[string]any{
		"note": "attendance back on track",
	}))
	if resolved["status"] != "resolved" {
		t.Fatalf("expected resolved, got %v", resolved["status"])
	}

	// Withdrawal stays with elevated roles.
	second := decodeObject(t, postJSON(t, client, ts.URL+"/api/v1/warnings", manager, map[string]any{
		"employeeId":  reportID,
		"severity":    "low",
		"subject":     "late reports",
		"dateIssued":  "2026-08-10",
		"validUntil":  "2027-02-10",
	}))
	postJSONStatus(t, client, ts.URL+"/api/v1/warnings/"+second["id"].(string)+"/withdraw", manager, map[string]any{
		"reason": "filed in error",
	}, http.StatusForbidden)
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	payload := decodeObject(t, resp)
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func uploadDocument(t *testing.T, client *http.Client, baseURL, token, field, filename string, fields map[string]string) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create part: %v", err)
	}
	if _, err := part.Write([]byte("%PDF-1.4 journey")); err != nil {
		t.Fatalf("failed to write part: %v", err)
	}
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field %s: %v", key, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/documents", &buf)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return decodeObject(t, doRequest(t, client, req, 0))
}

func version(t *testing.T, doc map[string]any) int {
	t.Helper()
	v, ok := doc["version"].(float64)
	if !ok {
		t.Fatalf("expected numeric version, got %v", doc["version"])
	}
	return int(v)
}

func rating(t *testing.T, payload map[string]any, key string) float64 {
	t.Helper()
	v, ok := payload[key].(float64)
	if !ok {
		t.Fatalf("expected numeric %s, got %v", key, payload[key])
	}
	return v
}

func sharePermission(t *testing.T, doc map[string]any, principalID string) string {
	t.Helper()
	shares, _ := doc["shares"].([]any)
	for _, raw := range shares {
		share, _ := raw.(map[string]any)
		if share["principalId"] == principalID {
			perm, _ := share["permission"].(string)
			return perm
		}
	}
	t.Fatalf("no share for principal %s", principalID)
	return ""
}

func decodeObject(t *testing.T, env envelope) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode object payload: %v", err)
	}
	return payload
}

func decodeList(t *testing.T, env envelope) []map[string]any {
	t.Helper()
	var payload []map[string]any
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode list payload: %v", err)
	}
	return payload
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	return jsonRequest(t, client, http.MethodPost, url, token, body, 0)
}

func postJSONStatus(t *testing.T, client *http.Client, url, token string, body any, want int) envelope {
	t.Helper()
	return jsonRequest(t, client, http.MethodPost, url, token, body, want)
}

func putJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	return jsonRequest(t, client, http.MethodPut, url, token, body, 0)
}

func deleteJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	return jsonRequest(t, client, http.MethodDelete, url, token, nil, 0)
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	return jsonRequest(t, client, http.MethodGet, url, token, nil, 0)
}

// jsonRequest issues the call and decodes the envelope. want == 0 asserts any
// success status; a non-zero want asserts that exact status.
func jsonRequest(t *testing.T, client *http.Client, method, url, token string, body any, want int) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return doRequest(t, client, req, want)
}

func doRequest(t *testing.T, client *http.Client, req *http.Request, want int) envelope {
	t.Helper()
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if want == 0 && resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	if want != 0 && resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}
