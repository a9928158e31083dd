package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Auth   string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Body:   body.String(),
			Auth:   r.Header.Get("Authorization"),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(404)
		w.Write([]byte(`{"error":{"message":"not found","type":"not_found"}}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		creds:      credentials{Token: "test-token", UserID: "user-1"},
		httpClient: ts.server.Client(),
	}
}

func stubClients(t *testing.T, ts *testServer) {
	t.Helper()
	oldAPI, oldAnon := newAPIClient, newAnonClient
	t.Cleanup(func() {
		newAPIClient, newAnonClient = oldAPI, oldAnon
	})
	newAPIClient = func() (*apiClient, error) { return ts.client(), nil }
	newAnonClient = func() (*apiClient, error) {
		c := ts.client()
		c.creds = credentials{}
		return c, nil
	}
}

func TestRegisterCommand_SavesSession(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	ts := newTestServer(t, map[string]string{
		"POST /auth/register": `{"token":"jwt-abc","user":{"id":"user-9","email":"amina@example.com","user_type":"jobSeeker"}}`,
	})
	stubClients(t, ts)

	defer rootCmd.SetArgs(nil)
	rootCmd.SetArgs([]string{
		"register",
		"--email", "amina@example.com",
		"--password", "hunter22",
		"--name", "Amina",
		"--role", "seeker",
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(ts.requests[0].Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["user_type"] != "jobSeeker" {
		t.Errorf("body.user_type = %v, want jobSeeker", body["user_type"])
	}
	if ts.requests[0].Auth != "" {
		t.Errorf("register should not send auth, got %q", ts.requests[0].Auth)
	}

	creds, err := loadCredentials()
	if err != nil {
		t.Fatalf("loading saved session: %v", err)
	}
	if creds.Token != "jwt-abc" {
		t.Errorf("token = %q, want jwt-abc", creds.Token)
	}
	if creds.UserID != "user-9" {
		t.Errorf("user id = %q, want user-9", creds.UserID)
	}
	if creds.Role != "jobSeeker" {
		t.Errorf("role = %q, want jobSeeker", creds.Role)
	}
}

func TestRegisterCommand_BadRole(t *testing.T) {
	ts := newTestServer(t, map[string]string{})
	stubClients(t, ts)

	defer rootCmd.SetArgs(nil)
	rootCmd.SetArgs([]string{"register", "--email", "a@b.co", "--password", "hunter22", "--role", "wizard"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for bad role")
	}
	if !strings.Contains(err.Error(), "seeker or provider") {
		t.Errorf("error = %q, want it to mention valid roles", err.Error())
	}
	if len(ts.requests) != 0 {
		t.Errorf("expected no requests, got %d", len(ts.requests))
	}
}

func TestLoginCommand_MissingFlags(t *testing.T) {
	ts := newTestServer(t, map[string]string{})
	stubClients(t, ts)

	defer rootCmd.SetArgs(nil)
	rootCmd.SetArgs([]string{"login"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing flags")
	}
	if !strings.Contains(err.Error(), "required") {
		t.Errorf("error = %q, want it to mention 'required'", err.Error())
	}
}

func TestJobsListCommand_BuildsFilterQuery(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /jobs": `[]`,
	})
	stubClients(t, ts)

	defer rootCmd.SetArgs(nil)
	rootCmd.SetArgs([]string{"jobs", "list", "--category", "plumbing", "--max-budget", "400"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	path := ts.requests[0].Path
	if !strings.Contains(path, "category=plumbing") {
		t.Errorf("path = %q, want category filter", path)
	}
	if !strings.Contains(path, "max_budget=400") {
		t.Errorf("path = %q, want max_budget filter", path)
	}
	if ts.requests[0].Auth != "" {
		t.Errorf("browse should not send auth, got %q", ts.requests[0].Auth)
	}
}

func TestSelectCommand_SendsPatch(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"PATCH /jobs/job-1": `{"id":"job-1","status":"in-progress","selected_applicant_id":"user-2"}`,
	})
	stubClients(t, ts)

	defer rootCmd.SetArgs(nil)
	rootCmd.SetArgs([]string{"select", "job-1", "user-2"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	r := ts.requests[0]
	if r.Method != "PATCH" {
		t.Errorf("method = %q, want PATCH", r.Method)
	}
	if r.Auth != "Bearer test-token" {
		t.Errorf("auth = %q, want Bearer test-token", r.Auth)
	}

	var body map[string]string
	if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["status"] != "in-progress" {
		t.Errorf("body.status = %q, want in-progress", body["status"])
	}
	if body["selected_applicant_id"] != "user-2" {
		t.Errorf("body.selected_applicant_id = %q, want user-2", body["selected_applicant_id"])
	}
}

func TestCompleteCommand_Conflict(t *testing.T) {
	ts := &testServer{}
	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(409)
		w.Write([]byte(`{"error":{"message":"cannot update job: invalid status transition","type":"conflict"}}`))
	}))
	t.Cleanup(ts.server.Close)
	stubClients(t, ts)

	defer rootCmd.SetArgs(nil)
	rootCmd.SetArgs([]string{"complete", "job-1"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for 409 response")
	}
	if !strings.Contains(err.Error(), "409") {
		t.Errorf("error = %q, want it to contain '409'", err.Error())
	}
}

func TestRateCommand_RequiresJob(t *testing.T) {
	ts := newTestServer(t, map[string]string{})
	stubClients(t, ts)

	defer rootCmd.SetArgs(nil)
	rootCmd.SetArgs([]string{"rate", "user-2", "--score", "5"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing --job")
	}
	if !strings.Contains(err.Error(), "--job") {
		t.Errorf("error = %q, want it to mention --job", err.Error())
	}
}

func TestApplicationsCommand_UsesSessionUser(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /users/user-1/applications": `[{"id":"0b3f6b3c-9d27-4c1e-9d55-1f4c2a7e8a01","job_id":"7e2a4d9f-5c10-4b8a-bb61-0d9e3f6c2b44","user_id":"user-1","applied_date":"2026-08-01T10:00:00Z","status":"pending"}]`,
	})
	stubClients(t, ts)

	defer rootCmd.SetArgs(nil)
	rootCmd.SetArgs([]string{"applications"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	if got := ts.requests[0].Path; got != "/users/user-1/applications" {
		t.Errorf("path = %q, want /users/user-1/applications", got)
	}
}

func TestCredentialsRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	want := credentials{Token: "tok", UserID: "u1", Email: "a@b.co", Role: "jobProvider"}
	if err := saveCredentials(want); err != nil {
		t.Fatalf("save error: %v", err)
	}

	got, err := loadCredentials()
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if got != want {
		t.Errorf("credentials = %+v, want %+v", got, want)
	}
}

func TestLoadCredentials_NoSession(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := loadCredentials()
	if err == nil {
		t.Fatal("expected error with no saved session")
	}
}

func TestDecodeJSON_ErrorResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":{"message":"invalid or missing bearer token","type":"auth_error"}}`))
	}))
	defer ts.Close()

	client := &apiClient{
		baseURL:    ts.URL,
		creds:      credentials{Token: "bad-token"},
		httpClient: ts.Client(),
	}

	resp, err := client.get("/me")
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}

	var result any
	err = decodeJSON(resp, &result)
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %q, want it to contain '401'", err.Error())
	}
}

func TestNoColorFlag(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	result := colorize(colorGreen, "test message")
	if strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=true should not contain ANSI codes, got %q", result)
	}
	if result != "test message" {
		t.Errorf("result = %q, want %q", result, "test message")
	}

	noColor = false
	result = colorize(colorGreen, "test message")
	if !strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=false should contain ANSI codes, got %q", result)
	}
}
