package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kalambet/meishi/internal/generation"
	"github.com/kalambet/meishi/internal/llm"
	"github.com/kalambet/meishi/internal/profile"
	"github.com/kalambet/meishi/internal/storage"
)

const (
	testJWTSecret     = "jwt-secret"
	testWebhookSecret = "hook-secret"
)

type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(_ context.Context, _ llm.Request) (string, error) {
	f.calls++
	return f.reply, f.err
}

const generatedReply = `{"tone":"logical","themeId":"T02","sections":{"quick":{"body":"Aiko helps founders."},"reason":{"heading":"Clear numbers","body":"Plain answers."}}}`

type testServer struct {
	handler http.Handler
	llm     *fakeCompleter
	manager *profile.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := storage.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	completer := &fakeCompleter{reply: generatedReply}
	manager := profile.NewManager(store)
	deps := Deps{
		Profiles:      manager,
		Generator:     generation.NewOrchestrator(completer, store, time.Second, 0.7),
		PublicBaseURL: "https://meishi.example/",
		JWTSecret:     testJWTSecret,
		WebhookSecret: testWebhookSecret,
		CORSOrigins:   []string{"*"},
	}
	return &testServer{handler: NewRouter(deps), llm: completer, manager: manager}
}

func token(t *testing.T, subject string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := tok.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func (ts *testServer) do(t *testing.T, method, path, bearer, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeProfile(t *testing.T, rr *httptest.ResponseRecorder) profileResponse {
	t.Helper()
	var resp profileResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp
}

func errorType(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	return body.Error.Type
}

const onboardingBody = `{
	"role": "consultant",
	"audience": "investors",
	"impressionTags": ["logical", "intellectual"],
	"name": "Aiko Tanaka",
	"photoUrls": ["hero.jpg", "p1.jpg"],
	"links": [{"label": "Site", "url": "example.com"}]
}`

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(t, http.MethodGet, "/health", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var body map[string]string
	json.NewDecoder(rr.Body).Decode(&body)
	if body["status"] != "ok" {
		t.Errorf("body = %v, want status=ok", body)
	}
}

func TestOwnerRoutes_RequireToken(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name   string
		bearer string
	}{
		{"missing", ""},
		{"garbage", "not-a-jwt"},
		{"wrong secret", func() string {
			tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u1"})
			s, _ := tok.SignedString([]byte("other"))
			return s
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(t, http.MethodGet, "/api/profile/me", tt.bearer, "")
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rr.Code)
			}
			if got := errorType(t, rr); got != "authentication_error" {
				t.Errorf("error type = %q, want authentication_error", got)
			}
		})
	}
}

func TestProfileLifecycle(t *testing.T) {
	ts := newTestServer(t)
	tok := token(t, "ext-1")

	if rr := ts.do(t, http.MethodGet, "/api/profile/me", tok, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("me before create: status = %d, want 404", rr.Code)
	}

	rr := ts.do(t, http.MethodPost, "/api/profile/create", tok, "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, want 201: %s", rr.Code, rr.Body)
	}
	created := decodeProfile(t, rr)
	slug := created.Profile.Slug
	if len(slug) != 10 {
		t.Errorf("slug = %q, want 10 characters", slug)
	}
	if created.State != "draft" {
		t.Errorf("state = %q, want draft", created.State)
	}
	if created.ShareURL != "https://meishi.example/"+slug {
		t.Errorf("shareUrl = %q", created.ShareURL)
	}

	if rr := ts.do(t, http.MethodPost, "/api/profile/create", tok, ""); rr.Code != http.StatusConflict {
		t.Errorf("second create: status = %d, want 409", rr.Code)
	}

	rr = ts.do(t, http.MethodPost, "/api/profile/publish", tok, "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("publish draft: status = %d, want 409", rr.Code)
	}

	rr = ts.do(t, http.MethodPatch, "/api/profile/update", tok, onboardingBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("update: status = %d: %s", rr.Code, rr.Body)
	}
	updated := decodeProfile(t, rr)
	if len(updated.Profile.Links) != 1 || updated.Profile.Links[0].URL != "example.com" {
		t.Errorf("links = %+v", updated.Profile.Links)
	}

	rr = ts.do(t, http.MethodPost, "/api/profile/generate", tok, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("generate: status = %d: %s", rr.Code, rr.Body)
	}
	generated := decodeProfile(t, rr)
	if generated.State != "generated" || generated.Profile.ThemeID != "T02" || generated.Profile.Document == nil {
		t.Errorf("after generate: state=%q theme=%q doc=%v", generated.State, generated.Profile.ThemeID, generated.Profile.Document)
	}
	if ts.llm.calls != 1 {
		t.Errorf("completer calls = %d, want 1", ts.llm.calls)
	}

	if rr := ts.do(t, http.MethodGet, "/api/public/"+slug, "", ""); rr.Code != http.StatusNotFound {
		t.Errorf("public before publish: status = %d, want 404", rr.Code)
	}

	rr = ts.do(t, http.MethodPost, "/api/profile/publish", tok, `{"isPublished": true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("publish: status = %d: %s", rr.Code, rr.Body)
	}
	if got := decodeProfile(t, rr).State; got != "published" {
		t.Errorf("state = %q, want published", got)
	}

	rr = ts.do(t, http.MethodGet, "/api/public/"+slug, "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("public json: status = %d", rr.Code)
	}
	var pub struct {
		Page publicPage `json:"page"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&pub); err != nil {
		t.Fatalf("decoding public page: %v", err)
	}
	if pub.Page.Theme.ID != "T02" || pub.Page.LayoutTemplateID != "L01" || len(pub.Page.Links) != 1 {
		t.Errorf("public page = %+v", pub.Page)
	}

	rr = ts.do(t, http.MethodGet, "/"+slug, "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("public html: status = %d", rr.Code)
	}
	html := rr.Body.String()
	for _, want := range []string{"Aiko Tanaka", `data-section="reason"`, `href="https://example.com"`, "data:image/png;base64,"} {
		if !strings.Contains(html, want) {
			t.Errorf("public html missing %q", want)
		}
	}

	rr = ts.do(t, http.MethodPost, "/api/profile/publish", tok, `{"isPublished": false}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("unpublish: status = %d", rr.Code)
	}
	hidden := ts.do(t, http.MethodGet, "/api/public/"+slug, "", "")
	missing := ts.do(t, http.MethodGet, "/api/public/nosuchslug", "", "")
	if hidden.Code != http.StatusNotFound || missing.Code != http.StatusNotFound {
		t.Fatalf("unpublished/missing status = %d/%d, want 404/404", hidden.Code, missing.Code)
	}
	if hidden.Body.String() != missing.Body.String() {
		t.Errorf("unpublished and missing bodies differ:\n%s\n%s", hidden.Body, missing.Body)
	}
	if rr := ts.do(t, http.MethodGet, "/"+slug, "", ""); rr.Code != http.StatusNotFound {
		t.Errorf("public html after unpublish: status = %d, want 404", rr.Code)
	}
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("onboarding incomplete", func(t *testing.T) {
		ts := newTestServer(t)
		tok := token(t, "ext-1")
		ts.do(t, http.MethodPatch, "/api/profile/update", tok, `{"name": "Aiko"}`)

		rr := ts.do(t, http.MethodPost, "/api/profile/generate", tok, "")
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rr.Code)
		}
		if ts.llm.calls != 0 {
			t.Errorf("completer calls = %d, want 0", ts.llm.calls)
		}
	})

	t.Run("upstream failure keeps previous document", func(t *testing.T) {
		ts := newTestServer(t)
		tok := token(t, "ext-1")
		ts.do(t, http.MethodPatch, "/api/profile/update", tok, onboardingBody)
		if rr := ts.do(t, http.MethodPost, "/api/profile/generate", tok, ""); rr.Code != http.StatusOK {
			t.Fatalf("first generate: status = %d", rr.Code)
		}

		ts.llm.err = errors.New("upstream down")
		rr := ts.do(t, http.MethodPost, "/api/profile/generate", tok, "")
		if rr.Code != http.StatusBadGateway {
			t.Fatalf("status = %d, want 502", rr.Code)
		}

		me := decodeProfile(t, ts.do(t, http.MethodGet, "/api/profile/me", tok, ""))
		if me.Profile.Document == nil || me.Profile.ThemeID != "T02" {
			t.Errorf("previous document lost: %+v", me.Profile.Document)
		}
	})

	t.Run("malformed reply", func(t *testing.T) {
		ts := newTestServer(t)
		tok := token(t, "ext-1")
		ts.do(t, http.MethodPatch, "/api/profile/update", tok, onboardingBody)
		ts.llm.reply = "I cannot help with that."

		if rr := ts.do(t, http.MethodPost, "/api/profile/generate", tok, ""); rr.Code != http.StatusBadGateway {
			t.Fatalf("status = %d, want 502", rr.Code)
		}
	})
}

func TestUpdate_Validation(t *testing.T) {
	ts := newTestServer(t)
	tok := token(t, "ext-1")

	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{"name":`},
		{"unknown audience", `{"audience": "everyone"}`},
		{"bad layout", `{"layoutTemplateId": "L11"}`},
		{"too many links", `{"links": [{"label":"a","url":"a"},{"label":"b","url":"b"},{"label":"c","url":"c"},{"label":"d","url":"d"},{"label":"e","url":"e"},{"label":"f","url":"f"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(t, http.MethodPatch, "/api/profile/update", tok, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rr.Code, rr.Body)
			}
			if got := errorType(t, rr); got != "invalid_request_error" {
				t.Errorf("error type = %q", got)
			}
		})
	}
}

func TestLinks(t *testing.T) {
	ts := newTestServer(t)
	tok := token(t, "ext-1")
	ts.do(t, http.MethodPost, "/api/profile/create", tok, "")

	var firstID string
	for i := 0; i < profile.MaxLinks; i++ {
		rr := ts.do(t, http.MethodPost, "/api/profile/links", tok, `{"label":"L","url":"example.com"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("add link %d: status = %d: %s", i, rr.Code, rr.Body)
		}
		var resp struct {
			Link profile.Link `json:"link"`
		}
		json.NewDecoder(rr.Body).Decode(&resp)
		if resp.Link.Position != i {
			t.Errorf("link %d position = %d", i, resp.Link.Position)
		}
		if i == 0 {
			firstID = resp.Link.ID
		}
	}
	if rr := ts.do(t, http.MethodPost, "/api/profile/links", tok, `{"label":"L","url":"example.com"}`); rr.Code != http.StatusBadRequest {
		t.Errorf("sixth link: status = %d, want 400", rr.Code)
	}

	rr := ts.do(t, http.MethodPatch, "/api/profile/links/"+firstID, tok, `{"label":"Portfolio"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update link: status = %d", rr.Code)
	}

	if rr := ts.do(t, http.MethodDelete, "/api/profile/links/"+firstID, tok, ""); rr.Code != http.StatusOK {
		t.Fatalf("delete link: status = %d", rr.Code)
	}
	if rr := ts.do(t, http.MethodDelete, "/api/profile/links/"+firstID, tok, ""); rr.Code != http.StatusNotFound {
		t.Errorf("delete twice: status = %d, want 404", rr.Code)
	}

	other := token(t, "ext-2")
	ts.do(t, http.MethodPost, "/api/profile/create", other, "")
	me := decodeProfile(t, ts.do(t, http.MethodGet, "/api/profile/me", tok, ""))
	if rr := ts.do(t, http.MethodDelete, "/api/profile/links/"+me.Profile.Links[0].ID, other, ""); rr.Code != http.StatusNotFound {
		t.Errorf("deleting another user's link: status = %d, want 404", rr.Code)
	}
}

func TestPreview(t *testing.T) {
	ts := newTestServer(t)
	tok := token(t, "ext-1")
	ts.do(t, http.MethodPatch, "/api/profile/update", tok, onboardingBody)
	ts.do(t, http.MethodPost, "/api/profile/generate", tok, "")

	rr := ts.do(t, http.MethodGet, "/api/profile/preview?layout=L06&theme=T08", tok, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `data-layout="L06"`) || !strings.Contains(body, `data-theme="T08"`) {
		t.Errorf("preview ignored overrides")
	}
	if strings.Contains(body, `data-section="quick"`) {
		t.Errorf("L06 preview rendered the quick section")
	}
}

func TestLayouts(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(t, http.MethodGet, "/api/profile/layouts", token(t, "ext-1"), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		Layouts []layoutInfo `json:"layouts"`
	}
	json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Layouts) != 10 {
		t.Errorf("layouts = %d, want 10", len(resp.Layouts))
	}
}

func TestSamples(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodGet, "/samples", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("catalog status = %d", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, `href="/samples/L01"`) || !strings.Contains(body, `href="/samples/L10"`) {
		t.Errorf("catalog does not link every template")
	}

	rr = ts.do(t, http.MethodGet, "/samples/L04?theme=T03", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("sample status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`data-layout="L04"`,
		`data-theme="T03"`,
		`data-block="index"`,
		`data-block="sample-banner"`,
		`data-section="human"`,
		"https://meishi.example/sample",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("sample page missing %s", want)
		}
	}
	if n := strings.Count(body, `rel="noopener noreferrer"`); n != 3 {
		t.Errorf("sample links = %d, want 3", n)
	}
}

func TestSamples_UnknownLayout(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/samples/L11", "/samples/nope"} {
		rr := ts.do(t, http.MethodGet, path, "", "")
		if rr.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "Page not found") {
			t.Errorf("GET %s did not render the not-found page", path)
		}
	}
}

func TestIdentityEvents(t *testing.T) {
	ts := newTestServer(t)

	if rr := ts.do(t, http.MethodPost, "/api/identity/events", "wrong", `{"type":"user.created","data":{"id":"ext-9"}}`); rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong secret: status = %d, want 401", rr.Code)
	}

	rr := ts.do(t, http.MethodPost, "/api/identity/events", testWebhookSecret, `{"type":"user.created","data":{"id":"ext-9","email":"a@example.com"}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("created: status = %d: %s", rr.Code, rr.Body)
	}

	tok := token(t, "ext-9")
	ts.do(t, http.MethodPost, "/api/profile/create", tok, "")

	rr = ts.do(t, http.MethodPost, "/api/identity/events", testWebhookSecret, `{"type":"user.deleted","data":{"id":"ext-9"}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("deleted: status = %d", rr.Code)
	}

	// The next authenticated request recreates the user without a profile.
	if rr := ts.do(t, http.MethodGet, "/api/profile/me", tok, ""); rr.Code != http.StatusNotFound {
		t.Errorf("me after delete: status = %d, want 404", rr.Code)
	}

	if rr := ts.do(t, http.MethodPost, "/api/identity/events", testWebhookSecret, `{"type":"user.created","data":{}}`); rr.Code != http.StatusBadRequest {
		t.Errorf("missing subject: status = %d, want 400", rr.Code)
	}
}
