package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tinytales/tinytales-server/internal/errs"
	"github.com/tinytales/tinytales-server/internal/model"
	"github.com/tinytales/tinytales-server/internal/service"
)

type fakeAuth struct {
	verifyID  int64
	verifyErr error
	loginErr  error
}

func (f *fakeAuth) Register(_ context.Context, username, email, password string) (int64, error) {
	return 1, nil
}
func (f *fakeAuth) Login(_ context.Context, login, password, clientAddr string) (model.Tokens, *model.User, error) {
	if f.loginErr != nil {
		return model.Tokens{}, nil, f.loginErr
	}
	return model.Tokens{AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour)},
		&model.User{ID: 1, Username: "ann"}, nil
}
func (f *fakeAuth) VerifyToken(token string) (int64, error) { return f.verifyID, f.verifyErr }

type fakeStories struct {
	createID  int64
	createErr error
	createIn  service.StoryInput
	owner     int64
	getOut    *model.Story
	getErr    error
	listOut   []model.StoryListItem
	filterQ   struct{ search, genre string }
	authorID  int64
}

func (f *fakeStories) Create(_ context.Context, ownerID int64, in service.StoryInput) (int64, error) {
	f.owner, f.createIn = ownerID, in
	return f.createID, f.createErr
}
func (f *fakeStories) Update(_ context.Context, storyID, ownerID int64, in service.StoryInput) error {
	return f.createErr
}
func (f *fakeStories) Delete(_ context.Context, storyID, ownerID int64) error { return nil }
func (f *fakeStories) SetVisibility(_ context.Context, storyID, ownerID int64, public bool) (bool, error) {
	return public, nil
}
func (f *fakeStories) ToggleVisibility(_ context.Context, storyID, ownerID int64) (bool, error) {
	return true, nil
}
func (f *fakeStories) Get(_ context.Context, storyID, ownerID int64) (*model.Story, []model.Tag, error) {
	return f.getOut, nil, f.getErr
}
func (f *fakeStories) GetPublic(_ context.Context, storyID int64) (*model.Story, error) {
	return f.getOut, f.getErr
}
func (f *fakeStories) ListOwn(_ context.Context, ownerID int64, search, genre string) ([]model.StoryListItem, error) {
	f.owner, f.filterQ.search, f.filterQ.genre = ownerID, search, genre
	return f.listOut, nil
}
func (f *fakeStories) ListPublic(_ context.Context, search, genre string, authorID int64) ([]model.StoryListItem, error) {
	f.filterQ.search, f.filterQ.genre, f.authorID = search, genre, authorID
	return f.listOut, nil
}
func (f *fakeStories) Recent(_ context.Context, ownerID int64, limit int) ([]model.StoryListItem, error) {
	f.owner = ownerID
	return f.listOut, nil
}

type fakeGenSvc struct {
	out *model.Story
	err error
}

func (f *fakeGenSvc) GenerateAndSave(_ context.Context, ownerID int64, prompt string, wordCount int, genre string) (*model.Story, error) {
	return f.out, f.err
}

type fakeExportSvc struct {
	out *service.ExportResult
	err error
}

func (f *fakeExportSvc) Export(_ context.Context, storyID, ownerID int64, format model.ExportFormat) (*service.ExportResult, error) {
	return f.out, f.err
}

type fakeProfileSvc struct{}

func (f *fakeProfileSvc) Get(_ context.Context, userID int64) (*model.User, error) {
	return &model.User{ID: userID, Username: "ann", Email: "ann@example.com"}, nil
}
func (f *fakeProfileSvc) UpdateProfile(_ context.Context, userID int64, username, email string) error {
	return nil
}
func (f *fakeProfileSvc) ChangePassword(_ context.Context, userID int64, current, next string) error {
	return nil
}
func (f *fakeProfileSvc) Stats(_ context.Context, userID int64) (model.Stats, error) {
	return model.Stats{StoryCount: 3, TotalWords: 500}, nil
}
func (f *fakeProfileSvc) Preferences(_ context.Context, userID int64) (model.Preferences, error) {
	return model.Preferences{UserID: userID, DefaultWordCount: 100, DefaultGenre: "Fantasy"}, nil
}
func (f *fakeProfileSvc) SavePreferences(_ context.Context, p model.Preferences) error { return nil }

type serverFakes struct {
	auth    *fakeAuth
	stories *fakeStories
	gen     *fakeGenSvc
	exports *fakeExportSvc
}

func newTestServer() (*Server, *serverFakes) {
	fk := &serverFakes{
		auth:    &fakeAuth{verifyID: 1},
		stories: &fakeStories{createID: 7},
		gen:     &fakeGenSvc{},
		exports: &fakeExportSvc{},
	}
	s := New(fk.auth, fk.stories, fk.gen, fk.exports, &fakeProfileSvc{}, zap.NewNop())
	return s, fk
}

func doRequest(t *testing.T, s *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer()
	rec := doRequest(t, s, http.MethodGet, "/api/stories", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthMiddleware_BadToken(t *testing.T) {
	t.Parallel()
	s, fk := newTestServer()
	fk.auth.verifyErr = errs.ErrUnauthorized
	rec := doRequest(t, s, http.MethodGet, "/api/stories", "bad", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCreateStory(t *testing.T) {
	t.Parallel()
	s, fk := newTestServer()
	body := `{"title":"t","body":"once upon a time","genre":"Fantasy","tags":"magic, dragons"}`
	rec := doRequest(t, s, http.MethodPost, "/api/stories", "tok", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if fk.stories.owner != 1 {
		t.Fatalf("owner = %d, want 1", fk.stories.owner)
	}
	if fk.stories.createIn.Tags != "magic, dragons" {
		t.Fatalf("tags = %q", fk.stories.createIn.Tags)
	}
	var resp map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp["id"] != 7 {
		t.Fatalf("body = %s, err %v", rec.Body.String(), err)
	}
}

func TestGetStory_NotFound(t *testing.T) {
	t.Parallel()
	s, fk := newTestServer()
	fk.stories.getErr = errs.ErrNotFound
	rec := doRequest(t, s, http.MethodGet, "/api/stories/9", "tok", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetStory_StoreDownMapsTo503(t *testing.T) {
	t.Parallel()
	s, fk := newTestServer()
	fk.stories.getErr = fmt.Errorf("%w: dial tcp: connection refused", errs.ErrUnavailable)
	rec := doRequest(t, s, http.MethodGet, "/api/stories/9", "tok", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestGetStory_BadID(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer()
	rec := doRequest(t, s, http.MethodGet, "/api/stories/abc", "tok", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListPublic_QueryParams(t *testing.T) {
	t.Parallel()
	s, fk := newTestServer()
	rec := doRequest(t, s, http.MethodGet, "/api/public/stories?search=dragon&genre=Fantasy&author=3", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if fk.stories.filterQ.search != "dragon" || fk.stories.filterQ.genre != "Fantasy" || fk.stories.authorID != 3 {
		t.Fatalf("filter = %+v author %d", fk.stories.filterQ, fk.stories.authorID)
	}
}

func TestListPublic_EmptyIsJSONArray(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer()
	rec := doRequest(t, s, http.MethodGet, "/api/public/stories", "", "")
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("body = %q, want empty array", got)
	}
}

func TestLogin_RateLimitedMapsTo429(t *testing.T) {
	t.Parallel()
	s, fk := newTestServer()
	fk.auth.loginErr = errs.ErrRateLimited
	rec := doRequest(t, s, http.MethodPost, "/api/login", "", `{"login":"ann","password":"pw"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
}

func TestExport_Headers(t *testing.T) {
	t.Parallel()
	s, fk := newTestServer()
	fk.exports.out = &service.ExportResult{
		Filename: "story_9_20250102_150405.md",
		Data:     []byte("# title"),
	}
	rec := doRequest(t, s, http.MethodGet, "/api/stories/9/export?format=md", "tok", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Fatalf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "story_9_20250102_150405.md") {
		t.Fatalf("disposition = %q", cd)
	}
	if rec.Body.String() != "# title" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestGenerate_FailureMapsTo502(t *testing.T) {
	t.Parallel()
	s, fk := newTestServer()
	fk.gen.err = errs.ErrGenerationFailed
	rec := doRequest(t, s, http.MethodPost, "/api/stories/generate", "tok", `{"prompt":"a knight"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}
