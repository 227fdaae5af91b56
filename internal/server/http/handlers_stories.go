package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tinytales/tinytales-server/internal/model"
	"github.com/tinytales/tinytales-server/internal/service"
)

type storyRequest struct {
	Title         string `json:"title"`
	Prompt        string `json:"prompt"`
	Body          string `json:"body"`
	Genre         string `json:"genre"`
	IsPublic      bool   `json:"is_public"`
	AllowComments bool   `json:"allow_comments"`
	Tags          string `json:"tags"`
}

type generateRequest struct {
	Prompt    string `json:"prompt"`
	WordCount int    `json:"word_count"`
	Genre     string `json:"genre"`
}

type storyResponse struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Prompt        string    `json:"prompt"`
	Body          string    `json:"body"`
	Genre         string    `json:"genre,omitempty"`
	WordCount     int       `json:"word_count"`
	ReadingTime   int       `json:"reading_time"`
	IsPublic      bool      `json:"is_public"`
	AllowComments bool      `json:"allow_comments"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Tags          []string  `json:"tags,omitempty"`
}

type listItemResponse struct {
	storyResponse
	AuthorName    string `json:"author_name"`
	FavoriteCount int64  `json:"favorite_count"`
	CommentCount  int64  `json:"comment_count"`
}

func toStoryResponse(st *model.Story, tags []model.Tag) storyResponse {
	resp := storyResponse{
		ID:            st.ID,
		Title:         st.Title,
		Prompt:        st.Prompt,
		Body:          st.Body,
		Genre:         st.Genre,
		WordCount:     st.WordCount,
		ReadingTime:   st.ReadingTime,
		IsPublic:      st.IsPublic,
		AllowComments: st.AllowComments,
		CreatedAt:     st.CreatedAt,
		UpdatedAt:     st.UpdatedAt,
	}
	for _, t := range tags {
		resp.Tags = append(resp.Tags, t.Name)
	}
	return resp
}

func toListResponse(items []model.StoryListItem) []listItemResponse {
	out := make([]listItemResponse, 0, len(items))
	for i := range items {
		out = append(out, listItemResponse{
			storyResponse: toStoryResponse(&items[i].Story, nil),
			AuthorName:    items[i].AuthorName,
			FavoriteCount: items[i].FavoriteCount,
			CommentCount:  items[i].CommentCount,
		})
	}
	return out
}

func storyIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "storyID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad story id")
	}
	return id, nil
}

func storyInput(req storyRequest) service.StoryInput {
	return service.StoryInput{
		Title:         req.Title,
		Prompt:        req.Prompt,
		Body:          req.Body,
		Genre:         req.Genre,
		IsPublic:      req.IsPublic,
		AllowComments: req.AllowComments,
		Tags:          req.Tags,
	}
}

func (s *Server) handleCreateStory(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	var req storyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	id, err := s.stories.Create(r.Context(), userID, storyInput(req))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleUpdateStory(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	storyID, err := storyIDParam(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req storyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.stories.Update(r.Context(), storyID, userID, storyInput(req)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteStory(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	storyID, err := storyIDParam(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.stories.Delete(r.Context(), storyID, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetStory(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	storyID, err := storyIDParam(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	st, tags, err := s.stories.Get(r.Context(), storyID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStoryResponse(st, tags))
}

type visibilityRequest struct {
	IsPublic bool `json:"is_public"`
}

func (s *Server) handleSetVisibility(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	storyID, err := storyIDParam(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req visibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	public, err := s.stories.SetVisibility(r.Context(), storyID, userID, req.IsPublic)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_public": public})
}

func (s *Server) handleToggleVisibility(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	storyID, err := storyIDParam(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	public, err := s.stories.ToggleVisibility(r.Context(), storyID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_public": public})
}

func (s *Server) handleListOwn(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	q := r.URL.Query()
	items, err := s.stories.ListOwn(r.Context(), userID, q.Get("search"), q.Get("genre"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListResponse(items))
}

func (s *Server) handleRecentStories(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, "bad limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	items, err := s.stories.Recent(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListResponse(items))
}

func (s *Server) handleListPublic(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var authorID int64
	if raw := q.Get("author"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, "bad author id", http.StatusBadRequest)
			return
		}
		authorID = id
	}
	items, err := s.stories.ListPublic(r.Context(), q.Get("search"), q.Get("genre"), authorID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListResponse(items))
}

func (s *Server) handleGetPublic(w http.ResponseWriter, r *http.Request) {
	storyID, err := storyIDParam(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	st, err := s.stories.GetPublic(r.Context(), storyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStoryResponse(st, nil))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	st, err := s.generate.GenerateAndSave(r.Context(), userID, req.Prompt, req.WordCount, req.Genre)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStoryResponse(st, nil))
}

var exportContentTypes = map[model.ExportFormat]string{
	model.FormatText:     "text/plain; charset=utf-8",
	model.FormatMarkdown: "text/markdown; charset=utf-8",
	model.FormatHTML:     "text/html; charset=utf-8",
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	storyID, err := storyIDParam(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	format := model.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = model.FormatText
	}
	res, err := s.exports.Export(r.Context(), storyID, userID, format)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", exportContentTypes[format])
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}
