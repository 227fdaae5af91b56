package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/tinytales/tinytales-server/internal/model"
)

type profileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type passwordRequest struct {
	Current string `json:"current_password"`
	Next    string `json:"new_password"`
}

type preferencesPayload struct {
	DefaultWordCount int    `json:"default_word_count"`
	DefaultGenre     string `json:"default_genre"`
	DarkMode         bool   `json:"dark_mode"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	u, err := s.profile.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.profile.UpdateProfile(r.Context(), userID, req.Username, req.Email); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.profile.ChangePassword(r.Context(), userID, req.Current, req.Next); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	st, err := s.profile.Stats(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{
		"story_count": st.StoryCount,
		"total_words": st.TotalWords,
	})
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	p, err := s.profile.Preferences(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preferencesPayload{
		DefaultWordCount: p.DefaultWordCount,
		DefaultGenre:     p.DefaultGenre,
		DarkMode:         p.DarkMode,
	})
}

func (s *Server) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	var req preferencesPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	err := s.profile.SavePreferences(r.Context(), model.Preferences{
		UserID:           userID,
		DefaultWordCount: req.DefaultWordCount,
		DefaultGenre:     req.DefaultGenre,
		DarkMode:         req.DarkMode,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
