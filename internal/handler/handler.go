// Package handler exposes the test player as a JSON API consumed by
// the browser front end.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/mocktest/internal/history"
	appI18n "github.com/pavelanni/mocktest/internal/i18n"
	"github.com/pavelanni/mocktest/internal/model"
	"github.com/pavelanni/mocktest/internal/report"
	"github.com/pavelanni/mocktest/internal/session"
	"github.com/pavelanni/mocktest/internal/testdef"
)

// maxUploadSize bounds uploaded test definitions.
const maxUploadSize = 5 << 20

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	sessions *sessionManager
	store    *history.Store
	config   model.PlayerConfig
}

// New creates a new Handler.
func New(store *history.Store, cfg model.PlayerConfig) (*Handler, error) {
	opts := session.Options{
		Duration:  cfg.Duration,
		History:   store,
		Snapshots: store,
	}
	return &Handler{
		sessions: newSessionManager(opts),
		store:    store,
		config:   cfg,
	}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/tests", h.handleCreateTest)
	r.Route("/api/tests/{token}", func(r chi.Router) {
		r.Get("/", h.handleGetState)
		r.Post("/start", h.handleStart)
		r.Post("/answers", h.handleAnswer)
		r.Post("/next", h.handleNext)
		r.Post("/prev", h.handlePrev)
		r.Post("/goto/{index}", h.handleGoTo)
		r.Post("/complete", h.handleComplete)
		r.Post("/reset", h.handleReset)
		r.Get("/result", h.handleResult)
	})
	r.Get("/api/history", h.handleHistory)
	r.Delete("/api/history", h.handleClearHistory)
	r.Get("/api/analytics", h.handleAnalytics)
}

// statePayload is the session view returned by most endpoints.
type statePayload struct {
	Token         string          `json:"token"`
	State         session.State   `json:"state"`
	TestName      string          `json:"testName"`
	Section       string          `json:"section"`
	TotalCount    int             `json:"totalQuestions"`
	CurrentIndex  int             `json:"currentIndex"`
	AnsweredCount int             `json:"answeredCount"`
	TimeRemaining int             `json:"timeRemaining"`
	Question      *model.Question `json:"question,omitempty"`
	Answers       []model.Answer  `json:"answers"`
}

func (h *Handler) statePayload(token string, s *session.Session) statePayload {
	p := statePayload{
		Token:         token,
		State:         s.State(),
		TestName:      s.Name(),
		CurrentIndex:  s.CurrentIndex(),
		AnsweredCount: s.AnsweredCount(),
		TimeRemaining: s.TimeRemaining(),
		Answers:       s.Answers(),
	}
	if test, ok := s.Test(); ok {
		p.Section = test.Section
		p.TotalCount = len(test.Questions)
	}
	if q, ok := s.CurrentQuestion(); ok {
		p.Question = &q
	}
	return p
}

// handleCreateTest accepts a test definition, either as a raw JSON body
// or as the "file" field of a multipart form, and opens a session.
func (h *Handler) handleCreateTest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	raw, name, err := readTestUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, http.StatusRequestEntityTooLarge, "FileTooLarge")
			return
		}
		slog.Warn("read test upload", "error", err)
		h.writeError(w, r, http.StatusBadRequest, "InvalidTestFormat")
		return
	}

	data, err := testdef.Parse(raw)
	if err != nil {
		slog.Warn("rejecting test definition", "error", err)
		h.writeError(w, r, http.StatusBadRequest, "InvalidTestFormat")
		return
	}

	token, s, err := h.sessions.create()
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if err := s.Load(data, name); err != nil {
		h.sessions.remove(token)
		h.sessionError(w, r, err)
		return
	}

	slog.Info("test loaded", "token", token, "section", data.Section, "questions", len(data.Questions))
	writeJSON(w, http.StatusCreated, h.statePayload(token, s))
}

// readTestUpload returns the definition bytes and a display name for
// the attempt.
func readTestUpload(r *http.Request) (raw []byte, name string, err error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", err
		}
		defer file.Close()
		raw, err = io.ReadAll(file)
		if err != nil {
			return nil, "", err
		}
		return raw, header.Filename, nil
	}

	raw, err = io.ReadAll(r.Body)
	return raw, "", err
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (string, *session.Session, bool) {
	token := chi.URLParam(r, "token")
	s, ok := h.sessions.get(token)
	if !ok {
		h.writeError(w, r, http.StatusNotFound, "SessionNotFound")
		return "", nil, false
	}
	return token, s, true
}

func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	token, s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.statePayload(token, s))
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	token, s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Start(); err != nil {
		h.sessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.statePayload(token, s))
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	token, s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req struct {
		QuestionID int         `json:"questionId"`
		Answer     model.Value `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("decode answer request", "error", err)
		h.writeError(w, r, http.StatusBadRequest, "InvalidTestFormat")
		return
	}

	if err := s.SetAnswer(req.QuestionID, req.Answer); err != nil {
		h.sessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.statePayload(token, s))
}

func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, func(s *session.Session) error { return s.Next() })
}

func (h *Handler) handlePrev(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, func(s *session.Session) error { return s.Prev() })
}

func (h *Handler) handleGoTo(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid question index", http.StatusBadRequest)
		return
	}
	h.navigate(w, r, func(s *session.Session) error { return s.GoTo(index) })
}

func (h *Handler) navigate(w http.ResponseWriter, r *http.Request, move func(*session.Session) error) {
	token, s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := move(s); err != nil {
		h.sessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.statePayload(token, s))
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	_, s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Complete(); err != nil {
		h.sessionError(w, r, err)
		return
	}
	h.writeResult(w, r, s)
}

func (h *Handler) handleResult(w http.ResponseWriter, r *http.Request) {
	_, s, ok := h.session(w, r)
	if !ok {
		return
	}
	if _, done := s.Score(); !done {
		h.writeError(w, r, http.StatusConflict, "ResultNotReady")
		return
	}
	h.writeResult(w, r, s)
}

func (h *Handler) writeResult(w http.ResponseWriter, r *http.Request, s *session.Session) {
	test, ok := s.Test()
	if !ok {
		h.writeError(w, r, http.StatusConflict, "SessionNotLoaded")
		return
	}
	score, _ := s.Score()
	writeJSON(w, http.StatusOK, report.Summarize(test, s.Answers(), score))
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	token, s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Reset()
	writeJSON(w, http.StatusOK, h.statePayload(token, s))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.List()
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(entries),
		"entries": entries,
	})
}

func (h *Handler) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(); err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": appI18n.T(r.Context(), "HistoryCleared"),
	})
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.List()
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report.Analyze(entries))
}

// sessionError maps session lifecycle errors onto HTTP statuses and
// localized messages.
func (h *Handler) sessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrBadFormat):
		h.writeError(w, r, http.StatusBadRequest, "InvalidTestFormat")
	case errors.Is(err, session.ErrNotLoaded):
		h.writeError(w, r, http.StatusConflict, "SessionNotLoaded")
	case errors.Is(err, session.ErrNotActive):
		h.writeError(w, r, http.StatusConflict, "SessionNotActive")
	case errors.Is(err, session.ErrComplete):
		h.writeError(w, r, http.StatusConflict, "SessionComplete")
	case errors.Is(err, session.ErrActive):
		h.writeError(w, r, http.StatusConflict, "SessionActive")
	default:
		h.serverError(w, r, err)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, msgID string) {
	writeJSON(w, status, map[string]string{"error": appI18n.T(r.Context(), msgID)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
