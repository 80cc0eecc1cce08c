package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"qcm-challenge/internal/app"
	"qcm-challenge/internal/domain"
)

// StudentHandler serves login, sittings and the public leaderboard.
type StudentHandler struct {
	quiz         *app.QuizService
	accounts     *app.Accounts
	poles        *app.PoleRegistry
	participants *app.ParticipantLog
	site         *app.SiteSettingsStore
}

func NewStudentHandler(s Services) *StudentHandler {
	return &StudentHandler{
		quiz:         s.Quiz,
		accounts:     s.Accounts,
		poles:        s.Poles,
		participants: s.Participants,
		site:         s.Site,
	}
}

type loginRequest struct {
	Name  string `json:"name"`
	Pole  string `json:"pole"`
	Phone string `json:"phone"`
}

type answerRequest struct {
	Index *int `json:"index"`
}

func (h *StudentHandler) Site(w http.ResponseWriter, r *http.Request) {
	settings, err := h.site.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *StudentHandler) Poles(w http.ResponseWriter, r *http.Request) {
	poles, err := h.poles.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, poles)
}

func (h *StudentHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user, err := h.accounts.StudentLogin(r.Context(), req.Name, req.Pole, req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *StudentHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StudentHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok, err := h.accounts.CurrentUser(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *StudentHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	records, err := h.participants.SortedByScoreDesc(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []domain.ParticipantRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *StudentHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	session, err := h.quiz.StartSession(r.Context(), domain.User{Name: req.Name, Pole: req.Pole, Phone: req.Phone})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session.Snapshot())
}

func (h *StudentHandler) Session(w http.ResponseWriter, r *http.Request) {
	snap, err := h.quiz.Snapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *StudentHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Index == nil {
		writeError(w, domain.Invalid("index", "index is required"))
		return
	}
	h.respond(w, func() (domain.SessionSnapshot, error) {
		return h.quiz.SelectAnswer(r.Context(), chi.URLParam(r, "id"), *req.Index)
	})
}

func (h *StudentHandler) Skip(w http.ResponseWriter, r *http.Request) {
	h.respond(w, func() (domain.SessionSnapshot, error) {
		return h.quiz.Skip(r.Context(), chi.URLParam(r, "id"))
	})
}

func (h *StudentHandler) End(w http.ResponseWriter, r *http.Request) {
	h.respond(w, func() (domain.SessionSnapshot, error) {
		return h.quiz.End(r.Context(), chi.URLParam(r, "id"))
	})
}

func (h *StudentHandler) Restart(w http.ResponseWriter, r *http.Request) {
	session, err := h.quiz.Restart(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session.Snapshot())
}

func (h *StudentHandler) respond(w http.ResponseWriter, action func() (domain.SessionSnapshot, error)) {
	snap, err := action()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
