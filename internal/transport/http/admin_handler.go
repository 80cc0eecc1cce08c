package http

import (
	"net/http"
	"time"

	"qcm-challenge/internal/app"
	"qcm-challenge/internal/domain"
)

// AdminHandler serves the admin dashboard endpoints.
type AdminHandler struct {
	accounts     *app.Accounts
	questions    *app.QuestionBank
	poles        *app.PoleRegistry
	participants *app.ParticipantLog
	site         *app.SiteSettingsStore
}

func NewAdminHandler(s Services) *AdminHandler {
	return &AdminHandler{
		accounts:     s.Accounts,
		questions:    s.Questions,
		poles:        s.Poles,
		participants: s.Participants,
		site:         s.Site,
	}
}

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type participantsResponse struct {
	Groups []domain.PoleGroup      `json:"groups"`
	Stats  domain.ParticipantStats `json:"stats"`
}

type poleRequest struct {
	Name string `json:"name"`
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	token, expires, err := h.accounts.AdminLogin(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, adminLoginResponse{Token: token, ExpiresAt: expires})
}

func (h *AdminHandler) Participants(w http.ResponseWriter, r *http.Request) {
	records, err := h.participants.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participantsResponse{
		Groups: app.GroupByPole(records),
		Stats:  app.Summarize(records),
	})
}

func (h *AdminHandler) ClearParticipants(w http.ResponseWriter, r *http.Request) {
	if err := h.participants.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) Questions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.questions.All(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *AdminHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	var q domain.Question
	if err := decodeBody(r, &q); err != nil {
		writeError(w, err)
		return
	}
	saved, err := h.questions.Add(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *AdminHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	idx, err := indexParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var q domain.Question
	if err := decodeBody(r, &q); err != nil {
		writeError(w, err)
		return
	}
	saved, err := h.questions.Update(r.Context(), idx, q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *AdminHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	idx, err := indexParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.questions.Delete(r.Context(), idx); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) Poles(w http.ResponseWriter, r *http.Request) {
	usage, err := h.poles.Usage(r.Context(), h.participants)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

func (h *AdminHandler) AddPole(w http.ResponseWriter, r *http.Request) {
	var req poleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	poles, err := h.poles.Add(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, poles)
}

func (h *AdminHandler) RenamePole(w http.ResponseWriter, r *http.Request) {
	idx, err := indexParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req poleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	poles, err := h.poles.Rename(r.Context(), idx, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, poles)
}

func (h *AdminHandler) DeletePole(w http.ResponseWriter, r *http.Request) {
	idx, err := indexParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	poles, err := h.poles.Delete(r.Context(), idx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, poles)
}

func (h *AdminHandler) SaveSite(w http.ResponseWriter, r *http.Request) {
	var req domain.SiteSettings
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	settings, err := h.site.Save(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *AdminHandler) ResetSite(w http.ResponseWriter, r *http.Request) {
	settings, err := h.site.Reset(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
