package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"qcm-challenge/internal/app"
)

// TokenValidator checks admin bearer tokens.
type TokenValidator interface {
	Validate(token string) (subject string, err error)
}

// Services bundles the use cases exposed over HTTP.
type Services struct {
	Quiz         *app.QuizService
	Accounts     *app.Accounts
	Questions    *app.QuestionBank
	Poles        *app.PoleRegistry
	Participants *app.ParticipantLog
	Site         *app.SiteSettingsStore
	Tokens       TokenValidator
}

// NewRouter wires the REST API and the session websocket.
func NewRouter(s Services) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	student := NewStudentHandler(s)
	admin := NewAdminHandler(s)
	ws := NewWSHandler(s.Quiz)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/site", student.Site)
		r.Get("/poles", student.Poles)
		r.Post("/login", student.Login)
		r.Post("/logout", student.Logout)
		r.Get("/me", student.Me)
		r.Get("/leaderboard", student.Leaderboard)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", student.StartSession)
			r.Get("/{id}", student.Session)
			r.Post("/{id}/answer", student.Answer)
			r.Post("/{id}/skip", student.Skip)
			r.Post("/{id}/end", student.End)
			r.Post("/{id}/restart", student.Restart)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", admin.Login)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin(s.Tokens))

				r.Get("/participants", admin.Participants)
				r.Delete("/participants", admin.ClearParticipants)

				r.Get("/questions", admin.Questions)
				r.Post("/questions", admin.AddQuestion)
				r.Put("/questions/{index}", admin.UpdateQuestion)
				r.Delete("/questions/{index}", admin.DeleteQuestion)

				r.Get("/poles", admin.Poles)
				r.Post("/poles", admin.AddPole)
				r.Put("/poles/{index}", admin.RenamePole)
				r.Delete("/poles/{index}", admin.DeletePole)

				r.Put("/site", admin.SaveSite)
				r.Delete("/site", admin.ResetSite)
			})
		})
	})
	return r
}
