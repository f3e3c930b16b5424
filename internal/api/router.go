package api

import (
	"net/http"

	"github.com/dom/uptask-server/internal/access"
	"github.com/dom/uptask-server/internal/api/handlers"
	"github.com/dom/uptask-server/internal/api/middleware"
	"github.com/dom/uptask-server/internal/auth"
	"github.com/dom/uptask-server/internal/config"
	"github.com/dom/uptask-server/internal/repository"
	"github.com/dom/uptask-server/internal/service"
	"github.com/dom/uptask-server/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the components the router hands requests to.
type Deps struct {
	Services *service.Services
	Repos    *repository.Repositories
	Sessions *auth.SessionCodec
	Hub      *websocket.Hub
	Registry *prometheus.Registry
	Config   *config.Config
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	metrics := middleware.NewMetrics(deps.Registry)

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Handler)
	r.Use(middleware.CORS(deps.Config.FrontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	// Initialize handlers
	resolver := access.NewResolver(deps.Repos.Project, deps.Repos.Task, deps.Repos.Note)
	authHandler := handlers.NewAuthHandler(deps.Services.Auth)
	projectHandler := handlers.NewProjectHandler(deps.Services.Project)
	taskHandler := handlers.NewTaskHandler(deps.Services.Task)
	teamHandler := handlers.NewTeamHandler(deps.Services.Team)
	noteHandler := handlers.NewNoteHandler(deps.Services.Note)
	eventsHandler := handlers.NewEventsHandler(deps.Hub, deps.Sessions, resolver)

	requireSession := middleware.Auth(deps.Sessions, deps.Repos.User)
	scoped := handlers.Scoped

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/create-account", authHandler.CreateAccount)
			r.Post("/confirm-account", authHandler.ConfirmAccount)
			r.Post("/login", authHandler.Login)
			r.Post("/request-code", authHandler.RequestConfirmationCode)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/validate-token", authHandler.ValidateToken)
			r.Post("/update-password/{token}", authHandler.UpdatePasswordWithToken)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Get("/user", authHandler.User)
				r.Put("/profile", authHandler.UpdateProfile)
				r.Post("/update-password", authHandler.UpdateCurrentPassword)
				r.Post("/check-password", authHandler.CheckPassword)
			})
		})

		r.Route("/projects", func(r chi.Router) {
			// The socket authenticates with a query token.
			r.Get("/{projectId}/events", eventsHandler.Subscribe)

			r.Group(func(r chi.Router) {
				r.Use(requireSession)

				r.Get("/", projectHandler.List)
				r.Post("/", projectHandler.Create)

				r.Route("/{projectId}", func(r chi.Router) {
					r.Get("/", scoped(resolver.Project(access.ActionViewProject), projectHandler.Get))
					r.Put("/", scoped(resolver.Project(access.ActionUpdateProject), projectHandler.Update))
					r.Delete("/", scoped(resolver.Project(access.ActionDeleteProject), projectHandler.Delete))

					r.Route("/team", func(r chi.Router) {
						r.Post("/find", scoped(resolver.Project(access.ActionManageTeam), teamHandler.Find))
						r.Get("/", scoped(resolver.Project(access.ActionViewTeam), teamHandler.List))
						r.Post("/", scoped(resolver.Project(access.ActionManageTeam), teamHandler.Add))
						r.Delete("/{userId}", scoped(resolver.Project(access.ActionManageTeam), teamHandler.Remove))
					})

					r.Route("/tasks", func(r chi.Router) {
						r.Get("/", scoped(resolver.Project(access.ActionViewTask), taskHandler.List))
						r.Post("/", scoped(resolver.Project(access.ActionCreateTask), taskHandler.Create))

						r.Route("/{taskId}", func(r chi.Router) {
							r.Get("/", scoped(resolver.Task(access.ActionViewTask), taskHandler.Get))
							r.Put("/", scoped(resolver.Task(access.ActionUpdateTask), taskHandler.Update))
							r.Delete("/", scoped(resolver.Task(access.ActionDeleteTask), taskHandler.Delete))
							r.Put("/status", scoped(resolver.Task(access.ActionSetStatus), taskHandler.SetStatus))

							r.Get("/notes", scoped(resolver.Task(access.ActionViewNotes), noteHandler.List))
							r.Post("/notes", scoped(resolver.Task(access.ActionCreateNote), noteHandler.Create))
							r.Delete("/notes/{noteId}", scoped(resolver.NoteAuthor(), noteHandler.Delete))
						})
					})
				})
			})
		})
	})

	return r
}
