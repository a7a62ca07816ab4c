package api

import (
	"net/http"
	"time"

	"algoforge/internal/api/handler"
	"algoforge/internal/api/middleware"
	"algoforge/internal/app/service"
	"algoforge/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	tokenAuth *security.TokenAuth,
	blocklist *security.TokenBlocklist,
	authService *service.AuthService,
	problemService *service.ProblemService,
	submissionService *service.SubmissionService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	// Judging blocks on remote polling, so the request timeout has to cover
	// the judge's configured maximum wait.
	r.Use(chiMiddleware.Timeout(3 * time.Minute))

	// Verifies the bearer token and puts claims in the request context.
	r.Use(jwtauth.Verifier(tokenAuth.Verifier()))

	authenticated := middleware.Authenticator(blocklist)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handler.NewAuthHandler(authService)
	problemHandler := handler.NewProblemHandler(problemService, submissionService)
	submissionHandler := handler.NewSubmissionHandler(submissionService)

	r.Route("/user", func(user chi.Router) {
		authHandler.RegisterPublicRoutes(user)
		user.Group(func(protected chi.Router) {
			protected.Use(authenticated)
			authHandler.RegisterProtectedRoutes(protected)
		})
	})

	r.Route("/problem", func(problem chi.Router) {
		problem.Use(authenticated)
		problemHandler.RegisterRoutes(problem)
	})

	r.Route("/submission", func(submission chi.Router) {
		submission.Use(authenticated)
		submissionHandler.RegisterRoutes(submission)
	})

	return r
}
