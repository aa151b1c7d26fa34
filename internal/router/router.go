package router

import (
	"net/http"

	"github.com/contentcrew/backend/internal/auth"
	"github.com/contentcrew/backend/internal/jobs"
	"github.com/contentcrew/backend/internal/middleware"
	"github.com/contentcrew/backend/internal/reporting"
)

// Options carries the handlers and middleware the router wires together.
type Options struct {
	Auth      *auth.Handler
	Jobs      *jobs.Handler
	Reporting *reporting.Handler

	// Authenticate guards API-key routes.
	Authenticate func(http.Handler) http.Handler

	// RateLimit, when non-nil, is applied to the submit route.
	RateLimit func(http.Handler) http.Handler

	// AdminToken enables the /admin routes; empty leaves them unregistered.
	AdminToken string
}

// New returns the service's http.Handler.
func New(opts Options) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /signup", opts.Auth.Signup)
	mux.HandleFunc("GET /health", opts.Reporting.Health)

	generate := http.Handler(http.HandlerFunc(opts.Jobs.Generate))
	if opts.RateLimit != nil {
		generate = opts.RateLimit(generate)
	}
	mux.Handle("POST /generate", opts.Authenticate(generate))
	mux.Handle("GET /status/{job_id}", opts.Authenticate(http.HandlerFunc(opts.Jobs.Status)))
	mux.Handle("GET /usage", opts.Authenticate(http.HandlerFunc(opts.Auth.Usage)))

	if opts.AdminToken != "" {
		adminAuth := middleware.AdminAuth(opts.AdminToken)
		mux.Handle("GET /admin/stats", adminAuth(http.HandlerFunc(opts.Reporting.Stats)))
		mux.Handle("GET /admin/users", adminAuth(http.HandlerFunc(opts.Reporting.Users)))
		mux.Handle("GET /admin/costs", adminAuth(http.HandlerFunc(opts.Reporting.Costs)))
	}

	return mux
}
