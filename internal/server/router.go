package server

import (
	"log"
	"net/http"
	"net/url"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/terraconstructs/skillshare/internal/auth"
	"github.com/terraconstructs/skillshare/internal/config"
	skillmiddleware "github.com/terraconstructs/skillshare/internal/middleware"
	"github.com/terraconstructs/skillshare/internal/services/iam"
	"github.com/terraconstructs/skillshare/internal/services/validation"
	"github.com/terraconstructs/skillshare/internal/storage"
	"github.com/terraconstructs/skillshare/internal/telemetry"
)

// RouterOptions controls the construction of the HTTP router. Handler sets
// whose service is nil are not mounted, which keeps tests small.
type RouterOptions struct {
	Cfg           *config.Config
	IAM           iam.Service
	Posts         PostService
	Comments      CommentService
	Feeds         FeedService
	Progress      ProgressService
	Notifications NotificationService
	Blobs         storage.BlobStore
	// Uploads serves GET /uploads/* for the local blob store.
	Uploads        http.Handler
	Validator      validation.Validator
	Policy         *auth.Policy
	PolicyReloader PolicyReloader
	Authn          func(http.Handler) http.Handler
	LoginLimiter   *skillmiddleware.RateLimiter
	Metrics        *telemetry.ServerMetrics
	CORSOptions    *cors.Options
	HealthHandler  http.HandlerFunc
}

// DefaultCORSOptions returns the CORS policy for the configured origins.
func DefaultCORSOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NewRouter assembles a chi.Router with shared middleware, CORS policy, and
// the API handlers mounted.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(skillmiddleware.AccessLogger(os.Stdout))
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(skillmiddleware.Metrics(opts.Metrics))
	}

	var origins []string
	if opts.Cfg != nil {
		origins = opts.Cfg.CORSAllowedOrigins
	}
	corsCfg := DefaultCORSOptions(origins)
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	if opts.Authn != nil {
		r.Use(opts.Authn)
	} else {
		log.Println("WARNING: no authentication middleware configured; protected routes will reject every request")
	}

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/health", healthHandler)

	if opts.Uploads != nil {
		r.Handle("/uploads/*", http.StripPrefix("/uploads", opts.Uploads))
	}

	if opts.IAM != nil {
		mountAuth(r, opts)
		r.Route("/api/users", NewUserHandlers(opts.IAM, opts.Validator).Routes)
	}

	var (
		postH     *PostHandlers
		feedH     *FeedHandlers
		progressH *ProgressHandlers
	)
	if opts.Posts != nil {
		postH = NewPostHandlers(opts.Posts, opts.Validator)
		r.Route("/api/posts", postH.Routes)
	}
	if opts.Comments != nil {
		r.Route("/api/comments", NewCommentHandlers(opts.Comments, opts.Validator).Routes)
	}
	if opts.Feeds != nil {
		feedH = NewFeedHandlers(opts.Feeds, opts.Validator)
		r.Route("/api/feeds", feedH.Routes)
	}
	if opts.Progress != nil {
		progressH = NewProgressHandlers(opts.Progress, opts.Validator)
		r.Route("/api/learning-progress", progressH.Routes)
	}
	if opts.Notifications != nil {
		r.Route("/api/notifications", NewNotificationHandlers(opts.Notifications, originHosts(origins)).Routes)
	}
	if opts.Blobs != nil {
		files := NewFileHandlers(opts.Blobs)
		r.Route("/api/files", func(r chi.Router) {
			r.Post("/upload/image", files.Upload(storage.CategoryImage))
			r.Post("/upload/video", files.Upload(storage.CategoryVideo))
			r.With(skillmiddleware.RequireRole(opts.Policy, auth.ObjectTypeAdmin, auth.AdminFileDelete)).
				Delete("/", files.Delete)
		})
	}

	mountAdmin(r, opts, postH)

	if opts.Cfg != nil && opts.Cfg.ContentVisibility == config.VisibilityPublic {
		mountPublic(r, postH, feedH, progressH)
	}

	return r
}

func mountAuth(r chi.Router, opts RouterOptions) {
	limited := func(h http.HandlerFunc) http.Handler {
		if opts.LoginLimiter == nil {
			return h
		}
		return opts.LoginLimiter.Middleware(h)
	}
	r.Route("/api/auth", func(r chi.Router) {
		r.Method(http.MethodPost, "/register", limited(HandleRegister(opts.IAM, opts.Validator)))
		r.Method(http.MethodPost, "/login", limited(HandleLogin(opts.IAM, opts.Validator)))
		r.Method(http.MethodPost, "/password-reset/request", limited(HandlePasswordResetRequest(opts.IAM, opts.Validator)))
		r.Method(http.MethodPost, "/password-reset/confirm", limited(HandlePasswordResetConfirm(opts.IAM, opts.Validator)))
	})
}

func mountAdmin(r chi.Router, opts RouterOptions, postH *PostHandlers) {
	r.Route("/api/admin", func(r chi.Router) {
		if opts.IAM != nil {
			admin := NewAdminHandlers(opts.IAM, opts.Validator)
			r.Group(func(r chi.Router) {
				r.Use(skillmiddleware.RequireRole(opts.Policy, auth.ObjectTypeAdmin, auth.AdminUserManage))
				admin.Routes(r)
			})
		}
		if opts.PolicyReloader != nil {
			r.With(skillmiddleware.RequireRole(opts.Policy, auth.ObjectTypeAdmin, auth.AdminPolicyReload)).
				Post("/policy/reload", HandlePolicyReload(opts.PolicyReloader))
		}
		// The post service checks post:create-system itself.
		if postH != nil {
			r.Post("/posts", postH.CreateSystem)
		}
	})
}

// originHosts converts CORS origins into the host patterns the websocket
// upgrader matches against.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, origin := range origins {
		if origin == "*" {
			hosts = append(hosts, "*")
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			log.Printf("ignoring websocket origin %q", origin)
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}

// NewH2CHandler wraps the router with an h2c server to provide HTTP/2 over
// cleartext.
func NewH2CHandler(opts RouterOptions) http.Handler {
	return h2c.NewHandler(NewRouter(opts), &http2.Server{})
}
