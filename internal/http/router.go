package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Pages      *PageHandler
	Auth       *AuthHandler
	Rent       *RentHandler
	Contact    *ContactHandler
	API        *APIHandler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	notFound := func(w http.ResponseWriter, r *http.Request) {
		if cfg.Pages != nil {
			cfg.Pages.NotFound(w, r)
			return
		}
		http.NotFound(w, r)
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" || cfg.Pages == nil {
			notFound(w, r)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		cfg.Pages.Home(w, r)
	})

	if cfg.Pages != nil {
		mux.HandleFunc("/map", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Pages.Map(w, r)
		})
	}

	if cfg.Auth != nil {
		mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Auth.Page(w, r)
		})
		mux.HandleFunc("/auth/", func(w http.ResponseWriter, r *http.Request) {
			action := strings.TrimPrefix(r.URL.Path, "/auth/")
			var handle http.HandlerFunc
			switch action {
			case "login":
				handle = cfg.Auth.Login
			case "register":
				handle = cfg.Auth.Register
			case "logout":
				handle = cfg.Auth.Logout
			default:
				notFound(w, r)
				return
			}
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			handle(w, r)
		})
	}

	if cfg.Rent != nil {
		mux.HandleFunc("/rent", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead:
				cfg.Rent.Page(w, r)
			case http.MethodPost:
				cfg.Rent.Submit(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
	}

	if cfg.Contact != nil {
		mux.HandleFunc("/contact", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead:
				cfg.Contact.Page(w, r)
			case http.MethodPost:
				cfg.Contact.Submit(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
	}

	if cfg.API != nil {
		mux.HandleFunc("/api/session", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.API.Session(w, r)
		})
		mux.HandleFunc("/api/storage", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.API.Storage(w, r)
		})
		mux.HandleFunc("/api/pricing", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.API.Pricing(w, r)
		})
		mux.HandleFunc("/api/distance", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.API.Distance(w, r)
		})
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.API.Health(w, r)
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, localizedStatusMessage(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
