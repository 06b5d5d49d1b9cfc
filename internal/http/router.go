package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Schedules  *ScheduleHandler
	Trains     *TrainHandler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Schedules != nil {
		mux.HandleFunc("/schedules", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Schedules.Create(w, r)
		})
		mux.HandleFunc("/schedules/", func(w http.ResponseWriter, r *http.Request) {
			train := strings.TrimPrefix(r.URL.Path, "/schedules/")
			if train == "" || strings.Contains(train, "/") {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Schedules.Get(w, r.WithContext(ContextWithTrainName(r.Context(), train)))
		})
		mux.HandleFunc("/next", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Schedules.Next(w, r)
		})
	}

	if cfg.Trains != nil {
		mux.HandleFunc("/trains", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Trains.List(w, r)
		})
		mux.HandleFunc("/trains/", func(w http.ResponseWriter, r *http.Request) {
			train := strings.TrimPrefix(r.URL.Path, "/trains/")
			if train == "" || strings.Contains(train, "/") {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Trains.Get(w, r.WithContext(ContextWithTrainName(r.Context(), train)))
		})
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
