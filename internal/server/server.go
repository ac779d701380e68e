package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kballard/go-shellquote"

	"github.com/ziadkadry99/peta-ikm/internal/chart"
	"github.com/ziadkadry99/peta-ikm/internal/config"
	"github.com/ziadkadry99/peta-ikm/internal/mapdoc"
	"github.com/ziadkadry99/peta-ikm/internal/pipeline"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
	Verbose  bool
}

// Server is the display surface for the rendered map. Every request runs
// the pipeline again, so edits to the archive show up on reload.
type Server struct {
	cfg        Config
	app        *config.Config
	mu         sync.Mutex // serializes pipeline runs
	router     chi.Router
	httpServer *http.Server
}

// New creates a server that renders the map described by app.
func New(cfg Config, app *config.Config) *Server {
	s := &Server{cfg: cfg, app: app}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/", s.handleMap)
	r.Get("/regions.geojson", s.handleGeoJSON)
	r.Get("/overview.svg", s.handleOverview)

	return r
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

func (s *Server) run(ctx context.Context, full bool) (*pipeline.Output, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := pipeline.Options{Verbose: s.cfg.Verbose}
	if full {
		return pipeline.Run(ctx, s.app, opts)
	}
	return pipeline.Prepare(ctx, s.app, opts)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	out, err := s.run(r.Context(), true)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		log.Printf("server: render failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		if werr := mapdoc.WriteError(w, mapdoc.DefaultPageTitle, mapdoc.DefaultHeading, pipeline.Message(err)); werr != nil {
			log.Printf("server: writing error page: %v", werr)
		}
		return
	}
	if err := mapdoc.WritePage(w, out.Document); err != nil {
		log.Printf("server: writing page: %v", err)
	}
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	out, err := s.run(r.Context(), true)
	if err != nil {
		http.Error(w, pipeline.Message(err), http.StatusInternalServerError)
		return
	}
	data, err := out.Document.FeatureCollection().MarshalJSON()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

// handleOverview renders the overview chart whether or not the page embeds it.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	out, err := s.run(r.Context(), false)
	if err != nil {
		http.Error(w, pipeline.Message(err), http.StatusInternalServerError)
		return
	}
	svg, err := chart.Overview(pipeline.OverviewTitle, out.Result.Regions, pipeline.Selector(s.app))
	if err != nil {
		http.Error(w, pipeline.Message(err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

// URL is the local address the server is reachable at.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.cfg.Port)
}

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("petaikm server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// BrowserCommand returns the command that opens url. A non-empty custom
// command is split shell-style and url is appended as the last argument.
func BrowserCommand(custom, url string) ([]string, error) {
	if custom != "" {
		args, err := shellquote.Split(custom)
		if err != nil {
			return nil, fmt.Errorf("parsing browser command %q: %w", custom, err)
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("browser command %q is empty", custom)
		}
		return append(args, url), nil
	}
	switch runtime.GOOS {
	case "windows":
		return []string{"cmd", "/c", "start", url}, nil
	case "darwin":
		return []string{"open", url}, nil
	default:
		return []string{"xdg-open", url}, nil
	}
}

// OpenBrowser opens url with the custom command, or the platform default.
func OpenBrowser(custom, url string) error {
	args, err := BrowserCommand(custom, url)
	if err != nil {
		return err
	}
	return exec.Command(args[0], args[1:]...).Start()
}
