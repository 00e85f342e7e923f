package cli

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orbit/pkg/buildinfo"
	"github.com/matzehuels/orbit/pkg/datasource"
	"github.com/matzehuels/orbit/pkg/export"
	"github.com/matzehuels/orbit/pkg/hierarchy"
)

const (
	serveReadTimeout     = 10 * time.Second
	serveWriteTimeout    = 30 * time.Second
	serveShutdownTimeout = 5 * time.Second
)

// treeHolder guards the served snapshot; a live stream swaps it while
// requests read it.
type treeHolder struct {
	mu   sync.RWMutex
	tree *hierarchy.Tree
}

func (h *treeHolder) get() *hierarchy.Tree {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tree
}

func (h *treeHolder) set(t *hierarchy.Tree) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tree = t
}

// serveServer bundles the router dependencies so tests can exercise the
// handlers without a listening socket.
type serveServer struct {
	logger  *log.Logger
	trees   *treeHolder
	content datasource.Provider // optional; nil disables /api/node
}

// router builds the chi handler tree.
func (s *serveServer) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(serveWriteTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/tree", s.handleTree)
		r.Get("/node/{id}", s.handleNodeContent)
		r.Get("/export.{format}", s.handleExport)
	})
	return r
}

func (s *serveServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok " + buildinfo.Version + "\n"))
}

func (s *serveServer) handleTree(w http.ResponseWriter, r *http.Request) {
	t := s.trees.get()
	if t == nil {
		http.Error(w, "no snapshot loaded", http.StatusServiceUnavailable)
		return
	}
	data, err := hierarchy.MarshalTree(t)
	if err != nil {
		s.logger.Error("marshal snapshot", "err", err)
		http.Error(w, "marshal snapshot", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *serveServer) handleNodeContent(w http.ResponseWriter, r *http.Request) {
	if s.content == nil {
		http.Error(w, "no content source configured", http.StatusNotFound)
		return
	}
	id := chi.URLParam(r, "id")
	t := s.trees.get()
	if t == nil {
		http.Error(w, "no snapshot loaded", http.StatusServiceUnavailable)
		return
	}
	if _, ok := t.Node(id); !ok {
		http.Error(w, "unknown node", http.StatusNotFound)
		return
	}
	data, err := s.content.FetchContent(r.Context(), id)
	if err != nil {
		s.logger.Warn("fetch content", "node", id, "err", err)
		http.Error(w, "fetch content", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *serveServer) handleExport(w http.ResponseWriter, r *http.Request) {
	t := s.trees.get()
	if t == nil {
		http.Error(w, "no snapshot loaded", http.StatusServiceUnavailable)
		return
	}
	dot := export.ToDOT(t, export.Options{
		SelectedID: r.URL.Query().Get("selected"),
		Title:      r.URL.Query().Get("title"),
	})

	switch chi.URLParam(r, "format") {
	case formatDOT:
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(dot))
	case formatSVG:
		data, err := export.RenderSVG(r.Context(), dot)
		if err != nil {
			s.logger.Error("render svg", "err", err)
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(data)
	case formatPNG:
		data, err := export.RenderPNG(r.Context(), dot)
		if err != nil {
			s.logger.Error("render png", "err", err)
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	default:
		http.Error(w, "unknown format", http.StatusNotFound)
	}
}

// serveCommand creates the HTTP server command.
func (c *CLI) serveCommand() *cobra.Command {
	var flags sourceFlags
	var (
		addr      string
		streamURL string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve tree snapshots and exports over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			if streamURL != "" {
				cfg.StreamURL = streamURL
			}

			tree, provider, err := c.loadTree(ctx, flags, cfg)
			if err != nil {
				return err
			}

			srv := &serveServer{logger: c.Logger, trees: &treeHolder{tree: tree}}
			if provider != nil {
				srv.content = provider
			}

			if cfg.StreamURL != "" {
				stream, err := datasource.NewStreamSource(datasource.StreamOptions{
					URL:    cfg.StreamURL,
					Logger: c.Logger,
				})
				if err != nil {
					return err
				}
				go func() {
					_ = stream.Run(ctx, func(t *hierarchy.Tree) {
						srv.trees.set(t)
						c.Logger.Info("snapshot updated from stream", "nodes", t.NodeCount())
					})
				}()
			}

			httpSrv := &http.Server{
				Addr:         addr,
				Handler:      srv.router(),
				ReadTimeout:  serveReadTimeout,
				WriteTimeout: serveWriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() { errCh <- httpSrv.ListenAndServe() }()
			c.Logger.Info("serving", "addr", addr)
			printInfo("Listening on %s", StyleLink.Render("http://"+addr))

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), serveShutdownTimeout)
				defer cancel()
				return httpSrv.Shutdown(shutdownCtx)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "Listen address")
	cmd.Flags().StringVar(&streamURL, "stream-url", "", "Websocket URL for live snapshot updates")
	return cmd
}
