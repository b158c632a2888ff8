package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"github.com/KaramelBytes/tabloom-cli/internal/analysis"
)

const (
	maxBodyBytes = 256 << 20
	writeWait    = 10 * time.Second
)

// Progress is the body of POST /progress.
type Progress struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
}

// UpdateResponse is the reply to POST /update_data.
type UpdateResponse struct {
	Status        string `json:"status"`
	Groups        int    `json:"groups"`
	IDColumn      string `json:"id_column"`
	IDIsSynthetic bool   `json:"id_is_synthetic"`
}

// Server keeps the latest published report and relays events to websocket subscribers.
type Server struct {
	log      *slog.Logger
	hub      *Hub
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	latest   *analysis.IndicatorReport
	progress Progress
}

// NewServer creates a server. A nil logger means slog.Default().
func NewServer(log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		log: log,
		hub: NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Hub exposes the event hub.
func (s *Server) Hub() *Hub { return s.hub }

// Latest returns the last report received, or nil.
func (s *Server) Latest() *analysis.IndicatorReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Handler builds the router with middleware and CORS.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the feed endpoints on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/health", s.health)
	r.Post("/update_data", s.updateData)
	r.Post("/progress", s.postProgress)
	r.Get("/api/indicators", s.indicators)
	r.Get("/api/progress", s.getProgress)
	r.Get("/ws", s.serveWS)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("dashboard feed listening", "addr", addr)
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start))
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) updateData(w http.ResponseWriter, r *http.Request) {
	var rep analysis.IndicatorReport
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&rep); err != nil {
		http.Error(w, "invalid report JSON", http.StatusBadRequest)
		return
	}
	if rep.Groups == nil {
		rep.Groups = []analysis.ColumnGroup{}
	}
	s.mu.Lock()
	s.latest = &rep
	s.mu.Unlock()
	n := s.hub.Broadcast(Event{Type: EventReport, Report: &rep})
	s.log.Info("report received", "source", rep.Source, "groups", len(rep.Groups), "subscribers", n)
	writeJSON(w, http.StatusOK, UpdateResponse{
		Status:        "success",
		Groups:        len(rep.Groups),
		IDColumn:      rep.IDColumn,
		IDIsSynthetic: rep.IDSynthetic,
	})
}

func (s *Server) postProgress(w http.ResponseWriter, r *http.Request) {
	var p Progress
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&p); err != nil {
		http.Error(w, "invalid progress JSON", http.StatusBadRequest)
		return
	}
	if p.Processed < 0 || p.Total < 0 || p.Processed > p.Total {
		http.Error(w, "processed must be within 0..total", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.progress = p
	s.mu.Unlock()
	s.hub.Broadcast(Event{Type: EventProgress, Processed: p.Processed, Total: p.Total})
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) getProgress(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	p := s.progress
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) indicators(w http.ResponseWriter, r *http.Request) {
	rep := s.Latest()
	if rep == nil {
		http.Error(w, "no report published yet", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// serveWS streams events to one subscriber. The first message is the latest report, or a ready
// event when there is none, and is sent after the subscription is registered.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	first := Event{Type: EventReady}
	if rep := s.Latest(); rep != nil {
		first = Event{Type: EventReport, Report: rep}
	}
	if err := writeEvent(conn, first); err != nil {
		return
	}

	// Reads only detect the peer going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(conn, e); err != nil {
				s.log.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, e Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(e)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
