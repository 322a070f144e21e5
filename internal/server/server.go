// Package server serves an assembled deck over HTTP with export endpoints
// and live reload.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	slidedeck "github.com/alnah/go-slidedeck"
)

// ShutdownTimeout bounds graceful shutdown of in-flight requests.
const ShutdownTimeout = 10 * time.Second

// Content types of exported artifacts.
const (
	contentTypePDF  = "application/pdf"
	contentTypePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// Server serves one deck at a time. Exports run on a dedicated headless
// stage, one job at a time; the browser page only tracks the job state.
type Server struct {
	stage      slidedeck.DeckStage
	assemblers map[slidedeck.ExportKind]slidedeck.Assembler
	opts       []slidedeck.Option
	timeout    time.Duration
	logger     *zap.Logger
	broker     *Broker

	deck atomic.Pointer[slidedeck.Deck]

	// job serializes exports and reloads of the stage.
	job    sync.Mutex
	pres   *slidedeck.Presentation
	loaded *slidedeck.Deck
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithExportOptions sets the options used for every export job.
func WithExportOptions(opts ...slidedeck.Option) Option {
	return func(s *Server) { s.opts = append(s.opts, opts...) }
}

// WithExportTimeout bounds each export request, deck loading included.
// Zero means no limit beyond the request context.
func WithExportTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// New creates a Server exporting deck through stage with the given
// assemblers. The caller keeps ownership of stage.
func New(deck *slidedeck.Deck, stage slidedeck.DeckStage, assemblers []slidedeck.Assembler, opts ...Option) *Server {
	s := &Server{
		stage:      stage,
		assemblers: make(map[slidedeck.ExportKind]slidedeck.Assembler, len(assemblers)),
		logger:     zap.NewNop(),
		broker:     NewBroker(),
	}
	for _, a := range assemblers {
		s.assemblers[a.Kind()] = a
	}
	for _, opt := range opts {
		opt(s)
	}
	// The success label only matters to an interactive stage.
	s.opts = append(s.opts, slidedeck.WithLogger(s.logger), slidedeck.WithSuccessLinger(0))
	s.deck.Store(deck)
	return s
}

// Deck returns the deck currently served.
func (s *Server) Deck() *slidedeck.Deck {
	return s.deck.Load()
}

// Reload swaps the served deck and tells connected pages to refresh.
func (s *Server) Reload(deck *slidedeck.Deck) {
	s.deck.Store(deck)
	s.logger.Info("deck reloaded", zap.Int("slides", deck.Slides))
	s.broker.Publish(Event{Type: "reload", Data: map[string]int{"slides": deck.Slides}})
}

// Close disconnects live-reload clients.
func (s *Server) Close() {
	s.broker.Close()
}

// Router returns the HTTP routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleDeck)
	r.Get("/healthz", s.handleHealth)
	r.Get("/api/slides", s.handleSlides)
	r.Get("/events", s.broker.ServeHTTP)
	r.Post("/export/{kind}", s.handleExport)
	return r
}

func (s *Server) handleDeck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(s.Deck().HTML))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type slideDTO struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

type deckDTO struct {
	Title  string     `json:"title"`
	Slides []slideDTO `json:"slides"`
}

func (s *Server) handleSlides(w http.ResponseWriter, _ *http.Request) {
	deck := s.Deck()
	text, err := deck.Text()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	out := deckDTO{Title: deck.Title, Slides: make([]slideDTO, len(text))}
	for i, t := range text {
		out.Slides[i] = slideDTO{Title: t.Title, Lines: t.Lines}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	kind, err := slidedeck.ParseExportKind(chi.URLParam(r, "kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	a, ok := s.assemblers[kind]
	if !ok {
		http.Error(w, fmt.Sprintf("%s export not configured", kind), http.StatusNotFound)
		return
	}

	if !s.job.TryLock() {
		http.Error(w, slidedeck.ErrExportRunning.Error(), http.StatusConflict)
		return
	}
	defer s.job.Unlock()

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	p, err := s.presentation(ctx)
	if err != nil {
		s.logger.Error("loading deck for export", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sink := &slidedeck.MemorySink{}
	exp := slidedeck.NewExporter(s.stage, s.opts...)
	if _, err := exp.Export(ctx, p, a, sink); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, slidedeck.ErrExportRunning) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	name, data, _ := sink.Last()
	w.Header().Set("Content-Type", contentType(kind))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// presentation returns the export presentation, loading the served deck
// into the stage when it changed since the last job. Caller must hold
// s.job.
func (s *Server) presentation(ctx context.Context) (*slidedeck.Presentation, error) {
	deck := s.Deck()
	if s.pres != nil && s.loaded == deck {
		return s.pres, nil
	}
	n, err := s.stage.Load(ctx, deck)
	if err != nil {
		return nil, err
	}
	if n != deck.Slides {
		return nil, fmt.Errorf("%w: page has %d slides, deck has %d", slidedeck.ErrAssembly, n, deck.Slides)
	}
	s.pres = slidedeck.NewPresentation(n, s.stage)
	s.loaded = deck
	return s.pres, nil
}

func contentType(kind slidedeck.ExportKind) string {
	if kind == slidedeck.KindPPTX {
		return contentTypePPTX
	}
	return contentTypePDF
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// ListenAndServe runs srv until ctx is cancelled, then shuts it down
// gracefully.
func ListenAndServe(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}
