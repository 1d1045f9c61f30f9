// Package server exposes the calculator graph over HTTP, with an event log
// and a server-sent event stream of state changes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/ratecalc/internal/currency"
	"github.com/theirongolddev/ratecalc/internal/field"
	"github.com/theirongolddev/ratecalc/internal/graph"
	"github.com/theirongolddev/ratecalc/internal/ratesource"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr            string
	EventsBuffer    int
	RefreshInterval time.Duration // 0 disables periodic refresh
}

// RateSaver persists fetched tables so the next start can use them offline.
type RateSaver interface {
	SaveRates(t currency.Table) error
}

// RatesInfo summarizes the current rate table.
type RatesInfo struct {
	Base      string    `json:"base,omitempty"`
	Count     int       `json:"count"`
	FetchedAt time.Time `json:"fetched_at,omitempty"`
}

// State is the full calculator state served at /v1/state.
type State struct {
	Fields  []graph.View `json:"fields"`
	Focused string       `json:"focused,omitempty"`
	Amount  string       `json:"amount"`
	Yearly  string       `json:"yearly"`
	Rates   RatesInfo    `json:"rates"`
}

// Event is emitted whenever the state changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Field     string    `json:"field,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	State     State     `json:"state"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt          time.Time `json:"started_at"`
	LastRefreshAt      time.Time `json:"last_refresh_at"`
	RefreshIntervalSec int       `json:"refresh_interval_sec"`
	RefreshCount       int64     `json:"refresh_count"`
	Offline            bool      `json:"offline"`
	LastError          string    `json:"last_error,omitempty"`
	RateCount          int       `json:"rate_count"`
	EventCount         int       `json:"event_count"`
	SubscriberCount    int       `json:"subscriber_count"`
}

// Service serializes every call into the graph behind one mutex.
type Service struct {
	cfg Config

	// Saver, when set, receives every successfully fetched table.
	Saver RateSaver

	mu            sync.RWMutex
	graph         *graph.Graph
	refresher     *ratesource.Refresher
	startedAt     time.Time
	lastRefreshAt time.Time
	refreshCount  int64
	lastError     string
	nextEventID   int64
	events        []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a service over g. A nil refresher means offline: the graph
// keeps whatever table it already has.
func New(cfg Config, g *graph.Graph, r *ratesource.Refresher) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if cfg.RefreshInterval > 0 && cfg.RefreshInterval < 10*time.Second {
		cfg.RefreshInterval = 10 * time.Second
	}

	return &Service{
		cfg:       cfg,
		graph:     g,
		refresher: r,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/state", s.handleState)
	mux.HandleFunc("POST /v1/focus", s.handleFocus)
	mux.HandleFunc("POST /v1/edit", s.handleEdit)
	mux.HandleFunc("POST /v1/blur", s.handleBlur)
	mux.HandleFunc("POST /v1/refresh", s.handleRefresh)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	return mux
}

// Run serves HTTP and refreshes rates until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Printf("ratecalc: serving on http://%s", s.cfg.Addr)

	var tick <-chan time.Time
	if s.refresher != nil {
		go s.RefreshOnce(ctx)
		if s.cfg.RefreshInterval > 0 {
			ticker := time.NewTicker(s.cfg.RefreshInterval)
			defer ticker.Stop()
			tick = ticker.C
		}
	}

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			if s.refresher != nil {
				s.refresher.Cancel()
			}
			s.mu.Unlock()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-tick:
			go s.RefreshOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("ratecalc http server: %w", err)
		}
	}
}

// RefreshOnce fetches a new table and applies it to the graph. It returns
// immediately if a refresh is already running.
func (s *Service) RefreshOnce(ctx context.Context) {
	if s.refresher == nil {
		return
	}

	s.mu.Lock()
	job := s.refresher.Start(ctx)
	s.mu.Unlock()
	if job == nil {
		return
	}

	res := job.Run()

	s.mu.Lock()
	applied := s.refresher.Complete(res)
	s.lastRefreshAt = time.Now()
	s.refreshCount++
	var persistErr error
	if applied {
		s.lastError = ""
		persistErr = s.graph.SetRates(s.refresher.Table())
		s.publishEventLocked("rates", "")
	} else if res.Err != nil {
		s.lastError = res.Err.Error()
	}
	s.mu.Unlock()

	if persistErr != nil {
		log.Printf("ratecalc: saving after rate refresh: %v", persistErr)
	}
	if applied && s.Saver != nil {
		if err := s.Saver.SaveRates(res.Table); err != nil {
			log.Printf("ratecalc: caching rates: %v", err)
		}
	}
}

// stateLocked must be called with s.mu held.
func (s *Service) stateLocked() State {
	v := s.graph.Values()
	t := s.graph.Rates()
	return State{
		Fields:  s.graph.Views(),
		Focused: s.graph.Focused(),
		Amount:  field.Format(v.Amount),
		Yearly:  field.Format(v.Yearly),
		Rates: RatesInfo{
			Base:      t.Base(),
			Count:     t.Len(),
			FetchedAt: t.FetchedAt(),
		},
	}
}

// publishEventLocked numbers a new event, appends it to the ring and hands
// it to subscribers that have room. Numbering and delivery share s.mu, so
// the ring and every subscriber see IDs in increasing order.
func (s *Service) publishEventLocked(typ, fieldID string) Event {
	s.nextEventID++
	ev := Event{
		ID:        s.nextEventID,
		Type:      typ,
		Field:     fieldID,
		Timestamp: time.Now(),
		State:     s.stateLocked(),
	}

	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return ev
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:          s.startedAt,
		LastRefreshAt:      s.lastRefreshAt,
		RefreshIntervalSec: int(s.cfg.RefreshInterval.Seconds()),
		RefreshCount:       s.refreshCount,
		Offline:            s.refresher == nil,
		LastError:          s.lastError,
		RateCount:          s.graph.Rates().Len(),
		EventCount:         len(s.events),
		SubscriberCount:    len(s.subs),
	}
}

type fieldRequest struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
	State *State `json:"state,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// mutate decodes a field request, applies op under the lock and replies
// with the new state.
func (s *Service) mutate(w http.ResponseWriter, r *http.Request, typ string, op func(req fieldRequest) error) {
	var req fieldRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	s.mu.Lock()
	err := op(req)
	switch {
	case errors.Is(err, graph.ErrUnknownField):
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, field.ErrReadOnly):
		s.mu.Unlock()
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	}
	ev := s.publishEventLocked(typ, req.ID)
	s.mu.Unlock()

	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), State: &ev.State})
		return
	}
	writeJSON(w, http.StatusOK, ev.State)
}

func (s *Service) handleFocus(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "focus", func(req fieldRequest) error { return s.graph.Focus(req.ID) })
}

func (s *Service) handleEdit(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "edit", func(req fieldRequest) error { return s.graph.Edit(req.ID, req.Text) })
}

func (s *Service) handleBlur(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "blur", func(req fieldRequest) error {
		if _, err := s.graph.View(req.ID); err != nil {
			return err
		}
		s.graph.Blur(req.ID)
		return nil
	})
}

func (s *Service) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "offline: rate refresh disabled"})
		return
	}
	s.RefreshOnce(r.Context())
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleState(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	st := s.stateLocked()
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, st)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current state immediately.
	s.mu.RLock()
	current := Event{
		Type:      "state",
		Timestamp: time.Now(),
		State:     s.stateLocked(),
	}
	s.mu.RUnlock()
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
