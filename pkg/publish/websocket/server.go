package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/ws8610/pkg/framework"
	"github.com/robotalks/ws8610/pkg/msgs"
	"github.com/robotalks/ws8610/pkg/ws8610"
)

// Event types sent on the stream.
const (
	EventStation = "station"
	EventMeasure = "measure"
	EventStats   = "stats"
)

// DefaultRecent is the default number of measures kept for /measures.
const DefaultRecent = 100

// subscriberBuffer is the number of events queued per stream client.
const subscriberBuffer = 32

// Event is the envelope of messages on the stream.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Server serves measures over HTTP and streams them over websocket.
type Server struct {
	Addr   string
	Info   *msgs.StationInfo
	Recent int

	lock        sync.RWMutex
	recent      []*msgs.Measure
	stats       *msgs.Stats
	subscribers map[chan Event]struct{}
}

// NewServer creates a Server.
func NewServer(addr string, info *msgs.StationInfo) *Server {
	return &Server{
		Addr:        addr,
		Info:        info,
		Recent:      DefaultRecent,
		subscribers: make(map[chan Event]struct{}),
	}
}

// Name implements framework.Named.
func (s *Server) Name() string {
	return "http"
}

// AddToLoop implements LoopAdder.
func (s *Server) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvPublish, s)
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/info", s.handleInfo)
	r.Get("/measures", s.handleMeasures)
	r.Get("/stats", s.handleStats)
	r.Handle("/stream", websocket.Handler(s.serveStream))
	return r
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.Addr, Handler: s.Handler()}
	glog.Infof("http listening on %s", s.Addr)
	return fx.RunWithContextCancel(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}, srv.ListenAndServe)
}

// Control implements Controller.
func (s *Server) Control(cc fx.ControlContext) error {
	for _, m := range fx.Measures(cc.Messages()) {
		s.PublishMeasure(m)
	}
	if st, ok := fx.LatestStats(cc.Messages()); ok {
		s.PublishStats(st.Stats, st.Time.UnixMilli())
	}
	return nil
}

// PublishMeasure records the measure and sends it to all stream clients.
func (s *Server) PublishMeasure(m ws8610.Measure) {
	msg := msgs.NewMeasure(s.Info.Station, s.Info.BootID, m)
	s.lock.Lock()
	s.recent = append(s.recent, msg)
	if limit := s.Recent; limit > 0 && len(s.recent) > limit {
		s.recent = append(s.recent[:0], s.recent[len(s.recent)-limit:]...)
	}
	s.lock.Unlock()
	s.broadcast(Event{Type: EventMeasure, Payload: msg})
}

// PublishStats records the counters and sends them to all stream clients.
func (s *Server) PublishStats(st ws8610.Stats, unixMs int64) {
	msg := msgs.NewStats(s.Info.Station, s.Info.BootID, unixMs, st)
	s.lock.Lock()
	s.stats = msg
	s.lock.Unlock()
	s.broadcast(Event{Type: EventStats, Payload: msg})
}

// broadcast drops clients which can't keep up.
func (s *Server) broadcast(ev Event) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			glog.Warning("stream client too slow, dropped")
			delete(s.subscribers, ch)
			close(ch)
		}
	}
}

func (s *Server) subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)
	ch <- Event{Type: EventStation, Payload: s.Info}
	s.lock.Lock()
	s.subscribers[ch] = struct{}{}
	s.lock.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan Event) {
	s.lock.Lock()
	if _, ok := s.subscribers[ch]; ok {
		delete(s.subscribers, ch)
		close(ch)
	}
	s.lock.Unlock()
}

func (s *Server) serveStream(conn *websocket.Conn) {
	ch := s.subscribe()
	defer s.unsubscribe(ch)
	glog.V(2).Infof("stream client %s connected", conn.Request().RemoteAddr)

	// the connection is closed by the client, nothing else is expected.
	closed := make(chan struct{})
	go func() {
		var discard []byte
		for websocket.Message.Receive(conn, &discard) == nil {
		}
		close(closed)
	}()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := websocket.JSON.Send(conn, ev); err != nil {
				glog.V(2).Infof("stream client %s: %v", conn.Request().RemoteAddr, err)
				return
			}
		case <-closed:
			return
		}
	}
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Info)
}

func (s *Server) handleMeasures(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if str := r.URL.Query().Get("limit"); str != "" {
		n, err := strconv.Atoi(str)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	s.lock.RLock()
	measures := s.recent
	if limit > 0 && len(measures) > limit {
		measures = measures[len(measures)-limit:]
	}
	measures = append([]*msgs.Measure{}, measures...)
	s.lock.RUnlock()
	writeJSON(w, measures)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.lock.RLock()
	st := s.stats
	s.lock.RUnlock()
	if st == nil {
		http.Error(w, "no stats yet", http.StatusNotFound)
		return
	}
	writeJSON(w, st)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		glog.Warningf("write response: %v", err)
	}
}
