// Package api serves the demo host over HTTP: the rendered window as an MJPEG
// stream, browser pointer input over a websocket, and a small JSON API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/bryanchriswhite/shotlayout/internal/config"
	"github.com/bryanchriswhite/shotlayout/internal/logger"
	"github.com/bryanchriswhite/shotlayout/internal/looper"
	"github.com/bryanchriswhite/shotlayout/internal/output"
	"github.com/bryanchriswhite/shotlayout/internal/replay"
	"github.com/bryanchriswhite/shotlayout/internal/session"
)

// ThumbnailWidth is the width of screenshot thumbnails
const ThumbnailWidth = 160

// Server represents the HTTP API server
type Server struct {
	router    *mux.Router
	loop      *looper.Looper
	session   *session.Session
	configMgr *config.Manager
	stream    *output.MJPEGOutput
	hub       *Hub
	upgrader  websocket.Upgrader
	http      *http.Server
}

// PointerMessage is one browser pointer transition
type PointerMessage struct {
	Type   string  `json:"type"`
	Action string  `json:"action"`
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Status reports the overlay state
type Status struct {
	Phase    string    `json:"phase"`
	Progress float64   `json:"progress"`
	Dragging bool      `json:"dragging"`
	ScrollY  float64   `json:"scroll_y"`
	Clients  int       `json:"clients"`
	History  []Message `json:"history"`
}

// Shot describes a stored screenshot
type Shot struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// NewServer creates a new API server. The session must only be touched from
// loop; the server posts every access there.
func NewServer(loop *looper.Looper, sess *session.Session, configMgr *config.Manager, stream *output.MJPEGOutput, hub *Hub) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		loop:      loop,
		session:   sess,
		configMgr: configMgr,
		stream:    stream,
		hub:       hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // the demo is served to localhost only
			},
		},
	}

	s.setupRoutes()
	s.attachRenderer()
	return s
}

// attachRenderer redraws the window into the stream on the first frame
// after any invalidation. Both callbacks run on the loop.
func (s *Server) attachRenderer() {
	dirty := true
	win := s.session.Window()
	win.OnInvalidate(func() { dirty = true })
	s.loop.OnFrame(func(time.Time) {
		if !dirty || !s.stream.IsRunning() {
			return
		}
		dirty = false
		if err := s.stream.WriteFrame(win.Render()); err != nil {
			logger.WithComponent("server").Warn().Err(err).Msg("Failed to publish frame")
		}
	})
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/gesture/pulldown", s.handlePullDown).Methods("POST")
	api.HandleFunc("/shots", s.handleListShots).Methods("GET")
	api.HandleFunc("/shots/{name}/thumbnail", s.handleThumbnail).Methods("GET")
	api.HandleFunc("/config", s.handleGetConfig).Methods("GET")
	api.HandleFunc("/stream/stats", s.stream.StatsHandler()).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/stream", s.stream.StreamHandler()).Methods("GET")
	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
}

// Router exposes the routes, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves on port until Shutdown
func (s *Server) Start(port int) error {
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.WithComponent("server").Info().Str("addr", s.http.Addr).Msg("HTTP server starting")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// onLoop runs f on the UI loop and waits for it
func (s *Server) onLoop(ctx context.Context, f func()) error {
	done := make(chan struct{})
	s.loop.Post(func() {
		f()
		close(done)
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var st Status
	err := s.onLoop(r.Context(), func() {
		gs := s.session.Overlay.GestureState()
		st = Status{
			Phase:    s.session.Overlay.Phase().String(),
			Progress: gs.Progress,
			Dragging: gs.Dragging,
			ScrollY:  s.session.Host.List().ScrollY(),
		}
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	st.Clients = s.hub.Clients()
	st.History = s.hub.History()
	writeJSON(w, st)
}

// handlePullDown plays the three finger gesture on the live window, one step
// per frame, for browsers without multi-touch.
func (s *Server) handlePullDown(w http.ResponseWriter, r *http.Request) {
	var size image.Point
	var density float64
	if err := s.onLoop(r.Context(), func() {
		size = s.session.Window().Size()
		density = s.session.Window().Density()
	}); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	cfg := s.configMgr.Get()
	travel := float64(cfg.Overlay.TriggerDistanceDp)*density + 20
	y0 := float64(size.Y)/2 - travel/2
	script := replay.PullDown(float64(size.X)/2, y0, travel)

	go func() {
		log := logger.WithComponent("server")
		for _, st := range script.Steps {
			st := st
			s.loop.Post(func() {
				if err := s.session.Pointer(st.Action, st.ID, st.X, st.Y); err != nil {
					log.Warn().Err(err).Str("action", st.Action).Msg("Scripted pointer rejected")
				}
			})
			time.Sleep(script.Frame())
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]int{"steps": len(script.Steps)})
}

func (s *Server) handleListShots(w http.ResponseWriter, r *http.Request) {
	dir := s.session.Store.Dir()
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	shots := make([]Shot, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		shots = append(shots, Shot{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(shots, func(i, j int) bool { return shots[i].ModTime.After(shots[j].ModTime) })
	writeJSON(w, shots)
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if name != filepath.Base(name) || !strings.HasSuffix(name, ".png") {
		http.Error(w, "invalid screenshot name", http.StatusBadRequest)
		return
	}

	img, err := imaging.Open(filepath.Join(s.session.Store.Dir(), name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	thumb := imaging.Resize(img, ThumbnailWidth, 0, imaging.Lanczos)
	w.Header().Set("Content-Type", "image/png")
	if err := imaging.Encode(w, thumb, imaging.PNG); err != nil {
		logger.WithComponent("server").Warn().Err(err).Str("name", name).Msg("Failed to write thumbnail")
	}
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.configMgr.Get())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// handleWebSocket receives pointer messages and pushes hub messages back
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	log := logger.WithComponent("server")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	c := s.hub.register(conn)
	go c.writePump()
	defer s.hub.unregister(c)

	log.Info().Int("clients", s.hub.Clients()).Msg("WebSocket client connected")

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg PointerMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("WebSocket read error")
			}
			break
		}
		if msg.Type != "pointer" {
			continue
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		s.loop.Post(func() {
			if err := s.session.Pointer(msg.Action, msg.ID, msg.X, msg.Y); err != nil {
				log.Debug().Err(err).Str("action", msg.Action).Int("id", msg.ID).Msg("Pointer rejected")
			}
		})
	}

	// a vanished browser must not leave pointers down
	s.loop.Post(func() {
		s.session.Pointer("cancel", 0, 0, 0)
	})
	log.Info().Msg("WebSocket client disconnected")
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}
