package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/w1xm/ptz_interface/internal/metrics"
	"github.com/w1xm/ptz_interface/rotator"
)

// Server exposes the keeper status over HTTP: a JSON snapshot, a
// websocket pushing updates as they happen, and prometheus metrics.
type Server struct {
	mu    sync.Mutex
	r     rotator.Rotator
	mount rotator.Mount

	statusMu   sync.RWMutex
	statusCond *sync.Cond
	status     Status
}

// Status is the keeper status plus the az/el view of it.
type Status struct {
	rotator.Status
	AzPos float64 `json:"az_pos"`
	ElPos float64 `json:"el_pos"`
}

func NewServer(r rotator.Rotator, mount rotator.Mount) *Server {
	s := &Server{r: r, mount: mount}
	s.statusCond = sync.NewCond(s.statusMu.RLocker())
	return s
}

// statusCallback is handed to the keeper; it republishes snapshots to
// websocket watchers.
func (s *Server) statusCallback(status rotator.Status) {
	az, el := s.mount.ToAzEl(status.PanPos, status.TiltPos)
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status = Status{Status: status, AzPos: az, ElPos: el}
	s.statusCond.Broadcast()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	s.statusMu.RLock()
	status := s.status
	s.statusMu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	data, err := json.Marshal(status)
	if err != nil {
		log.Print(err)
		return
	}
	w.Write(data)
}

// Command is a control message received over the status websocket.
type Command struct {
	Command   string  `json:"command"`
	Azimuth   float64 `json:"azimuth"`
	Elevation float64 `json:"elevation"`
}

func (s *Server) StatusSocketHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	// Read and process incoming messages
	go func() {
		for {
			var msg Command
			if err := conn.ReadJSON(&msg); err != nil {
				cancel()
				conn.Close()
				break
			}
			s.mu.Lock()
			switch msg.Command {
			case "set_pos":
				pan, tilt := s.mount.ToPanTilt(msg.Azimuth, msg.Elevation)
				s.r.SetTargetPanTilt(pan, tilt)
			case "stop":
				s.r.Stop()
			case "park":
				s.r.Park()
			}
			s.mu.Unlock()
		}
	}()

	send := func(status Status) bool {
		data, err := json.Marshal(status)
		if err != nil {
			log.Print(err)
			return false
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return false
		}
		return true
	}

	s.statusMu.RLock()
	status := s.status
	s.statusMu.RUnlock()
	if !send(status) {
		return
	}

	for {
		s.statusMu.RLock()
		s.statusCond.Wait()
		status := s.status
		s.statusMu.RUnlock()
		if ctx.Err() != nil {
			return
		}
		if !send(status) {
			return
		}
	}
}

// ListenHTTP serves the status API until ctx is canceled.
func (s *Server) ListenHTTP(ctx context.Context, addr string) error {
	r := mux.NewRouter()
	r.HandleFunc("/api/status", s.StatusHandler)
	r.HandleFunc("/api/ws", s.StatusSocketHandler)
	r.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Handler:     r,
		Addr:        addr,
		ReadTimeout: 15 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		// Wake any websocket writers stuck in Wait.
		s.statusMu.RLock()
		s.statusCond.Broadcast()
		s.statusMu.RUnlock()
	}()
	log.Printf("http status server listening on %s", addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
