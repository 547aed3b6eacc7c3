package hoststub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/taskdock/taskdock/internal/codec"
	"github.com/taskdock/taskdock/internal/host"
)

// Server serves snapshots and accepts the three outbound message types the
// panel emits.
type Server struct {
	store  *Store
	addr   string
	server *http.Server

	mu   sync.Mutex
	subs map[chan host.Snapshot]struct{}
}

// NewServer creates a server over a store.
func NewServer(store *Store, addr string) *Server {
	return &Server{
		store: store,
		addr:  addr,
		subs:  make(map[chan host.Snapshot]struct{}),
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	mux.HandleFunc("/message", s.handleMessage)
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("Starting taskdock host stub on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Apply executes one panel message against the store and returns the id it
// touched.
func (s *Server) Apply(msg host.Outbound) (string, error) {
	switch msg.Type {
	case host.MessageNewTask:
		id := uuid.New().String()
		if err := s.store.Put(id, msg.Text); err != nil {
			return "", err
		}
		return id, nil

	case host.MessageShowTask:
		d := codec.Decode(msg.Text, "")
		if d.TaskID == "" {
			return "", fmt.Errorf("edit payload missing TaskId marker")
		}
		if err := s.store.Put(d.TaskID, msg.Text); err != nil {
			return "", err
		}
		return d.TaskID, nil

	case host.MessageDeleteTask:
		if err := s.store.Delete(msg.Text); err != nil {
			return "", err
		}
		return msg.Text, nil

	default:
		return "", fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// Snapshot builds a full snapshot from the store: one single-record session
// per task.
func (s *Server) Snapshot() (host.Snapshot, error) {
	rows, err := s.store.List()
	if err != nil {
		return host.Snapshot{}, err
	}

	snap := host.Snapshot{}
	for _, r := range rows {
		snap.Sessions = append(snap.Sessions, host.Session{
			ID:      r.ID,
			Records: []host.Record{{ID: r.ID, Text: r.Text}},
		})
	}
	return snap, nil
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snap, err := s.Snapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var msg host.Outbound
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	id, err := s.Apply(msg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.broadcast()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("ws accept: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	ctx := r.Context()
	ch := s.subscribe()
	defer s.unsubscribe(ch)

	// Initial snapshot, then a push on every change.
	if snap, err := s.Snapshot(); err == nil {
		s.writeSnapshot(ctx, conn, snap)
	}

	// Reader: panel messages arrive over the same connection.
	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				readErr <- err
				return
			}
			var msg host.Outbound
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Printf("ws message unmarshal: %v", err)
				continue
			}
			if _, err := s.Apply(msg); err != nil {
				log.Printf("ws apply: %v", err)
				continue
			}
			s.broadcast()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-readErr:
			if err != nil {
				return
			}
		case snap := <-ch:
			if err := s.writeSnapshot(ctx, conn, snap); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeSnapshot(ctx context.Context, conn *websocket.Conn, snap host.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

func (s *Server) subscribe() chan host.Snapshot {
	ch := make(chan host.Snapshot, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan host.Snapshot) {
	s.mu.Lock()
	delete(s.subs, ch)
	s.mu.Unlock()
}

func (s *Server) broadcast() {
	snap, err := s.Snapshot()
	if err != nil {
		log.Printf("snapshot for broadcast: %v", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// Subscriber still draining the previous push; it will pull
			// a fresh snapshot on its next read.
		}
	}
}
