package engine

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// debugServer is the optional HTTP server for tree inspection.
type debugServer struct {
	server   *http.Server
	listener net.Listener
	mu       sync.Mutex
}

// StartDebugServer serves /tree, /stats and /health on port (0 picks a free
// port) and returns the port in use. Calling it again returns the running
// server's port.
func (e *Engine) StartDebugServer(port int) (int, error) {
	e.debug.mu.Lock()
	defer e.debug.mu.Unlock()

	if e.debug.server != nil {
		return e.debug.listener.Addr().(*net.TCPAddr).Port, nil
	}

	// Bind first to fail fast on port conflicts.
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return 0, fmt.Errorf("debug server listen: %w", err)
	}

	server := &http.Server{Handler: e.DebugHandler()}
	e.debug.server = server
	e.debug.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			e.debug.mu.Lock()
			e.debug.server = nil
			e.debug.listener = nil
			e.debug.mu.Unlock()
			fmt.Printf("debug server error: %v\n", err)
		}
	}()

	return listener.Addr().(*net.TCPAddr).Port, nil
}

// StopDebugServer shuts the debug server down, waiting up to two seconds.
func (e *Engine) StopDebugServer() {
	e.debug.mu.Lock()
	server := e.debug.server
	e.debug.server = nil
	e.debug.listener = nil
	e.debug.mu.Unlock()

	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}

// DebugHandler returns the handler behind StartDebugServer.
func (e *Engine) DebugHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tree", e.handleTree)
	mux.HandleFunc("/stats", e.handleStats)
	mux.HandleFunc("/health", handleHealth)
	return mux
}

func (e *Engine) handleTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			http.Error(w, fmt.Sprintf("panic: %v", rec), http.StatusInternalServerError)
		}
	}()

	root := e.Tree()
	if root == nil {
		http.Error(w, "no widget tree", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, root)
}

func (e *Engine) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, describeStats(e.Stats()))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, v any) {
	// Encode to a buffer first so errors can still change the status.
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
