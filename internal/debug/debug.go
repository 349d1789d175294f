package debug

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cloudwego/eino-ext/devops"
)

// Server exposes the eino visual debugger plus a plain health endpoint one
// port above it.
type Server struct {
	port   int
	health *http.Server
}

// Start initializes the eino devops plugin and the health endpoint.
func Start(port int) (*Server, error) {
	if err := devops.Init(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize eino debug plugin: %w", err)
	}

	s := &Server{port: port}
	s.health = &http.Server{
		Addr:         fmt.Sprintf(":%d", port+1),
		Handler:      s.healthMux(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	go func() {
		if err := s.health.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[Debug] health server error: %v", err)
		}
	}()

	log.Printf("[Debug] eino debugger at http://localhost:%d, health at http://localhost:%d/health", port, port+1)
	return s, nil
}

func (s *Server) healthMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("etfadvisor debug server is running"))
	})
	return mux
}

// URL returns the debugger's web address.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

// Close shuts down the health endpoint.
func (s *Server) Close() error {
	if s.health == nil {
		return nil
	}
	return s.health.Shutdown(context.Background())
}
