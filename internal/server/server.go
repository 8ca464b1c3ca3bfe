package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/michaelbrown/dhmcp/internal/tools"
)

const (
	// Name and Version identify the server to MCP clients.
	Name    = "dhmcp"
	Version = "0.1.0"
)

// Server wraps an mcp-go server and serves it over stdio or HTTP.
type Server struct {
	mcp  *mcpserver.MCPServer
	http *http.Server
}

// New builds the MCP server with the full tool surface registered.
func New(deps tools.Deps) *Server {
	s := mcpserver.NewMCPServer(Name, Version)
	tools.Register(s, deps)
	return &Server{mcp: s}
}

// ServeStdio serves MCP over stdin/stdout until EOF.
func (s *Server) ServeStdio() error {
	return mcpserver.ServeStdio(s.mcp)
}

func (s *Server) router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// mcp-go owns everything under /mcp: framing, sessions, dispatch.
	streamable := mcpserver.NewStreamableHTTPServer(s.mcp,
		mcpserver.WithEndpointPath("/mcp"))
	r.Handle("/mcp", streamable)

	return r
}

// StartHTTP serves MCP over streamable HTTP at /mcp, plus /healthz.
// Blocks until Shutdown is called.
func (s *Server) StartHTTP(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router(),
	}

	log.Printf("dhmcp server listening on http://%s/mcp", addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server, if one is running.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return s.http.Shutdown(shutdownCtx)
}
