// Package preview serves a rendered figure over a local HTTP listener so it
// can be opened in a browser without writing a file first.
package preview

import (
	"context"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"voronoimap/pkg/errors"
)

// DefaultAddr binds to the loopback interface on an ephemeral port.
const DefaultAddr = "127.0.0.1:0"

// Server serves a single rendered document.
type Server struct {
	content     []byte
	contentType string
	logger      *log.Logger

	listener net.Listener
	srv      *http.Server
}

// New creates a preview server for a rendered document. The content type
// should match the artifact format (text/html for the default HTML output).
func New(content []byte, contentType string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		content:     content,
		contentType: contentType,
		logger:      logger,
	}
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", s.contentType)
		w.Write(s.content)
	})
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return r
}

// Start binds the listener and begins serving in the background. It returns
// the URL the figure is reachable at.
func (s *Server) Start(addr string) (string, error) {
	if addr == "" {
		addr = DefaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeResource, err, "listen on %s", addr)
	}
	s.listener = ln
	s.srv = &http.Server{
		Handler:           s.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("preview server stopped", "error", err)
		}
	}()

	url := "http://" + ln.Addr().String()
	s.logger.Info("serving preview", "url", url)
	return url, nil
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// OpenBrowser launches the platform browser for a URL. Failure is not fatal:
// the URL is logged either way, so the caller can open it by hand.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
