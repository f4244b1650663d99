package panel

import (
	"context"
	_ "embed"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

//go:embed panel.html
var page []byte

// Handler routes the panel page and the websocket feed.
func Handler(h *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /ws", h)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	})
	return mux
}

// Serve runs the hub and an HTTP server on ln until ctx is done.
func Serve(ctx context.Context, ln net.Listener, h *Hub) error {
	srv := &http.Server{
		Handler:           Handler(h),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go h.Run(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			h.log.Warn("panel shutdown", zap.Error(err))
		}
	}()

	h.log.Info("panel listening", zap.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func ListenAndServe(ctx context.Context, addr string, h *Hub) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return Serve(ctx, ln, h)
}
