package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/m3rciful/anonrelay/core/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Inbound counts user and admin messages by dispatch route.
	Inbound = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "anonrelay_inbound_messages_total",
		Help: "Inbound messages by route (album, admin, single).",
	}, []string{"route"})

	AlbumsFlushed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "anonrelay_albums_flushed_total",
		Help: "Album buffers flushed to the admin chat.",
	})
	AlbumItems = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "anonrelay_album_items_total",
		Help: "Media items sent inside flushed albums.",
	})
	AlbumsEmpty = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "anonrelay_albums_empty_total",
		Help: "Album flushes that had no supported items.",
	})

	Replies = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "anonrelay_admin_replies_total",
		Help: "Admin chat messages by reply outcome.",
	}, []string{"outcome"})

	SendFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "anonrelay_send_failures_total",
		Help: "Failed outbound Telegram calls by operation and error kind.",
	}, []string{"op", "kind"})
)

var registerOnce sync.Once

// Register adds the relay collectors to the default registry. Safe to call twice.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			Inbound,
			AlbumsFlushed, AlbumItems, AlbumsEmpty,
			Replies,
			SendFailures,
		)
	})
}

// Server exposes /metrics on a dedicated listener.
type Server struct {
	srv *http.Server
}

// Serve starts the metrics endpoint in the background. An empty addr disables it.
func Serve(addr string) *Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info(context.Background(), logger.CompMetrics, "listen", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), logger.CompMetrics, "serve", slog.String("err", err.Error()))
		}
	}()
	return &Server{srv: srv}
}

// Shutdown stops the endpoint. A nil Server is a no-op.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
