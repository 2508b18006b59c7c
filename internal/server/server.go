package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cardtycoon/cardtycoon/internal/daily"
	"github.com/cardtycoon/cardtycoon/internal/economy"
	"github.com/cardtycoon/cardtycoon/internal/handler"
	"github.com/cardtycoon/cardtycoon/internal/logger"
	"github.com/cardtycoon/cardtycoon/internal/market"
	"github.com/cardtycoon/cardtycoon/internal/metrics"
	"github.com/cardtycoon/cardtycoon/internal/shop"
	"github.com/cardtycoon/cardtycoon/internal/trade"
)

// Services bundles everything the router exposes.
type Services struct {
	Shop    shop.Service
	Economy economy.Service
	Trade   trade.Service
	Market  market.Service
	Daily   daily.Service
}

type Server struct {
	httpServer *http.Server
}

// NewServer builds the router and wraps it in an http.Server.
func NewServer(port int, db handler.Pinger, svcs Services) *Server {
	r := chi.NewRouter()

	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(db))

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/account", func(r chi.Router) {
			r.Post("/register", handler.HandleRegister(svcs.Shop))
			r.Get("/profile", handler.HandleGetProfile(svcs.Shop))
			r.Post("/upgrade", handler.HandleUpgradeShop(svcs.Shop))
			r.Post("/shelves", handler.HandleBuyShelves(svcs.Shop))
			r.Get("/collections", handler.HandleCollectionProgress(svcs.Shop))
		})

		r.Route("/packs", func(r chi.Router) {
			r.Post("/buy", handler.HandleBuyPacks(svcs.Economy))
			r.Post("/open", handler.HandleOpenPack(svcs.Economy))
			r.Get("/info", handler.HandlePackInfo(svcs.Shop))
			r.Post("/gift", handler.HandleGiftPacks(svcs.Economy))
		})

		r.Post("/stock/buy", handler.HandleBuyStock(svcs.Economy))

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", handler.HandleGetInventory(svcs.Economy))
			r.Get("/card", handler.HandleGetCard(svcs.Economy))
			r.Post("/sell", handler.HandleSellCard(svcs.Economy))
			r.Post("/gift", handler.HandleGiftCard(svcs.Economy))
		})

		r.Route("/trade", func(r chi.Router) {
			r.Post("/start", handler.HandleStartTrade(svcs.Trade))
			r.Post("/offer", handler.HandleAddOffer(svcs.Trade))
			r.Post("/confirm", handler.HandleConfirmTrade(svcs.Trade))
			r.Post("/cancel", handler.HandleCancelTrade(svcs.Trade))
			r.Get("/session", handler.HandleGetTrade(svcs.Trade))
		})

		r.Route("/market", func(r chi.Router) {
			r.Get("/", handler.HandleBrowseListings(svcs.Market))
			r.Post("/list-card", handler.HandleListCard(svcs.Market))
			r.Post("/list-packs", handler.HandleListPackLot(svcs.Market))
			r.Post("/buy", handler.HandleBuyListing(svcs.Market))
			r.Post("/remove", handler.HandleRemoveListing(svcs.Market))
		})

		r.Post("/daily/claim", handler.HandleClaimDaily(svcs.Daily))
		r.Get("/leaderboard", handler.HandleLeaderboard(svcs.Shop))
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Health and metrics probes are too chatty to log.
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)
		log.Info("Request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info("Server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
