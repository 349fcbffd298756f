package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dhkim/gapboard/pkg/backend"
	"github.com/dhkim/gapboard/pkg/models"
	"github.com/dhkim/gapboard/pkg/orders"
	"github.com/dhkim/gapboard/pkg/poller"
	"github.com/dhkim/gapboard/pkg/view"
	"github.com/sirupsen/logrus"
)

// Server exposes the dashboard state over a small local HTTP API so
// other tooling can read the same data the terminal renders.
type Server struct {
	poller  *poller.Poller
	screen  *view.Screen
	backend *backend.Client
	logger  *logrus.Logger
	port    int

	httpServer *http.Server
}

func NewServer(p *poller.Poller, screen *view.Screen, bc *backend.Client, logger *logrus.Logger, port int) *Server {
	return &Server{
		poller:  p,
		screen:  screen,
		backend: bc,
		logger:  logger,
		port:    port,
	}
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.routes(),
	}

	s.logger.Infof("Starting status API on port %d", s.port)
	return s.httpServer.ListenAndServe()
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/funding", s.handleFunding)
	mux.HandleFunc("/api/positions", s.handlePositions)
	mux.HandleFunc("/api/sort/", s.handleSort)
	mux.HandleFunc("/api/binance/order", s.handleOrder)
	mux.HandleFunc("/api/bitget/order", s.handleOrder)

	return corsMiddleware(mux)
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status":    "healthy",
		"stream":    s.screen.ConnStatus(),
		"timestamp": time.Now().UTC(),
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleFunding(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	model := s.poller.Current()
	response := map[string]interface{}{
		"rows":        model.Rows,
		"sort_column": model.State.SortColumn,
		"sort_dir":    model.State.SortDirection,
		"fetched_at":  model.FetchedAt,
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := s.screen.Positions()
	response := map[string]interface{}{
		"stream":    s.screen.ConnStatus(),
		"notice":    snap.Notice,
		"positions": snap.Records,
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/sort/")
	column, ok := poller.ParseColumn(name)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown sort column %q", name), http.StatusBadRequest)
		return
	}

	s.poller.ToggleSort(column)

	model := s.poller.Current()
	response := map[string]interface{}{
		"sort_column": model.State.SortColumn,
		"sort_dir":    model.State.SortDirection,
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	exchange, action, err := orderTarget(r.URL.Path, r.URL.Query().Get("action"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var form orders.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ticket, err := orders.BuildTicket(exchange, action, form)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.backend.PlaceOrder(r.Context(), exchange, ticket)
	if err != nil {
		s.logger.WithError(err).WithField("exchange", exchange).Error("Order submission failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	// The backend's verdict is passed through untouched, including
	// rejections.
	s.writeJSON(w, http.StatusOK, result)
}

func orderTarget(path, action string) (models.Exchange, models.OrderAction, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", "", fmt.Errorf("unexpected order path %q", path)
	}

	var exchange models.Exchange
	switch parts[1] {
	case "binance":
		exchange = models.ExchangeBinance
	case "bitget":
		exchange = models.ExchangeBitget
	default:
		return "", "", fmt.Errorf("unknown exchange %q", parts[1])
	}

	act := models.OrderAction(strings.ToUpper(action))
	switch act {
	case models.ActionBuy, models.ActionSell, models.ActionCloseLong, models.ActionCloseShort:
		return exchange, act, nil
	}
	return "", "", fmt.Errorf("unknown order action %q", action)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("Failed to encode JSON response")
	}
}
