package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dhkim/gapboard/api"
	"github.com/dhkim/gapboard/internal/config"
	"github.com/dhkim/gapboard/pkg/backend"
	"github.com/dhkim/gapboard/pkg/models"
	"github.com/dhkim/gapboard/pkg/orders"
	"github.com/dhkim/gapboard/pkg/poller"
	"github.com/dhkim/gapboard/pkg/stream"
	"github.com/dhkim/gapboard/pkg/view"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	logger  *logrus.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gapboard",
		Short: "Funding-rate gap dashboard",
		Long:  `A terminal dashboard tracking the funding-rate gap between binance and bitget perpetuals, with live position streaming and order entry`,
		Run:   runDashboard,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	orderCmd := &cobra.Command{
		Use:   "order",
		Short: "Submit an order through the backend",
		Run:   runOrder,
	}
	orderCmd.Flags().String("exchange", "", "target exchange (binance or bitget)")
	orderCmd.Flags().String("action", "", "BUY, SELL, CLOSE_LONG or CLOSE_SHORT")
	orderCmd.Flags().String("symbol", "", "contract symbol, e.g. BTCUSDT")
	orderCmd.Flags().String("usd", "", "order size in USD")
	orderCmd.Flags().String("price", "", "limit price (omit for market)")
	orderCmd.Flags().Int("leverage", 0, "leverage")
	orderCmd.Flags().String("margin-mode", "", "margin mode (crossed or isolated)")
	orderCmd.Flags().String("stop-loss", "", "stop-loss price")

	bitgetCmd := &cobra.Command{
		Use:   "bitget",
		Short: "Watch bitget funding rates only",
		Run:   runBitget,
	}

	rootCmd.AddCommand(orderCmd, bitgetCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command) *config.Config {
	logger = logrus.New()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		logger.WithError(err).Error("Invalid log level, using INFO")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return cfg
}

func newBackendClient(cfg *config.Config) *backend.Client {
	opts := []backend.Option{
		backend.WithRateLimit(cfg.Backend.RequestsPerSecond),
	}

	switch cfg.Backend.AuthType {
	case "token":
		opts = append(opts, backend.WithAuthenticator(
			backend.NewTokenAuthenticator(cfg.Backend.APIToken)))
	case "jwt":
		auth, err := backend.NewJWTAuthenticator(cfg.Backend.JWTKeyName, cfg.Backend.JWTPrivateKey)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize JWT authenticator")
		}
		opts = append(opts, backend.WithAuthenticator(auth))
	}

	return backend.NewClient(cfg.Backend.BaseURL, opts...)
}

func runDashboard(cmd *cobra.Command, args []string) {
	cfg := setup(cmd)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := newBackendClient(cfg)

	screen := view.NewScreen(os.Stdout, cfg.Poll.ClearScreen)

	funding := poller.New(client, logger, screen.ApplyFunding)

	streamCfg := stream.DefaultConfig()
	streamCfg.ReconnectDelay = time.Duration(cfg.Stream.ReconnectDelayMs) * time.Millisecond
	streamCfg.MaxReconnectDelay = time.Duration(cfg.Stream.MaxReconnectDelayMs) * time.Millisecond
	streamCfg.PingInterval = time.Duration(cfg.Stream.PingIntervalSec) * time.Second

	positions := stream.NewClient(cfg.Backend.WSURL, streamCfg, logger,
		screen.ApplyPositions, screen.ApplyStatus)

	funding.Start(ctx)
	positions.Start(ctx)

	apiServer := api.NewServer(funding, screen, client, logger, cfg.Server.Port)
	go func() {
		if err := apiServer.Start(); err != nil {
			logger.WithError(err).Fatal("Failed to start status API")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Dashboard is running. Press Ctrl+C to stop.")

	<-sigChan
	logger.Info("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Status API shutdown failed")
	}

	positions.Stop()
	funding.Stop()
	cancel()

	logger.Info("Dashboard stopped")
}

func runOrder(cmd *cobra.Command, args []string) {
	cfg := setup(cmd)

	exchangeName, _ := cmd.Flags().GetString("exchange")
	actionName, _ := cmd.Flags().GetString("action")
	symbol, _ := cmd.Flags().GetString("symbol")
	usd, _ := cmd.Flags().GetString("usd")
	price, _ := cmd.Flags().GetString("price")
	leverage, _ := cmd.Flags().GetInt("leverage")
	marginMode, _ := cmd.Flags().GetString("margin-mode")
	stopLoss, _ := cmd.Flags().GetString("stop-loss")

	var exchange models.Exchange
	switch strings.ToLower(exchangeName) {
	case "binance":
		exchange = models.ExchangeBinance
	case "bitget":
		exchange = models.ExchangeBitget
	default:
		logger.Fatalf("Unknown exchange %q", exchangeName)
	}

	action := models.OrderAction(strings.ToUpper(actionName))

	form := orders.Form{
		Symbol:     symbol,
		Leverage:   leverage,
		MarginMode: marginMode,
	}

	amount, err := decimal.NewFromString(usd)
	if err != nil {
		logger.WithError(err).Fatal("Invalid usd amount")
	}
	form.USDAmount = amount

	if price != "" {
		p, err := decimal.NewFromString(price)
		if err != nil {
			logger.WithError(err).Fatal("Invalid price")
		}
		form.Price = decimal.NewNullDecimal(p)
	}
	if stopLoss != "" {
		sl, err := decimal.NewFromString(stopLoss)
		if err != nil {
			logger.WithError(err).Fatal("Invalid stop-loss price")
		}
		form.StopLoss = decimal.NewNullDecimal(sl)
	}

	ticket, err := orders.BuildTicket(exchange, action, form)
	if err != nil {
		logger.WithError(err).Fatal("Invalid order")
	}

	client := newBackendClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := client.PlaceOrder(ctx, exchange, ticket)
	if err != nil {
		logger.WithError(err).Fatal("Order submission failed")
	}

	fmt.Printf("status: %s\n", result.Status)
	if result.Message != "" {
		fmt.Printf("message: %s\n", result.Message)
	}
	if result.Status != "ok" {
		os.Exit(1)
	}
}

func runBitget(cmd *cobra.Command, args []string) {
	cfg := setup(cmd)

	client := newBackendClient(cfg)
	interval := time.Duration(cfg.Poll.BitgetIntervalSec) * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	refresh := func() {
		rows, err := client.BitgetLatest(ctx)
		if err != nil {
			logger.WithError(err).Warn("Bitget funding fetch failed")
			return
		}
		if cfg.Poll.ClearScreen {
			fmt.Print("\033[2J\033[H")
		}
		view.WriteBitgetTable(os.Stdout, poller.MapBitgetRows(rows), time.Now())
	}

	refresh()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			refresh()
		case <-ctx.Done():
			return
		}
	}
}
