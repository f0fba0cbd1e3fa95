package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blunavi/trader/internal/broker"
	"github.com/blunavi/trader/internal/config"
	"github.com/blunavi/trader/internal/engine"
	"github.com/blunavi/trader/internal/indicator"
	"github.com/blunavi/trader/internal/journal"
	"github.com/blunavi/trader/internal/marketdata"
	"github.com/blunavi/trader/internal/metrics"
	"github.com/blunavi/trader/internal/notifier"
	"github.com/blunavi/trader/internal/position"
	"github.com/blunavi/trader/internal/risk"
	"github.com/blunavi/trader/internal/strategy"
	"github.com/blunavi/trader/internal/tfutils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n := notifier.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)

	var b broker.Broker
	if cfg.Mode == "live" {
		creds := broker.Credentials{
			APIKey:     cfg.APIKey,
			APISecret:  cfg.APISecret,
			Passphrase: cfg.APIPassphrase,
		}
		live := broker.NewLiveBroker(cfg.BrokerURL, creds)
		if !live.Enabled() {
			log.Println("Live broker credentials incomplete, all calls will fail fast")
		}
		b = live
	} else {
		b = broker.NewPaperBroker(cfg.SimBalance)
	}

	params := indicator.DefaultParams()
	params.ShortWindow = cfg.EMAShort
	params.LongWindow = cfg.EMALong
	if err := params.Validate(); err != nil {
		log.Fatalf("Invalid indicator params: %v", err)
	}

	feed := marketdata.NewHTTPFeed(cfg.BrokerURL, time.Local)
	cache := marketdata.NewCache(feed, time.Duration(cfg.CacheTTL))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Printf("Metrics server stopped: %v", err)
			}
		}()
	}

	eng := engine.New(
		engine.Config{
			Symbol:    cfg.Symbol,
			Timeframe: cfg.Timeframe,
			BarLimit:  cfg.BarLimit,
			Indicator: params,
		},
		cache,
		strategy.NewEvaluator(cfg.OpenHour, cfg.CloseHour),
		risk.NewSizer(cfg.RiskFraction),
		b,
		position.NewTracker(),
		journal.NewMemory(1000),
		m,
		n,
	)

	log.Printf("Blu Navi started: %s %s mode=%s broker=%s", cfg.Symbol, cfg.Timeframe, cfg.Mode, b.Name())

	// Evaluate once at startup, then on every bar interval, plus manual
	// commands from stdin.
	interval := tfutils.GetTimeframeDuration(cfg.Timeframe)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	commands := make(chan engine.Command)
	go readCommands(ctx, commands)

	report(eng.Dispatch(ctx, engine.CmdEvaluate))
	for {
		select {
		case <-ctx.Done():
			log.Println("Shutting down")
			return
		case <-ticker.C:
			eng.Dispatch(ctx, engine.CmdRefresh)
			report(eng.Dispatch(ctx, engine.CmdEvaluate))
		case cmd := <-commands:
			report(eng.Dispatch(ctx, cmd))
		}
	}
}

// readCommands maps stdin lines to engine commands.
func readCommands(ctx context.Context, out chan<- engine.Command) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		var cmd engine.Command
		switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
		case "evaluate", "eval":
			cmd = engine.CmdEvaluate
		case "execute", "exec":
			cmd = engine.CmdExecute
		case "close":
			cmd = engine.CmdClose
		case "refresh":
			cmd = engine.CmdRefresh
		case "quit", "exit":
			return
		default:
			fmt.Println("commands: evaluate | execute | close | refresh | quit")
			continue
		}
		select {
		case out <- cmd:
		case <-ctx.Done():
			return
		}
	}
}

func report(res engine.Result) {
	if res.Err != nil {
		log.Printf("%s: %s (%v)", res.Status, res.Message, res.Err)
		return
	}
	log.Printf("%s: %s", res.Status, res.Message)
	if res.Signal != nil && res.Decision != nil && res.Decision.Admitted {
		log.Printf("  entry %.1f sl %.1f tp %.1f size %.4f", res.Signal.Price, res.Signal.StopLoss, res.Signal.TakeProfit, res.Decision.Size)
	}
}
