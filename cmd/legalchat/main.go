package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"LegalChat/internal/backend"
	"LegalChat/internal/chatbot"
	"LegalChat/internal/config"
	"LegalChat/internal/telemetry"
	"LegalChat/internal/transcript"
	"LegalChat/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("legalchat", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a TOML config file")
	envFile := fs.String("env-file", ".env", "Path to a .env file (ignored if missing)")
	endpoint := fs.String("endpoint", "", "Chat endpoint URL")
	token := fs.String("csrf-token", "", "Anti-forgery token sent with every request")
	tokenFile := fs.String("csrf-token-file", "", "File holding the anti-forgery token, re-read on every request")
	header := fs.String("csrf-header", "", "Header carrying the anti-forgery token (default X-CSRFToken)")
	timeout := fs.Duration("timeout", config.DefaultTimeout, "Request timeout, 0 disables")
	journal := fs.String("journal", "", "SQLite file recording exchange outcomes")
	plain := fs.Bool("plain", false, "Line mode instead of the full-screen UI")
	clock24h := fs.Bool("24h", false, "Show timestamps in 24-hour format")
	debug := fs.Bool("debug", false, "Enable debug logging")
	noTelemetry := fs.Bool("no-telemetry", false, "Disable trace and metric export")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		return err
	}

	// flags override everything else, but only when given
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "endpoint":
			cfg.Endpoint = *endpoint
		case "csrf-token":
			cfg.CSRFToken = *token
		case "csrf-token-file":
			cfg.CSRFTokenFile = *tokenFile
		case "csrf-header":
			cfg.CSRFHeader = *header
		case "timeout":
			cfg.Timeout = config.Duration{Duration: *timeout}
		case "journal":
			cfg.JournalPath = *journal
		case "plain":
			cfg.Plain = *plain
		case "24h":
			cfg.Clock24h = *clock24h
		case "debug":
			cfg.Debug = *debug
		case "no-telemetry":
			cfg.Telemetry = !*noTelemetry
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, logFile, err := telemetry.InitLogger(cfg.LogDir, cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracer, meter, cleanup, err := telemetry.InitTelemetry(ctx, cfg.LogDir, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer cleanup()

	var tokens backend.TokenSource = backend.StaticToken(cfg.CSRFToken)
	if cfg.CSRFTokenFile != "" {
		tokens = backend.FileToken(cfg.CSRFTokenFile)
	}

	client, err := backend.NewClient(backend.Options{
		Endpoint:   cfg.Endpoint,
		Tokens:     tokens,
		CSRFHeader: cfg.CSRFHeader,
		Timeout:    cfg.Timeout.Duration,
		Logger:     logger,
		Tracer:     tracer,
		Meter:      meter,
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	opts := chatbot.Options{
		Transport: client,
		Renderer:  &transcript.Renderer{Clock24h: cfg.Clock24h},
		Logger:    logger,
		Tracer:    tracer,
		Meter:     meter,
	}

	if cfg.JournalPath != "" {
		j, err := telemetry.OpenJournal(cfg.JournalPath)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer j.Close()
		opts.Journal = j
	}

	logger.Info("starting", "endpoint", cfg.Endpoint, "plain", cfg.Plain, "timeout", cfg.Timeout.Duration)

	if cfg.Plain {
		return runPlain(ctx, opts, os.Stdin, os.Stdout)
	}
	return runTUI(ctx, opts, logger)
}

func runPlain(ctx context.Context, opts chatbot.Options, in io.Reader, out io.Writer) error {
	opts.Container = &transcript.Buffer{
		OnAppend: func(u transcript.Unit) {
			fmt.Fprintln(out, transcript.Format(u))
		},
	}

	bot, err := chatbot.New(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize chat: %w", err)
	}
	return bot.Run(ctx, in, out)
}

func runTUI(ctx context.Context, opts chatbot.Options, logger *slog.Logger) error {
	m := ui.NewModel(ctx)
	opts.Container = m
	opts.Input = m

	bot, err := chatbot.New(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize chat: %w", err)
	}
	m.SetController(bot)
	bot.Greet()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		logger.Error("ui exited with error", "error", err)
		return fmt.Errorf("failed to run UI: %w", err)
	}
	return nil
}
