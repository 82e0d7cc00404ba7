package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/billedapp/expense-portal/internal/bill"
	"github.com/billedapp/expense-portal/internal/portal"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// .env is optional; flags and real env vars win
	_ = godotenv.Load()

	fs := ff.NewFlagSet("expense-portal")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		apiURL      = fs.StringLong("api-url", "http://localhost:5678", "Remote store API base URL")
		sessionPath = fs.StringLong("session-db", "expense-portal.db", "Session database file path")
		seedType    = fs.StringLong("seed-user-type", "", "Seed the session user role (with --seed-user-email)")
		seedEmail   = fs.StringLong("seed-user-email", "", "Seed the session user email (with --seed-user-type)")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("EXPENSE_PORTAL"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize session store
	slog.Info("Opening session store...", "path", *sessionPath)
	session, err := bill.NewBoltSession(*sessionPath)
	if err != nil {
		slog.Error("Failed to open session store", "error", err)
		os.Exit(1)
	}
	defer session.Close()

	// Seed the user record when asked; login normally writes it
	if *seedType != "" && *seedEmail != "" {
		record, err := json.Marshal(bill.Session{Type: *seedType, Email: *seedEmail})
		if err != nil {
			slog.Error("Failed to encode seed user", "error", err)
			os.Exit(1)
		}
		if err := session.Set(bill.SessionUserKey, string(record)); err != nil {
			slog.Error("Failed to seed user session", "error", err)
			os.Exit(1)
		}
		slog.Info("Seeded user session", "type", *seedType, "email", *seedEmail)
	}

	// Initialize store client
	store := bill.NewAPIStore(*apiURL, &http.Client{Timeout: 30 * time.Second}, session)

	// Initialize server
	server, err := portal.NewServer(store, session)
	if err != nil {
		slog.Error("Failed to initialize portal", "error", err)
		os.Exit(1)
	}

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "store", *apiURL)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
