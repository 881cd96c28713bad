package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	gossh "github.com/gliderlabs/ssh"
)

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func main() {
	initLogger()

	addr := flag.String("addr", envOr("VOID_ADDR", ":8080"), "HTTP listen address")
	clientDir := flag.String("client", envOr("VOID_CLIENT_DIR", ""), "Path to client directory (default: ../client)")
	dbPath := flag.String("db", envOr("VOID_DB", ""), "SQLite database path (empty: guest mode, nothing persisted)")
	seed := flag.Int64("seed", 0, "World seed for new runs (0: random)")
	term := flag.Bool("term", false, "Play in this terminal instead of serving")
	difficulty := flag.String("difficulty", "normal", "Difficulty for -term and SSH runs: easy, normal or hard")
	sshAddr := flag.String("ssh", envOr("VOID_SSH_ADDR", ""), "SSH listen address for terminal play (empty: disabled)")
	hostKey := flag.String("hostkey", envOr("VOID_SSH_HOSTKEY", "voidecho_host_key"), "SSH host key file, created if missing")
	flag.Parse()

	if *clientDir == "" {
		exe, _ := os.Executable()
		*clientDir = filepath.Join(filepath.Dir(exe), "..", "client")
		// Fallback for development
		if _, err := os.Stat(*clientDir); os.IsNotExist(err) {
			*clientDir = "../client"
		}
	}

	var db *DB
	if *dbPath != "" {
		var err error
		db, err = OpenDB(*dbPath)
		if err != nil {
			Log.WithError(err).WithField("path", *dbPath).Warn("database unavailable, running in guest mode")
			db = nil
		} else {
			defer db.Close()
			Log.WithField("path", *dbPath).Info("database opened")
		}
	} else {
		Log.Info("no database configured, running in guest mode")
	}

	analytics := NewAnalytics(db)
	defer analytics.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := DefaultWorldConfig()
	cfg.Seed = *seed
	cfg.Difficulty = ParseDifficulty(*difficulty)

	if *term {
		// the screen owns stdout while playing
		Log.SetOutput(io.Discard)
		if err := RunTerminal(ctx, cfg, db, analytics); err != nil {
			Log.SetOutput(os.Stderr)
			Log.WithError(err).Fatal("terminal frontend failed")
		}
		return
	}

	hub := NewHub(db, analytics)
	hub.defaultSeed = *seed
	go hub.Run(ctx)

	mux := SetupRoutes(hub, *clientDir)
	server := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		Log.WithField("addr", *addr).Info("server starting")
		Log.WithField("dir", *clientDir).Info("serving client files")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			Log.WithError(err).Fatal("ListenAndServe")
		}
	}()

	var sshSrv *SSHServer
	if *sshAddr != "" {
		var err error
		sshSrv, err = NewSSHServer(*sshAddr, *hostKey, cfg, db, analytics)
		if err != nil {
			Log.WithError(err).Warn("ssh disabled")
		} else {
			go func() {
				Log.WithField("addr", *sshAddr).Info("ssh server starting")
				if err := sshSrv.ListenAndServe(); !errors.Is(err, gossh.ErrServerClosed) {
					Log.WithError(err).Error("ssh server stopped")
				}
			}()
		}
	}

	<-ctx.Done()
	Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		Log.WithError(err).Warn("shutdown")
	}
	if sshSrv != nil {
		if err := sshSrv.Shutdown(shutdownCtx); err != nil {
			Log.WithError(err).Warn("ssh shutdown")
		}
	}
}
