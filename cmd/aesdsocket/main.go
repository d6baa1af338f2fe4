package main

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	aesdsock "github.com/aesdsock/aesdsock"
	"github.com/aesdsock/aesdsock/internal/config"
	"github.com/aesdsock/aesdsock/internal/logging"
)

const daemonizedEnv = "AESDSOCKET_DAEMONIZED"

func main() {
	cfg, err := config.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logConfig := logging.DefaultConfig()
	logConfig.Format = cfg.LogFormat
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	if cfg.Daemonize && os.Getenv(daemonizedEnv) == "" {
		if err := daemonize(); err != nil {
			logger.Error("failed to daemonize", "error", err)
			os.Exit(1)
		}
		return
	}

	server, err := aesdsock.NewServer(cfg, &aesdsock.Options{Logger: logger})
	if err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("received shutdown signal")
	case err := <-serveErr:
		if err != nil {
			logger.Error("accept loop exited", "error", err)
		}
	}

	if err := server.Shutdown(); err != nil {
		logger.Error("error during shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
	os.Exit(0)
}

// daemonize re-executes this binary with AESDSOCKET_DAEMONIZED set and
// detaches it into a new session, then the parent returns immediately.
// This is the idiomatic Go substitute for original_source's
// fork()/setsid()/fork() sequence: Go cannot fork a running process
// (its runtime has multiple OS threads already), so the equivalent
// observable behavior — detach from the controlling terminal, reparent
// to init — comes from re-exec plus Setsid rather than two real forks.
func daemonize() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = append(os.Environ(), daemonizedEnv+"=1")
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	return cmd.Start()
}
