// Package cmd implements the cmd/replay CLI: a standalone driver that
// feeds a TCP or serial byte stream into an escpos.Decoder outside the
// HTTP/WebSocket transport, for exercising a capture or a real printer
// cable against the same decoding logic the server uses.
package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/btb36/escpos-emulator/internal/audit"
	"github.com/btb36/escpos-emulator/internal/config"
	"github.com/btb36/escpos-emulator/internal/replay"
	"github.com/btb36/escpos-emulator/internal/utils"
)

var (
	transportName string
	addr          string
	serialBaud    int
	timeout       time.Duration
	logPath       string
)

var rootCmd = &cobra.Command{
	Use:   "replay",
	Short: "Feed a TCP or serial byte stream into the ESC/POS decoder",
	Long: `replay drives a single escpos.Decoder from a live transport instead of the
HTTP/WebSocket session bridge: a TCP connection to a capture-replay server,
or a real serial cable to a printer. Chunk boundaries from the transport are
fed to the decoder exactly as received, exercising the same cross-packet
fragmentation handling the session transport relies on.`,
	Version: "1.0.0",
	RunE:    runReplay,
}

// defaultReplayConfig returns the replay section (config.ReplayConfig) of
// the server's config file as this CLI's flag defaults, falling back to the
// config package's Default* constants whenever config.Load fails, which
// includes the case where no config file is found — cmd/replay runs
// standalone, without ./configs/config.yaml present.
func defaultReplayConfig() config.ReplayConfig {
	if cfg, err := config.Load(); err == nil {
		return cfg.Replay
	}
	return config.ReplayConfig{
		Transport: config.DefaultReplayTransport,
		BaudRate:  config.DefaultReplayBaudRate,
		Timeout:   config.DefaultReplayTimeout,
	}
}

func init() {
	defaults := defaultReplayConfig()

	rootCmd.Flags().StringVar(&transportName, "transport", defaults.Transport, "transport to use: tcp or serial")
	rootCmd.Flags().StringVar(&addr, "addr", defaults.Addr, "TCP host:port, or serial device path")
	rootCmd.Flags().IntVar(&serialBaud, "baud", defaults.BaudRate, "baud rate (serial transport only)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", defaults.Timeout, "connect/read timeout")
	rootCmd.Flags().StringVar(&logPath, "log", "./logs/replay.log", "audit log file path")
}

// Execute runs the replay CLI.
func Execute() error {
	return rootCmd.Execute()
}

func runReplay(cmd *cobra.Command, args []string) error {
	if addr == "" {
		return fmt.Errorf("--addr is required")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()
	defer utils.LogPanic(logger)

	sink, err := audit.NewFileConsoleSinkAtPath(logPath)
	if err != nil {
		return fmt.Errorf("build audit sink: %w", err)
	}
	defer sink.Close()

	var transport replay.Transport
	switch transportName {
	case "tcp":
		transport = replay.NewTCPTransport(addr, timeout, logger)
	case "serial":
		transport = replay.NewSerialTransport(addr, serialBaud, timeout, logger)
	default:
		return fmt.Errorf("unsupported transport %q: want tcp or serial", transportName)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	player := replay.NewPlayer(transport, sink, logger)
	return player.Run(ctx)
}
