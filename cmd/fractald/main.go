// FractalChain full node daemon.
//
// Usage:
//
//	fractald --mine --coinbase=<addr>   Run node, mining to addr
//	fractald --help                     Show help
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fractalchain/fractald/config"
	klog "github.com/fractalchain/fractald/internal/log"
	"github.com/fractalchain/fractald/internal/node"
	"github.com/fractalchain/fractald/internal/storage"
	"github.com/fractalchain/fractald/pkg/fractal"
	"github.com/fractalchain/fractald/pkg/types"
)

func main() {
	// ── 1. Load config (defaults → file → flags) ────────────────────────
	cfg, flags, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// ── 2. Init logger ───────────────────────────────────────────────────
	logFile := cfg.Log.File
	if logFile == "" {
		logsDir := cfg.LogsDir()
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating logs dir: %v\n", err)
			os.Exit(1)
		}
		logFile = logsDir + "/fractald.log"
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	logger := klog.WithComponent("node")

	// ── 3. Genesis (hardcoded per network, not loaded from file) ─────────
	genesis := config.GenesisFor(cfg.Network)

	logger.Info().
		Str("network", string(cfg.Network)).
		Str("recipient", string(genesis.Recipient)).
		Float64("difficulty_target", genesis.DifficultyTarget).
		Msg("Starting FractalChain node")

	// ── 4. Open storage ───────────────────────────────────────────────────
	db, err := storage.NewBadger(cfg.ChainDataDir())
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.ChainDataDir()).Msg("Failed to open database")
	}
	defer db.Close()
	logger.Info().Str("path", cfg.ChainDataDir()).Msg("Database opened")

	// ── 5. Resolve coinbase (only required when mining) ──────────────────
	var coinbase types.Address
	if flags.Mine {
		if flags.Coinbase == "" {
			logger.Fatal().Msg("--mine requires --coinbase")
		}
		coinbase, err = types.ParseAddress(flags.Coinbase)
		if err != nil {
			logger.Fatal().Err(err).Str("coinbase", flags.Coinbase).Msg("Invalid coinbase address")
		}
	}

	// ── 6. Build node (chain + staking + p2p + miner composition) ────────
	n, err := node.New(db, node.Config{
		NodeID:      string(cfg.Network) + "-" + cfg.DataDir,
		ListenAddr:  cfg.P2P.ListenAddr,
		Port:        cfg.P2P.Port,
		Seeds:       cfg.P2P.Seeds,
		MaxPeers:    cfg.P2P.MaxPeers,
		Genesis:     genesis,
		Fractal:     fractal.DefaultConfig(),
		Staking:     cfg.StakingLedgerConfig(),
		Coinbase:    coinbase,
		MaxBlockTxs: cfg.Mining.MaxBlockTxs,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build node")
	}

	if cfg.P2P.Enabled {
		if err := n.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Failed to start P2P")
		}
		defer n.Stop()
		logger.Info().
			Str("id", n.P2P.ID()).
			Int("port", cfg.P2P.Port).
			Msg("P2P node started")
	}

	// ── 7. Start mining (if requested) ────────────────────────────────────
	if flags.Mine {
		if err := n.StartMining(); err != nil {
			logger.Fatal().Err(err).Msg("Failed to start mining")
		}
		defer n.StopMining()
		logger.Info().Str("coinbase", string(coinbase)).Msg("Mining enabled")
	}

	// ── 8. Startup banner ─────────────────────────────────────────────────
	logger.Info().
		Uint64("height", n.Chain.Height()).
		Bool("mining", flags.Mine).
		Msg("Node started successfully")

	// ── 9. Wait for shutdown ───────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")

	// Graceful shutdown: stop mining → stop P2P → close DB (via defers).
	logger.Info().Msg("Goodbye!")
}
