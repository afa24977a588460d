// Command timecoin-consensusd runs the BFT consensus core standalone: vote
// collection, instant transaction finality, the daily block cycle, and the
// keyless treasury. It exposes no RPC or CLI surface of its own; peer
// transport, persistence, and ledger state are collaborator interfaces a
// real deployment wires in (spec.md §1).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"timecoin/config"
	"timecoin/core/events"
	"timecoin/core/genesis"
	"timecoin/core/types"
	"timecoin/internal/assembler"
	"timecoin/internal/blockconsensus"
	"timecoin/internal/masternode"
	"timecoin/internal/treasury"
	"timecoin/internal/txconsensus"
	"timecoin/internal/votes"
	"timecoin/mempool"
	"timecoin/observability/logging"
	"timecoin/observability/metrics"
	"timecoin/p2p"
	"timecoin/storage"
)

const (
	heartbeatSweepInterval = 30 * time.Second
	voteGCInterval         = 10 * time.Minute
	txTickInterval         = 1 * time.Second
	blockTickInterval      = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the node configuration file")
	genesisPath := flag.String("genesis", "genesis.json", "path to the genesis file")
	env := flag.String("env", "", "deployment environment tag for log lines")
	logFile := flag.String("logfile", "", "optional path to a rotating log file, in addition to stdout")
	flag.Parse()

	var logger *slog.Logger
	if *logFile != "" {
		logger = logging.SetupWithFileSink("timecoin-consensusd", *env, logging.FileSinkConfig{Path: *logFile})
	} else {
		logger = logging.Setup("timecoin-consensusd", *env)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(cfg.Global()); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	genesisFile, err := genesis.Load(*genesisPath)
	if err != nil {
		logger.Error("load genesis", "error", err)
		os.Exit(1)
	}
	if err := genesisFile.VerifyBlockZero(); err != nil {
		logger.Error("genesis hash check failed", "error", err)
		os.Exit(2)
	}
	genesisBlock, err := genesisFile.ToBlock()
	if err != nil {
		logger.Error("decode genesis block", "error", err)
		os.Exit(1)
	}

	store := storage.NewMemoryStore()
	if err := store.PutBlock(genesisBlock); err != nil {
		logger.Error("persist genesis block", "error", err)
		os.Exit(1)
	}

	logger.Info("starting consensus core",
		"network", cfg.Network, "mode", cfg.Mode, logging.MaskField("listen", cfg.ListenAddress))

	emitter := metrics.NewEventEmitter(events.NoopEmitter{})
	mnRegistry := masternode.NewRegistry(cfg.HeartbeatGrace())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	broadcaster := newQueuedBroadcaster(logSender(logger), logger)

	txManager := txconsensus.NewManager(mnRegistry, broadcaster, emitter)
	blockManager := blockconsensus.NewManager(mnRegistry, cfg.Mode == config.ModeDeterministic, emitter)
	treasuryState := treasury.NewState(emitter)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		broadcaster.run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runHeartbeatSweep(ctx, logger, mnRegistry, broadcaster)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runTxFinality(ctx, logger, txManager)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runVoteGC(ctx, logger, txManager, blockManager, treasuryState)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runBlockCycle(ctx, logger, blockCycleDeps{
			masternodes:       mnRegistry,
			txManager:         txManager,
			blockManager:      blockManager,
			treasury:          treasuryState,
			store:             store,
			emitter:           emitter,
			startBlockNumber:  genesisBlock.Header.BlockNumber + 1,
			startPrevHash:     genesisBlock.Header.Hash(),
		})
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received, draining long-lived tasks")
	wg.Wait()
	logger.Info("consensus core stopped")
}

// runHeartbeatSweep periodically flips stale masternodes inactive and
// gossips a liveness heartbeat, the node's own contribution to every other
// node's uptime tracking (spec §4.3, §5).
func runHeartbeatSweep(ctx context.Context, logger *slog.Logger, mnRegistry *masternode.Registry, broadcaster p2p.Broadcaster) {
	ticker := time.NewTicker(heartbeatSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			flipped := mnRegistry.MarkInactiveIfStale(now)
			for _, id := range flipped {
				logger.Warn("masternode marked inactive", "masternode", id)
			}
			hb := types.Heartbeat{Timestamp: now.Unix()}
			payload := []byte(fmt.Sprintf("%d", hb.Timestamp))
			if err := broadcaster.Broadcast(&p2p.Message{Type: p2p.MessageHeartbeat, Payload: payload}); err != nil {
				logger.Warn("heartbeat broadcast failed", "error", err)
			}
		}
	}
}

// runTxFinality drives the instant-finality timeout and fallback-escalation
// checks for every in-flight transaction (spec §4.4, §5's fallback-timer
// responsibility for the transaction layer).
func runTxFinality(ctx context.Context, logger *slog.Logger, txManager *txconsensus.Manager) {
	ticker := time.NewTicker(txTickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, subject := range txManager.Tick(time.Now()) {
				logger.Debug("transaction status changed", "tx", subject.TxID, "status", subject.Status)
			}
		}
	}
}

// runVoteGC reclaims decided vote collectors across every voting subject
// layer once their retention window has elapsed (spec §5's vote-GC
// responsibility).
func runVoteGC(ctx context.Context, logger *slog.Logger, txManager *txconsensus.Manager, blockManager *blockconsensus.Manager, treasuryState *treasury.State) {
	ticker := time.NewTicker(voteGCInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			reclaimed := txManager.GC(now) + blockManager.GC(now) + treasuryState.GC(now)
			if reclaimed > 0 {
				logger.Debug("vote collectors reclaimed", "count", reclaimed)
			}
		}
	}
}

// blockCycleDeps bundles the collaborators the block-cycle task drives.
type blockCycleDeps struct {
	masternodes      *masternode.Registry
	txManager        *txconsensus.Manager
	blockManager     *blockconsensus.Manager
	treasury         *treasury.State
	store            *storage.MemoryStore
	emitter          events.Emitter
	startBlockNumber uint64
	startPrevHash    []byte
}

// runBlockCycle is the single long-lived task responsible for the daily
// block round: proposing a candidate, advancing it through vote evaluation
// and fallback escalation, and, once finalized, persisting the block and
// crediting the treasury before starting the next round (spec §4.5, §4.7,
// §4.8, §5).
func runBlockCycle(ctx context.Context, logger *slog.Logger, deps blockCycleDeps) {
	blockNumber := deps.startBlockNumber
	prevHash := deps.startPrevHash

	startRound := func() {
		now := time.Now()
		coinbase, orderedTxs := buildCandidateInputs(now, deps.masternodes, deps.txManager, mempool.StuckQuota{}.WithDefault(), false)
		if _, err := deps.blockManager.StartRound(blockNumber, prevHash, coinbase, orderedTxs, now); err != nil {
			logger.Error("start block round failed", "block", blockNumber, "error", err)
		}
	}
	startRound()

	ticker := time.NewTicker(blockTickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			round, ok := deps.blockManager.Round(blockNumber)
			if !ok {
				continue
			}
			strategy := round.Escalator.Current()
			coinbase, orderedTxs := buildCandidateInputs(now, deps.masternodes, deps.txManager, mempool.StuckQuota{}.WithDefault(), strategy.IncludesAllMempoolTxs())

			finished, decision, err := deps.blockManager.Tick(blockNumber, now, prevHash, coinbase, orderedTxs)
			if err != nil {
				logger.Error("block round tick failed", "block", blockNumber, "error", err)
				continue
			}

			switch {
			case decision == votes.Approved:
				finalizeBlock(logger, deps, blockNumber, finished.Candidate, now)
				prevHash = finished.Candidate.Header.Hash()
				blockNumber++
				startRound()
			case finished.Phase == blockconsensus.Failed:
				logger.Error("block round exhausted every fallback strategy", "block", blockNumber)
				prevHash = finished.Candidate.Header.Hash()
				blockNumber++
				startRound()
			}
		}
	}
}

// buildCandidateInputs assembles the coinbase and ordered transaction set a
// block candidate proposes at now, scheduling tracked transactions through
// the mempool lanes and splitting rewards over currently active masternodes
// (spec §4.6, §4.8).
func buildCandidateInputs(now time.Time, mnRegistry *masternode.Registry, txManager *txconsensus.Manager, quota mempool.StuckQuota, includeAllPending bool) (*types.Transaction, []*types.Transaction) {
	lanes := mempool.Classify(txManager.Subjects())
	orderedTxs, _ := mempool.Schedule(lanes, 0, quota, includeAllPending)

	totalFees := big.NewInt(0)
	for _, tx := range orderedTxs {
		if tx.Fee != nil {
			totalFees.Add(totalFees, tx.Fee)
		}
	}

	active := mnRegistry.ActiveMasternodes()
	powers := make([]assembler.PowerView, 0, len(active))
	for _, mn := range active {
		powers = append(powers, assembler.PowerView{
			ID:            mn.ID,
			RewardAddress: mn.RewardAddress.String(),
			Power:         mnRegistry.EffectivePower(mn, now),
		})
	}

	coinbase := assembler.BuildCoinbase(totalFees, powers, now.Unix())
	return coinbase, orderedTxs
}

// finalizeBlock persists a finalized candidate and credits the treasury
// with its share of the block's fees (spec §4.7: "treasury_reward += 5 TIME
// + 50% x sum(fees)").
func finalizeBlock(logger *slog.Logger, deps blockCycleDeps, blockNumber uint64, candidate *assembler.Candidate, now time.Time) {
	block := &types.Block{
		Header:       candidate.Header,
		CoinbaseTx:   candidate.CoinbaseTx,
		Transactions: candidate.Transactions,
	}
	if err := deps.store.PutBlock(block); err != nil {
		logger.Error("persist finalized block", "block", blockNumber, "error", err)
		return
	}

	totalFees := big.NewInt(0)
	for _, tx := range candidate.Transactions {
		if tx.Fee != nil {
			totalFees.Add(totalFees, tx.Fee)
		}
	}
	treasuryShare := new(big.Int).Add(assembler.TreasuryBlockReward, new(big.Int).Quo(totalFees, big.NewInt(2)))
	deps.treasury.Deposit(blockNumber, treasuryShare, "block_reward", now)

	hashHex := candidate.HashHex()
	deps.emitter.Emit(events.BlockFinalized{BlockNumber: blockNumber, Hash: hashHex, TxCount: len(candidate.Transactions)})
	logger.Info("block finalized", "block", blockNumber, "hash", hashHex, "txs", len(candidate.Transactions))
}
