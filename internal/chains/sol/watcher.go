package sol

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/chains"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/config"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
)

// Watcher scans SPL token transfers. Signatures are pulled per
// candidate account (the deposit address and its associated token
// account per mint) and amounts are taken from the pre/post token
// balance delta, never from instruction parsing.
type Watcher struct {
	config  config.SolWatch
	client  *rpc.Client
	cursors chains.CursorStore
	log     logger.Logger
}

func NewWatcher(cfg config.SolWatch, cursors chains.CursorStore, log logger.Logger) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Watcher{
		config:  cfg,
		client:  rpc.New(cfg.RpcUrl),
		cursors: cursors,
		log:     log,
	}, nil
}

func (w *Watcher) Chain() domain.Chain { return domain.CHAIN_SOL }

func (w *Watcher) PollInterval() time.Duration {
	return time.Duration(w.config.PollSeconds) * time.Second
}

func (w *Watcher) ConfirmThreshold() uint { return w.config.ConfirmThreshold }

type scanCandidate struct {
	owner   solana.PublicKey
	account solana.PublicKey
	mint    solana.PublicKey
}

func (w *Watcher) Poll(ctx context.Context, targets []chains.WatchTarget) ([]chains.TransferEvent, error) {
	candidates, err := w.candidates(targets)
	if err != nil {
		return nil, err
	}
	if len(candidates) > w.config.ScanTargetLimit {
		candidates = candidates[:w.config.ScanTargetLimit]
	}

	var events []chains.TransferEvent
	for _, c := range candidates {
		candidateEvents, err := w.scanCandidate(ctx, c)
		if err != nil {
			w.log.TemplWatcherErr("candidate scan failed", domain.CHAIN_SOL.ToString(), err)
			continue
		}
		events = append(events, candidateEvents...)
	}

	return events, nil
}

// candidates lists (owner, account, mint) triples to pull signatures
// for. The owner address itself is included in case the sender paid
// straight into a token account owned by it.
func (w *Watcher) candidates(targets []chains.WatchTarget) ([]scanCandidate, error) {
	seen := make(map[string]struct{})
	var out []scanCandidate

	for _, t := range targets {
		owner, err := solana.PublicKeyFromBase58(t.Address)
		if err != nil {
			return nil, fmt.Errorf("bad target address %s: %w", t.Address, err)
		}
		mint, err := solana.PublicKeyFromBase58(t.TokenContract)
		if err != nil {
			return nil, fmt.Errorf("bad mint %s: %w", t.TokenContract, err)
		}

		ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
		if err != nil {
			return nil, fmt.Errorf("derive ata for %s: %w", t.Address, err)
		}

		for _, account := range []solana.PublicKey{ata, owner} {
			key := t.TokenContract + ":" + account.String()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, scanCandidate{owner: owner, account: account, mint: mint})
		}
	}

	return out, nil
}

func (w *Watcher) scanCandidate(ctx context.Context, c scanCandidate) ([]chains.TransferEvent, error) {
	scanKey := c.mint.String() + ":" + c.account.String()

	fromSlot, _, err := w.cursors.Get(domain.CHAIN_SOL, scanKey)
	if err != nil {
		return nil, fmt.Errorf("cursor %s: %w", scanKey, err)
	}

	limit := w.config.SignatureLimit
	signatures, err := w.client.GetSignaturesForAddressWithOpts(ctx, c.account, &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return nil, fmt.Errorf("signatures for %s: %w", c.account, err)
	}

	var events []chains.TransferEvent
	maxSlot := fromSlot

	// newest first, process oldest to newest
	for i := len(signatures) - 1; i >= 0; i-- {
		sigInfo := signatures[i]
		if sigInfo.Slot <= fromSlot || sigInfo.Err != nil {
			continue
		}
		if sigInfo.Slot > maxSlot {
			maxSlot = sigInfo.Slot
		}

		event, ok, err := w.parseTransaction(ctx, c, sigInfo)
		if err != nil {
			return events, err
		}
		if ok {
			events = append(events, event)
		}
	}

	if maxSlot > fromSlot {
		if err := w.cursors.Put(domain.CHAIN_SOL, scanKey, maxSlot, domain.CURSOR_UNIT_SLOT); err != nil {
			return events, fmt.Errorf("cursor put %s: %w", scanKey, err)
		}
	}

	return events, nil
}

func (w *Watcher) parseTransaction(ctx context.Context, c scanCandidate, sigInfo *rpc.TransactionSignature) (chains.TransferEvent, bool, error) {
	tx, err := w.client.GetTransaction(ctx, sigInfo.Signature, &rpc.GetTransactionOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return chains.TransferEvent{}, false, fmt.Errorf("get tx %s: %w", sigInfo.Signature, err)
	}
	if tx.Meta == nil || tx.Meta.Err != nil {
		return chains.TransferEvent{}, false, nil
	}

	delta, ok := tokenBalanceDelta(tx.Meta, c.owner, c.mint)
	if !ok || delta.Sign() <= 0 {
		return chains.TransferEvent{}, false, nil
	}

	return chains.TransferEvent{
		TxHash:        sigInfo.Signature.String(),
		Height:        sigInfo.Slot,
		TokenContract: c.mint.String(),
		ToAddress:     c.owner.String(),
		RawAmount:     delta.String(),
	}, true, nil
}

// tokenBalanceDelta sums the owner's post minus pre balances for one
// mint, using the raw Amount strings so no precision is lost.
func tokenBalanceDelta(meta *rpc.TransactionMeta, owner, mint solana.PublicKey) (*big.Int, bool) {
	post := sumBalances(meta.PostTokenBalances, owner, mint)
	pre := sumBalances(meta.PreTokenBalances, owner, mint)
	if post == nil && pre == nil {
		return nil, false
	}
	if post == nil {
		post = new(big.Int)
	}
	if pre == nil {
		pre = new(big.Int)
	}
	return new(big.Int).Sub(post, pre), true
}

func sumBalances(balances []rpc.TokenBalance, owner, mint solana.PublicKey) *big.Int {
	var sum *big.Int
	for _, b := range balances {
		if b.Mint != mint || b.Owner == nil || !b.Owner.Equals(owner) {
			continue
		}
		if b.UiTokenAmount == nil {
			continue
		}
		amount, ok := new(big.Int).SetString(b.UiTokenAmount.Amount, 10)
		if !ok {
			continue
		}
		if sum == nil {
			sum = new(big.Int)
		}
		sum.Add(sum, amount)
	}
	return sum
}

func (w *Watcher) Confirmations(ctx context.Context, payment *domain.Payments) (uint, error) {
	head, err := w.client.GetSlot(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("get slot: %w", err)
	}
	return confirmationDepth(uint64(head), payment.BlockNumber), nil
}

// confirmationDepth counts the observed slot itself, a transfer seen at
// the head already has one confirmation.
func confirmationDepth(head, slot uint64) uint {
	if head < slot {
		return 0
	}
	return uint(head-slot) + 1
}
