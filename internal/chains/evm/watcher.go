package evm

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/chains"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/config"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
)

// keccak256("Transfer(address,address,uint256)")
var transferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// Watcher scans ERC-20 Transfer logs on one EVM chain. One cursor per
// token contract, in blocks.
type Watcher struct {
	chain   domain.Chain
	config  config.EvmWatch
	client  *ethclient.Client
	cursors chains.CursorStore
	log     logger.Logger
}

func NewWatcher(cfg config.EvmWatch, cursors chains.CursorStore, log logger.Logger) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.RpcUrl, err)
	}

	return &Watcher{
		chain:   domain.StrToChain(cfg.Chain),
		config:  cfg,
		client:  client,
		cursors: cursors,
		log:     log,
	}, nil
}

func (w *Watcher) Chain() domain.Chain { return w.chain }

func (w *Watcher) PollInterval() time.Duration {
	return time.Duration(w.config.PollSeconds) * time.Second
}

func (w *Watcher) ConfirmThreshold() uint { return w.config.ConfirmThreshold }

func (w *Watcher) Poll(ctx context.Context, targets []chains.WatchTarget) ([]chains.TransferEvent, error) {
	if len(targets) == 0 {
		return nil, nil
	}

	head, err := w.client.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("block number: %w", err)
	}

	var events []chains.TransferEvent
	for _, token := range w.config.Tokens {
		contract := strings.ToLower(token.Contract)

		addresses := targetAddresses(targets, contract)
		if len(addresses) == 0 {
			continue
		}

		from, found, err := w.cursors.Get(w.chain, contract)
		if err != nil {
			return nil, fmt.Errorf("cursor %s: %w", contract, err)
		}
		if !found {
			if head > w.config.StartupLookbackBlocks {
				from = head - w.config.StartupLookbackBlocks
			} else {
				from = 0
			}
		}
		if from >= head {
			continue
		}

		tokenEvents, scanned, scanErr := w.scanContract(ctx, contract, from+1, head, addresses)
		events = append(events, tokenEvents...)

		if scanned > from {
			if err := w.cursors.Put(w.chain, contract, scanned, domain.CURSOR_UNIT_BLOCK); err != nil {
				return events, fmt.Errorf("cursor put %s: %w", contract, err)
			}
		}
		if scanErr != nil {
			return events, scanErr
		}
	}

	return events, nil
}

// scanContract walks [from, to] in scan_step windows. On a window
// failure it retries block by block so one bad range does not stall
// the whole contract.
func (w *Watcher) scanContract(ctx context.Context, contract string, from, to uint64, addresses []common.Address) ([]chains.TransferEvent, uint64, error) {
	var events []chains.TransferEvent

	for start := from; start <= to; start += w.config.ScanStep {
		end := start + w.config.ScanStep - 1
		if end > to {
			end = to
		}

		rangeEvents, err := w.filterRange(ctx, contract, start, end, addresses)
		if err != nil {
			w.log.TemplWatcherErr("range scan failed, retrying per block", w.chain.ToString(), err)
			rangeEvents, err = w.scanPerBlock(ctx, contract, start, end, addresses)
			if err != nil {
				// keep what was already scanned, resume here next poll
				if start == from {
					return events, from - 1, err
				}
				return events, start - 1, err
			}
		}
		events = append(events, rangeEvents...)
	}

	return events, to, nil
}

func (w *Watcher) scanPerBlock(ctx context.Context, contract string, from, to uint64, addresses []common.Address) ([]chains.TransferEvent, error) {
	var events []chains.TransferEvent
	for block := from; block <= to; block++ {
		blockEvents, err := w.filterRange(ctx, contract, block, block, addresses)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", block, err)
		}
		events = append(events, blockEvents...)
	}
	return events, nil
}

func (w *Watcher) filterRange(ctx context.Context, contract string, from, to uint64, addresses []common.Address) ([]chains.TransferEvent, error) {
	var events []chains.TransferEvent

	// recipient topics are chunked to keep filter queries small
	for start := 0; start < len(addresses); start += w.config.AddressChunk {
		end := start + w.config.AddressChunk
		if end > len(addresses) {
			end = len(addresses)
		}

		toTopics := make([]common.Hash, 0, end-start)
		for _, addr := range addresses[start:end] {
			toTopics = append(toTopics, common.BytesToHash(common.LeftPadBytes(addr.Bytes(), 32)))
		}

		logs, err := w.client.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(from),
			ToBlock:   new(big.Int).SetUint64(to),
			Addresses: []common.Address{common.HexToAddress(contract)},
			Topics:    [][]common.Hash{{transferTopic}, nil, toTopics},
		})
		if err != nil {
			return nil, fmt.Errorf("filter logs [%d, %d]: %w", from, to, err)
		}

		for _, l := range logs {
			event, ok := parseTransferLog(l)
			if !ok {
				continue
			}
			events = append(events, event)
		}
	}

	return events, nil
}

func parseTransferLog(l types.Log) (chains.TransferEvent, bool) {
	if l.Removed || len(l.Topics) != 3 || len(l.Data) == 0 {
		return chains.TransferEvent{}, false
	}

	to := common.BytesToAddress(l.Topics[2].Bytes())
	amount := new(big.Int).SetBytes(l.Data)

	return chains.TransferEvent{
		TxHash:        l.TxHash.Hex(),
		Height:        l.BlockNumber,
		TokenContract: strings.ToLower(l.Address.Hex()),
		ToAddress:     strings.ToLower(to.Hex()),
		RawAmount:     amount.String(),
	}, true
}

func (w *Watcher) Confirmations(ctx context.Context, payment *domain.Payments) (uint, error) {
	head, err := w.client.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("block number: %w", err)
	}
	if head < payment.BlockNumber {
		return 0, nil
	}
	return uint(head-payment.BlockNumber) + 1, nil
}

func targetAddresses(targets []chains.WatchTarget, contract string) []common.Address {
	seen := make(map[string]struct{}, len(targets))
	var out []common.Address
	for _, t := range targets {
		if strings.ToLower(t.TokenContract) != contract {
			continue
		}
		key := strings.ToLower(t.Address)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, common.HexToAddress(t.Address))
	}
	return out
}
