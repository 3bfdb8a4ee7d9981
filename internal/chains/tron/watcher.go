package tron

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/chains"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/config"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
)

// Watcher scans TRC-20 Transfer events through the TronGrid event API.
// One cursor per contract, in block timestamps (ms).
type Watcher struct {
	config  config.TronWatch
	http    *http.Client
	cursors chains.CursorStore
	log     logger.Logger
}

func NewWatcher(cfg config.TronWatch, cursors chains.CursorStore, log logger.Logger) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Watcher{
		config:  cfg,
		http:    &http.Client{Timeout: 30 * time.Second},
		cursors: cursors,
		log:     log,
	}, nil
}

func (w *Watcher) Chain() domain.Chain { return domain.CHAIN_TRON }

func (w *Watcher) PollInterval() time.Duration {
	return time.Duration(w.config.PollSeconds) * time.Second
}

func (w *Watcher) ConfirmThreshold() uint { return w.config.ConfirmThreshold }

type eventResult struct {
	TransactionID  string            `json:"transaction_id"`
	BlockNumber    uint64            `json:"block_number"`
	BlockTimestamp int64             `json:"block_timestamp"`
	ContractAddr   string            `json:"contract_address"`
	Result         map[string]string `json:"result"`
}

type eventsResponse struct {
	Data []eventResult `json:"data"`
	Meta struct {
		Fingerprint string `json:"fingerprint"`
	} `json:"meta"`
}

func (w *Watcher) Poll(ctx context.Context, targets []chains.WatchTarget) ([]chains.TransferEvent, error) {
	if len(targets) == 0 {
		return nil, nil
	}

	watched := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		watched[t.Address] = struct{}{}
	}

	var events []chains.TransferEvent
	for _, token := range w.config.Tokens {
		cursor, found, err := w.cursors.Get(domain.CHAIN_TRON, token.Contract)
		if err != nil {
			return nil, fmt.Errorf("cursor %s: %w", token.Contract, err)
		}
		if !found {
			cursor = uint64(time.Now().UnixMilli() - w.config.StartupLookbackMs)
		}

		resp, err := w.fetchEvents(ctx, token.Contract, cursor+1)
		if err != nil {
			return events, err
		}

		maxTs := cursor
		for _, ev := range resp.Data {
			if uint64(ev.BlockTimestamp) > maxTs {
				maxTs = uint64(ev.BlockTimestamp)
			}

			to, err := HexToBase58(ev.Result["to"])
			if err != nil {
				continue
			}
			if _, ok := watched[to]; !ok {
				continue
			}

			events = append(events, chains.TransferEvent{
				TxHash:        ev.TransactionID,
				Height:        ev.BlockNumber,
				TokenContract: token.Contract,
				ToAddress:     to,
				RawAmount:     ev.Result["value"],
			})
		}

		if maxTs > cursor {
			if err := w.cursors.Put(domain.CHAIN_TRON, token.Contract, maxTs, domain.CURSOR_UNIT_MS); err != nil {
				return events, fmt.Errorf("cursor put %s: %w", token.Contract, err)
			}
		}
	}

	return events, nil
}

func (w *Watcher) fetchEvents(ctx context.Context, contract string, minTimestampMs uint64) (*eventsResponse, error) {
	query := url.Values{}
	query.Set("event_name", "Transfer")
	query.Set("only_confirmed", "true")
	query.Set("order_by", "block_timestamp,asc")
	query.Set("min_block_timestamp", fmt.Sprint(minTimestampMs))
	query.Set("limit", fmt.Sprint(w.config.EventLimit))

	endpoint := fmt.Sprintf("%s/v1/contracts/%s/events?%s",
		strings.TrimSuffix(w.config.FullHost, "/"), contract, query.Encode())

	operation := func() (*eventsResponse, error) {
		var out eventsResponse
		if err := w.getJSON(ctx, endpoint, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(4))
}

type nowBlockResponse struct {
	BlockHeader struct {
		RawData struct {
			Number uint64 `json:"number"`
		} `json:"raw_data"`
	} `json:"block_header"`
}

func (w *Watcher) Confirmations(ctx context.Context, payment *domain.Payments) (uint, error) {
	endpoint := strings.TrimSuffix(w.config.FullHost, "/") + "/wallet/getnowblock"

	var out nowBlockResponse
	if err := w.getJSON(ctx, endpoint, &out); err != nil {
		return 0, err
	}

	head := out.BlockHeader.RawData.Number
	if head < payment.BlockNumber {
		return 0, nil
	}
	return uint(head-payment.BlockNumber) + 1, nil
}

func (w *Watcher) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if w.config.ApiKey != "" {
		req.Header.Set("TRON-PRO-API-KEY", w.config.ApiKey)
	}

	resp, err := w.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("trongrid %s: status %d: %s", endpoint, resp.StatusCode, body)
	}

	return json.Unmarshal(body, out)
}
