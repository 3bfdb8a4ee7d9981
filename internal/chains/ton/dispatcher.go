package ton

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/liteclient"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton"
	"github.com/xssnick/tonutils-go/ton/wallet"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/config"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
)

// Dispatcher pays out testnet TON from a V4R2 hot wallet through a
// liteserver connection.
type Dispatcher struct {
	config config.TonDispatch
	api    ton.APIClientWrapped
	wallet *wallet.Wallet
	log    logger.Logger
}

func NewDispatcher(ctx context.Context, cfg config.TonDispatch, log logger.Logger) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	globalConfig, err := liteclient.GetConfigFromUrl(ctx, cfg.ConfigUrl)
	if err != nil {
		return nil, fmt.Errorf("liteserver config: %w", err)
	}

	pool := liteclient.NewConnectionPool()
	if err := pool.AddConnectionsFromConfig(ctx, globalConfig); err != nil {
		return nil, fmt.Errorf("liteserver connect: %w", err)
	}

	api := ton.NewAPIClient(pool, ton.ProofCheckPolicyFast).WithRetry(2)
	api.SetTrustedBlockFromConfig(globalConfig)

	// fetch a block to trigger the chain proof check
	if _, err := api.CurrentMasterchainInfo(ctx); err != nil {
		return nil, fmt.Errorf("masterchain info: %w", err)
	}

	w, err := wallet.FromSeed(api, strings.Fields(cfg.Seed), wallet.V4R2)
	if err != nil {
		return nil, fmt.Errorf("wallet from seed: %w", err)
	}

	return &Dispatcher{config: cfg, api: api, wallet: w, log: log}, nil
}

func (d *Dispatcher) Kind() domain.FulfillmentKind { return domain.KIND_TON }

func (d *Dispatcher) Name() string { return domain.DISPATCHER_TON }

func (d *Dispatcher) PollInterval() time.Duration {
	return time.Duration(d.config.PollSeconds) * time.Second
}

func (d *Dispatcher) SubmitPayout(ctx context.Context, order *domain.Orders) (string, error) {
	to, err := address.ParseAddr(order.FulfillmentAddress)
	if err != nil {
		return "", fmt.Errorf("bad fulfillment address: %w", err)
	}

	amountNano := d.config.UnitAmountNano * uint64(order.Quantity)

	master, err := d.api.CurrentMasterchainInfo(ctx)
	if err != nil {
		return "", fmt.Errorf("masterchain info: %w", err)
	}

	balance, err := d.wallet.GetBalance(ctx, master)
	if err != nil {
		return "", fmt.Errorf("hot wallet balance: %w", err)
	}
	if balance.Nano().Uint64() < amountNano {
		return "", fmt.Errorf("insufficient hot wallet funds: have %s nano, need %d", balance.Nano(), amountNano)
	}

	transfer, err := d.wallet.BuildTransfer(to, tlb.FromNanoTONU(amountNano), false, "")
	if err != nil {
		return "", fmt.Errorf("build transfer: %w", err)
	}

	// SendWaitTransaction returns only after the message is committed,
	// so the finality wait is folded into the submit.
	tx, _, err := d.wallet.SendWaitTransaction(ctx, transfer)
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}

	return base64.StdEncoding.EncodeToString(tx.Hash), nil
}

func (d *Dispatcher) WaitFinality(ctx context.Context, order *domain.Orders, txHash string) error {
	return nil
}
