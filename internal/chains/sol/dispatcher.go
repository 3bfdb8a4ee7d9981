package sol

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	confirm "github.com/gagliardetto/solana-go/rpc/sendAndConfirmTransaction"
	"github.com/gagliardetto/solana-go/rpc/ws"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/config"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
)

type clusterLane struct {
	client       *rpc.Client
	ws           *ws.Client
	privKey      solana.PrivateKey
	unitLamports uint64
}

// Dispatcher pays out devnet/testnet SOL, routed by the order cluster.
type Dispatcher struct {
	config config.SolDispatch
	lanes  map[string]*clusterLane
	log    logger.Logger
}

func NewDispatcher(ctx context.Context, cfg config.SolDispatch, log logger.Logger) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lanes := make(map[string]*clusterLane, len(cfg.Clusters))
	for _, c := range cfg.Clusters {
		privKey, err := solana.PrivateKeyFromBase58(c.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("cluster %s: bad private key: %w", c.Cluster, err)
		}

		wsClient, err := ws.Connect(ctx, c.WsUrl)
		if err != nil {
			return nil, fmt.Errorf("cluster %s: ws connect: %w", c.Cluster, err)
		}

		lanes[c.Cluster] = &clusterLane{
			client:       rpc.New(c.RpcUrl),
			ws:           wsClient,
			privKey:      privKey,
			unitLamports: c.UnitLamports,
		}
	}

	return &Dispatcher{config: cfg, lanes: lanes, log: log}, nil
}

func (d *Dispatcher) Kind() domain.FulfillmentKind { return domain.KIND_SOLANA }

func (d *Dispatcher) Name() string { return domain.DISPATCHER_SOLANA }

func (d *Dispatcher) PollInterval() time.Duration {
	return time.Duration(d.config.PollSeconds) * time.Second
}

func (d *Dispatcher) SubmitPayout(ctx context.Context, order *domain.Orders) (string, error) {
	lane, ok := d.lanes[order.Cluster]
	if !ok {
		return "", fmt.Errorf("%w: cluster %q", domain.ErrChainNotConfigured, order.Cluster)
	}

	to, err := solana.PublicKeyFromBase58(order.FulfillmentAddress)
	if err != nil {
		return "", fmt.Errorf("bad fulfillment address: %w", err)
	}

	amount := lane.unitLamports * uint64(order.Quantity)

	recent, err := lane.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(
				amount,
				lane.privKey.PublicKey(),
				to,
			).Build(),
		},
		recent.Value.Blockhash,
		solana.TransactionPayer(lane.privKey.PublicKey()),
	)
	if err != nil {
		return "", fmt.Errorf("build tx: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if lane.privKey.PublicKey().Equals(key) {
			return &lane.privKey
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("sign tx: %w", err)
	}

	sig, err := confirm.SendAndConfirmTransaction(ctx, lane.client, lane.ws, tx)
	if err != nil {
		return "", fmt.Errorf("send and confirm: %w", err)
	}

	return sig.String(), nil
}

func (d *Dispatcher) WaitFinality(ctx context.Context, order *domain.Orders, txHash string) error {
	lane, ok := d.lanes[order.Cluster]
	if !ok {
		return fmt.Errorf("%w: cluster %q", domain.ErrChainNotConfigured, order.Cluster)
	}

	sig, err := solana.SignatureFromBase58(txHash)
	if err != nil {
		return fmt.Errorf("bad signature: %w", err)
	}

	for {
		out, err := lane.client.GetSignatureStatuses(ctx, true, sig)
		if err == nil && len(out.Value) > 0 && out.Value[0] != nil {
			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("payout tx %s failed on chain", txHash)
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}
