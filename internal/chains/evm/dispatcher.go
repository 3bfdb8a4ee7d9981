package evm

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/config"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
)

const nativeTransferGasLimit = uint64(21000)

// one funded hot wallet per product, each on its own chain
type productLane struct {
	client  *ethclient.Client
	privKey *ecdsa.PrivateKey
	from    common.Address
	unitWei *big.Int
	chainID *big.Int
}

// Dispatcher pays out native EVM coins, routed by product.
type Dispatcher struct {
	lanes map[string]*productLane
	log   logger.Logger
}

func NewDispatcher(configs []config.EvmDispatch, log logger.Logger) (*Dispatcher, error) {
	lanes := make(map[string]*productLane, len(configs))

	for _, cfg := range configs {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}

		client, err := ethclient.Dial(cfg.RpcUrl)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", cfg.RpcUrl, err)
		}

		privKey, err := crypto.HexToECDSA(cfg.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("product %s: bad private key: %w", cfg.ProductID, err)
		}

		unitWei, ok := new(big.Int).SetString(cfg.UnitAmountWei, 10)
		if !ok || unitWei.Sign() <= 0 {
			return nil, fmt.Errorf("product %s: bad unit_amount_wei %q", cfg.ProductID, cfg.UnitAmountWei)
		}

		chainID, err := client.NetworkID(context.Background())
		if err != nil {
			return nil, fmt.Errorf("product %s: network id: %w", cfg.ProductID, err)
		}

		lanes[cfg.ProductID] = &productLane{
			client:  client,
			privKey: privKey,
			from:    crypto.PubkeyToAddress(privKey.PublicKey),
			unitWei: unitWei,
			chainID: chainID,
		}
	}

	return &Dispatcher{lanes: lanes, log: log}, nil
}

func (d *Dispatcher) Kind() domain.FulfillmentKind { return domain.KIND_EVM }

func (d *Dispatcher) Name() string { return domain.DISPATCHER_EVM }

func (d *Dispatcher) PollInterval() time.Duration { return 5 * time.Second }

func (d *Dispatcher) SubmitPayout(ctx context.Context, order *domain.Orders) (string, error) {
	lane, ok := d.lanes[order.ProductID]
	if !ok {
		return "", fmt.Errorf("%w: product %s", domain.ErrChainNotConfigured, order.ProductID)
	}

	amount := new(big.Int).Mul(lane.unitWei, new(big.Int).SetUint64(uint64(order.Quantity)))

	nonce, err := lane.client.PendingNonceAt(ctx, lane.from)
	if err != nil {
		return "", fmt.Errorf("pending nonce: %w", err)
	}

	gasPrice, err := lane.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("suggest gas price: %w", err)
	}

	balance, err := lane.client.BalanceAt(ctx, lane.from, nil)
	if err != nil {
		return "", fmt.Errorf("balance: %w", err)
	}
	gasCost := new(big.Int).Mul(new(big.Int).SetUint64(nativeTransferGasLimit), gasPrice)
	needed := new(big.Int).Add(amount, gasCost)
	if balance.Cmp(needed) < 0 {
		return "", fmt.Errorf("insufficient hot wallet funds: have %s, need %s", balance, needed)
	}

	tx := types.NewTransaction(nonce, common.HexToAddress(order.FulfillmentAddress), amount, nativeTransferGasLimit, gasPrice, nil)

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(lane.chainID), lane.privKey)
	if err != nil {
		return "", fmt.Errorf("sign tx: %w", err)
	}

	if err := lane.client.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("send tx: %w", err)
	}

	return signedTx.Hash().Hex(), nil
}

func (d *Dispatcher) WaitFinality(ctx context.Context, order *domain.Orders, txHash string) error {
	lane, ok := d.lanes[order.ProductID]
	if !ok {
		return fmt.Errorf("%w: product %s", domain.ErrChainNotConfigured, order.ProductID)
	}

	tx, _, err := lane.client.TransactionByHash(ctx, common.HexToHash(txHash))
	if err != nil {
		return fmt.Errorf("tx by hash: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, lane.client, tx)
	if err != nil {
		return fmt.Errorf("wait mined: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("payout tx %s reverted", txHash)
	}
	return nil
}
