package sui

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/config"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
)

const suiCoinType = "0x2::sui::SUI"

// ed25519 scheme flag, prefixed to pubkeys and signatures
const ed25519Flag = byte(0x00)

// Dispatcher pays out testnet SUI through the fullnode JSON-RPC API.
// Transactions are built server side with unsafe_paySui and signed
// locally over the blake2b intent digest.
type Dispatcher struct {
	config  config.SuiDispatch
	client  *rpcClient
	privKey ed25519.PrivateKey
	address string
	log     logger.Logger
}

func NewDispatcher(cfg config.SuiDispatch, log logger.Logger) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed, err := hex.DecodeString(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil || len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("sui dispatch: key must be a %d byte hex seed", ed25519.SeedSize)
	}
	privKey := ed25519.NewKeyFromSeed(seed)

	return &Dispatcher{
		config:  cfg,
		client:  newRpcClient(cfg.RpcUrl),
		privKey: privKey,
		address: addressFromPubkey(privKey.Public().(ed25519.PublicKey)),
		log:     log,
	}, nil
}

// sui address = 0x || hex(blake2b256(flag || pubkey))
func addressFromPubkey(pub ed25519.PublicKey) string {
	digest := blake2b.Sum256(append([]byte{ed25519Flag}, pub...))
	return "0x" + hex.EncodeToString(digest[:])
}

func (d *Dispatcher) Kind() domain.FulfillmentKind { return domain.KIND_SUI }

func (d *Dispatcher) Name() string { return domain.DISPATCHER_SUI }

func (d *Dispatcher) PollInterval() time.Duration {
	return time.Duration(d.config.PollSeconds) * time.Second
}

type coin struct {
	CoinObjectID string `json:"coinObjectId"`
	Balance      string `json:"balance"`
}

type coinsPage struct {
	Data []coin `json:"data"`
}

type txBytesResult struct {
	TxBytes string `json:"txBytes"`
}

type executeResult struct {
	Digest  string `json:"digest"`
	Effects *struct {
		Status struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"status"`
	} `json:"effects"`
}

func (d *Dispatcher) SubmitPayout(ctx context.Context, order *domain.Orders) (string, error) {
	amount := new(big.Int).Mul(
		new(big.Int).SetUint64(d.config.UnitAmountMist),
		new(big.Int).SetUint64(uint64(order.Quantity)),
	)

	gasCoin, err := d.pickGasCoin(ctx, amount)
	if err != nil {
		return "", err
	}

	var unsigned txBytesResult
	err = d.client.call(ctx, "unsafe_paySui", []any{
		d.address,
		[]string{gasCoin},
		[]string{order.FulfillmentAddress},
		[]string{amount.String()},
		fmt.Sprint(d.config.GasBudget),
	}, &unsigned)
	if err != nil {
		return "", fmt.Errorf("build pay tx: %w", err)
	}

	signature, err := d.signTxBytes(unsigned.TxBytes)
	if err != nil {
		return "", err
	}

	var result executeResult
	err = d.client.call(ctx, "sui_executeTransactionBlock", []any{
		unsigned.TxBytes,
		[]string{signature},
		map[string]bool{"showEffects": true},
		"WaitForLocalExecution",
	}, &result)
	if err != nil {
		return "", fmt.Errorf("execute tx: %w", err)
	}

	if result.Effects != nil && result.Effects.Status.Status != "success" {
		return result.Digest, fmt.Errorf("payout tx %s failed: %s", result.Digest, result.Effects.Status.Error)
	}

	return result.Digest, nil
}

// pickGasCoin returns a SUI coin that covers amount plus gas budget.
func (d *Dispatcher) pickGasCoin(ctx context.Context, amount *big.Int) (string, error) {
	var page coinsPage
	if err := d.client.call(ctx, "suix_getCoins", []any{d.address, suiCoinType, nil, nil}, &page); err != nil {
		return "", fmt.Errorf("get coins: %w", err)
	}

	needed := new(big.Int).Add(amount, new(big.Int).SetUint64(d.config.GasBudget))
	for _, c := range page.Data {
		balance, ok := new(big.Int).SetString(c.Balance, 10)
		if ok && balance.Cmp(needed) >= 0 {
			return c.CoinObjectID, nil
		}
	}

	return "", fmt.Errorf("insufficient hot wallet funds: no coin covers %s mist", needed)
}

// signTxBytes signs over the TransactionData intent:
// blake2b256(intent prefix || tx bytes), serialized as
// base64(flag || signature || pubkey).
func (d *Dispatcher) signTxBytes(txBytesB64 string) (string, error) {
	txBytes, err := base64.StdEncoding.DecodeString(txBytesB64)
	if err != nil {
		return "", fmt.Errorf("decode tx bytes: %w", err)
	}

	// intent: scope=TransactionData, version=0, app=Sui
	message := append([]byte{0, 0, 0}, txBytes...)
	digest := blake2b.Sum256(message)

	signature := ed25519.Sign(d.privKey, digest[:])

	serialized := make([]byte, 0, 1+len(signature)+ed25519.PublicKeySize)
	serialized = append(serialized, ed25519Flag)
	serialized = append(serialized, signature...)
	serialized = append(serialized, d.privKey.Public().(ed25519.PublicKey)...)

	return base64.StdEncoding.EncodeToString(serialized), nil
}

type txBlockResult struct {
	Effects *struct {
		Status struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"status"`
	} `json:"effects"`
}

func (d *Dispatcher) WaitFinality(ctx context.Context, order *domain.Orders, txHash string) error {
	for {
		var result txBlockResult
		err := d.client.call(ctx, "sui_getTransactionBlock", []any{
			txHash,
			map[string]bool{"showEffects": true},
		}, &result)
		if err == nil && result.Effects != nil {
			if result.Effects.Status.Status == "success" {
				return nil
			}
			return fmt.Errorf("payout tx %s failed: %s", txHash, result.Effects.Status.Error)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}
