package chains

import (
	"context"
	"time"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
)

// TransferEvent is one on-chain transfer into a watched deposit
// address, normalized across chain families.
type TransferEvent struct {
	TxHash        string
	Height        uint64 // block for EVM/TRON, slot for Solana
	TokenContract string
	ToAddress     string
	RawAmount     string // smallest-unit integer string, no rounding ever
}

// WatchTarget is one deposit address a watcher scans for.
type WatchTarget struct {
	OrderID           string
	TokenContract     string
	Address           string
	ExpectedRawAmount string
}

// CursorStore persists scan positions. Implementations must never move
// a position backwards.
type CursorStore interface {
	Get(chain domain.Chain, scanKey string) (position uint64, found bool, err error)
	Put(chain domain.Chain, scanKey string, position uint64, unit string) error
}

// Watcher scans one payment chain. Implementations own their cursor
// keys (per contract, per address, or a single timeline) and resume
// from the persisted position after a restart.
type Watcher interface {
	Chain() domain.Chain
	PollInterval() time.Duration
	ConfirmThreshold() uint

	// Poll advances the cursors and returns transfers into any of the
	// target addresses. Re-observing an already recorded transfer is
	// fine, the payment layer is idempotent by tx hash.
	Poll(ctx context.Context, targets []WatchTarget) ([]TransferEvent, error)

	// Confirmations of a recorded payment at the current head.
	Confirmations(ctx context.Context, payment *domain.Payments) (uint, error)
}

// Dispatcher delivers payouts for one fulfillment kind.
type Dispatcher interface {
	Kind() domain.FulfillmentKind
	Name() string
	PollInterval() time.Duration

	// SubmitPayout sends the payout transaction and returns its hash.
	SubmitPayout(ctx context.Context, order *domain.Orders) (txHash string, err error)

	// WaitFinality blocks until txHash is final on chain.
	WaitFinality(ctx context.Context, order *domain.Orders, txHash string) error
}
