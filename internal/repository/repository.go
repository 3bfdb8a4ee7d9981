package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
)

type Orders interface {
	Create(tx *gorm.DB, order *domain.Orders) error
	Update(tx *gorm.DB, order *domain.Orders) error
	FindByOrderID(tx *gorm.DB, orderId string) (*domain.Orders, error)
	// FindByOrderIDForUpdate takes a FOR UPDATE row lock, callers must be
	// inside a transaction.
	FindByOrderIDForUpdate(tx *gorm.DB, orderId string) (*domain.Orders, error)
	ListDispatchable(tx *gorm.DB, kind domain.FulfillmentKind, limit int) ([]domain.Orders, error)
	ListExpiryCandidates(tx *gorm.DB, now time.Time, limit int) ([]domain.Orders, error)
	ListByStatuses(tx *gorm.DB, statuses []domain.Status) ([]domain.Orders, error)
	ListFlagged(tx *gorm.DB) ([]domain.Orders, error)
}

type Products interface {
	Create(tx *gorm.DB, product *domain.Products) error
	Update(tx *gorm.DB, product *domain.Products) error
	FindByProductID(tx *gorm.DB, productId string) (*domain.Products, error)
	ListEnabled(tx *gorm.DB) ([]domain.Products, error)
}

type Pool interface {
	Insert(tx *gorm.DB, entry *domain.AddressPool) error
	Update(tx *gorm.DB, entry *domain.AddressPool) error
	// AcquireForUpdate locks and returns the oldest free address for
	// (chain, symbol). Callers must be inside a transaction.
	AcquireForUpdate(tx *gorm.DB, chain domain.Chain, tokenSymbol string) (*domain.AddressPool, error)
	Release(tx *gorm.DB, address string) error
	CountFree(tx *gorm.DB, chain domain.Chain, tokenSymbol string) (int64, error)
}

type PaymentAddresses interface {
	Create(tx *gorm.DB, addr *domain.PaymentAddresses) error
	ListByOrder(tx *gorm.DB, orderId string) ([]domain.PaymentAddresses, error)
	// ListAwaited returns addresses of orders still in a payment-watched
	// status on the given chain.
	ListAwaited(tx *gorm.DB, chain domain.Chain) ([]domain.PaymentAddresses, error)
	FindMatch(tx *gorm.DB, chain domain.Chain, tokenContract, toAddress string) (*domain.PaymentAddresses, error)
}

type Payments interface {
	Create(tx *gorm.DB, payment *domain.Payments) error
	Update(tx *gorm.DB, payment *domain.Payments) error
	FindByTxHash(tx *gorm.DB, txHash string) (*domain.Payments, error)
	CountByOrder(tx *gorm.DB, orderId string) (int64, error)
	ListByOrderNewestFirst(tx *gorm.DB, orderId string) ([]domain.Payments, error)
	ListUnconfirmed(tx *gorm.DB, chain domain.Chain) ([]domain.Payments, error)
}

type Shipments interface {
	Create(tx *gorm.DB, shipment *domain.Shipments) error
	Update(tx *gorm.DB, shipment *domain.Shipments) error
	FindByOrderID(tx *gorm.DB, orderId string) (*domain.Shipments, error)
	// DeleteByOrderID drops a failed claim so the order can be dispatched again
	DeleteByOrderID(tx *gorm.DB, orderId string) error
}

type Events interface {
	Append(tx *gorm.DB, orderId string, eventType string, payload any) error
	ListByOrder(tx *gorm.DB, orderId string) ([]domain.OrderEvents, error)
}

type Cursors interface {
	Get(tx *gorm.DB, chain domain.Chain, scanKey string) (*domain.WatcherCursors, error)
	// Put advances the cursor, positions never move backwards.
	Put(tx *gorm.DB, chain domain.Chain, scanKey string, position uint64, unit string) error
}

type Support interface {
	Create(tx *gorm.DB, ticket *domain.SupportTickets) error
	Update(tx *gorm.DB, ticket *domain.SupportTickets) error
	FindByTicketID(tx *gorm.DB, ticketId string) (*domain.SupportTickets, error)
	ListOpen(tx *gorm.DB) ([]domain.SupportTickets, error)
}

type Repositories struct {
	Orders           Orders
	Products         Products
	Pool             Pool
	PaymentAddresses PaymentAddresses
	Payments         Payments
	Shipments        Shipments
	Events           Events
	Cursors          Cursors
	Support          Support
}

func New() *Repositories {
	return &Repositories{
		Orders:           InitOrdersRepo(),
		Products:         InitProductsRepo(),
		Pool:             InitPoolRepo(),
		PaymentAddresses: InitPaymentAddressesRepo(),
		Payments:         InitPaymentsRepo(),
		Shipments:        InitShipmentsRepo(),
		Events:           InitEventsRepo(),
		Cursors:          InitCursorsRepo(),
		Support:          InitSupportRepo(),
	}
}

func statusInts(statuses []domain.Status) []int {
	out := make([]int, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, int(s))
	}
	return out
}
