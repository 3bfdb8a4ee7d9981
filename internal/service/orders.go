package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/nats"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/infra/postgres"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/metrics"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/repository"
)

// PaymentRail is one (chain, token) pair orders can be paid on,
// assembled from the watcher configuration at startup.
type PaymentRail struct {
	Chain    domain.Chain
	Symbol   string
	Contract string
	Decimals uint
}

type expiryScheduler interface {
	Schedule(orderId string, at time.Time)
}

type OrdersService struct {
	db        *gorm.DB
	repos     *repository.Repositories
	rails     []PaymentRail
	rateLimit *RateLimitService
	expiry    expiryScheduler
	n         *nats.NatsInfra
	m         *metrics.EngineMetrics
	l         logger.Logger
	expiresIn time.Duration
}

func NewOrdersService(db *gorm.DB, repos *repository.Repositories, rails []PaymentRail, rateLimit *RateLimitService, expiry expiryScheduler, n *nats.NatsInfra, m *metrics.EngineMetrics, l logger.Logger, expiresIn time.Duration) *OrdersService {
	return &OrdersService{
		db:        db,
		repos:     repos,
		rails:     rails,
		rateLimit: rateLimit,
		expiry:    expiry,
		n:         n,
		m:         m,
		l:         l,
		expiresIn: expiresIn,
	}
}

func (s *OrdersService) Create(req *domain.RequestCreateOrder, ip string) (*domain.ResponseOrderInfo, error) {
	if !s.rateLimit.Allow(ip) {
		return nil, domain.ErrRateLimited
	}

	product, err := s.repos.Products.FindByProductID(s.db, req.ProductID)
	if err != nil || !product.Enabled {
		if err != nil && !postgres.IsNotFound(err) {
			s.l.TemplOrderErr("find product: "+err.Error(), logger.GenErrorId(), logger.NA, req.ProductID, logger.NA, ip)
			return nil, domain.ErrInternalServerError
		}
		return nil, domain.ErrProductNotFound
	}

	if err := validateQuantity(product, req.Quantity); err != nil {
		return nil, err
	}
	if err := validateCluster(product, req.Cluster); err != nil {
		return nil, err
	}
	if err := domain.ValidateFulfillmentAddress(product.FulfillmentKind, req.FulfillmentAddress); err != nil {
		return nil, err
	}

	order := &domain.Orders{
		OrderID:            uuid.NewString(),
		ProductID:          product.ProductID,
		Quantity:           req.Quantity,
		Status:             domain.STATUS_PENDING_PAYMENT,
		FulfillmentKind:    product.FulfillmentKind,
		FulfillmentAddress: req.FulfillmentAddress,
		Cluster:            req.Cluster,
		Contact:            req.Contact,
		ExpiresAt:          time.Now().Add(s.expiresIn),
	}

	var options []domain.PaymentAddresses

	err = postgres.Serializable(s.db, func(tx *gorm.DB) error {
		if err := s.repos.Orders.Create(tx, order); err != nil {
			return err
		}

		// one deposit address per rail, all or nothing
		for _, rail := range s.rails {
			addr, err := s.allocateAddress(tx, order, product, rail)
			if err != nil {
				return err
			}
			options = append(options, *addr)
		}

		return s.repos.Events.Append(tx, order.OrderID, domain.EVENT_ORDER_CREATED, domain.PayloadOrderCreated{IP: ip, Quantity: order.Quantity})
	})
	if err != nil {
		var exhausted *domain.PoolExhaustedError
		if errors.As(err, &exhausted) {
			s.m.RecordPoolExhausted(exhausted.Chain.ToString(), exhausted.TokenSymbol)
			return nil, err
		}
		s.l.TemplOrderErr("create order: "+err.Error(), logger.GenErrorId(), order.OrderID, product.ProductID, logger.NA, ip)
		return nil, domain.ErrInternalServerError
	}

	s.m.RecordOrderCreated(product.ProductID, product.FulfillmentKind.ToString())
	for _, rail := range s.rails {
		if free, err := s.repos.Pool.CountFree(s.db, rail.Chain, rail.Symbol); err == nil {
			s.m.RecordPoolFree(rail.Chain.ToString(), rail.Symbol, free)
		}
	}
	s.expiry.Schedule(order.OrderID, order.ExpiresAt)
	s.n.PublishJson(nats.SubjOrderCreated, map[string]string{"order_id": order.OrderID, "product_id": product.ProductID}) //nolint:errcheck // best effort

	s.l.TemplOrderInfo("order created", order.OrderID, product.ProductID, "quantity", order.Quantity)

	return s.buildInfo(order, product, options, "", "")
}

func (s *OrdersService) allocateAddress(tx *gorm.DB, order *domain.Orders, product *domain.Products, rail PaymentRail) (*domain.PaymentAddresses, error) {
	entry, err := s.repos.Pool.AcquireForUpdate(tx, rail.Chain, rail.Symbol)
	if err != nil {
		if postgres.IsNotFound(err) {
			return nil, domain.PoolExhausted(rail.Chain, rail.Symbol)
		}
		return nil, err
	}

	entry.InUse = true
	if err := s.repos.Pool.Update(tx, entry); err != nil {
		return nil, err
	}

	expectedRaw, err := domain.ExpectedRawAmount(product.PriceUsd, rail.Decimals, order.Quantity)
	if err != nil {
		return nil, err
	}

	unitPrice, err := decimal.NewFromString(product.PriceUsd)
	if err != nil {
		return nil, err
	}

	addr := &domain.PaymentAddresses{
		OrderID:           order.OrderID,
		Chain:             rail.Chain,
		TokenSymbol:       rail.Symbol,
		TokenContract:     domain.CanonicalContract(rail.Chain, rail.Contract),
		Address:           entry.Address,
		AmountDisplay:     unitPrice.Mul(decimal.NewFromInt(int64(order.Quantity))),
		ExpectedRawAmount: expectedRaw,
	}

	return addr, s.repos.PaymentAddresses.Create(tx, addr)
}

func (s *OrdersService) Get(orderId string) (*domain.ResponseOrderInfo, error) {
	if uuid.Validate(orderId) != nil {
		return nil, domain.ErrInvalidOrderId
	}

	order, err := s.repos.Orders.FindByOrderID(s.db, orderId)
	if err != nil {
		if postgres.IsNotFound(err) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.ErrInternalServerError
	}

	product, err := s.repos.Products.FindByProductID(s.db, order.ProductID)
	if err != nil {
		return nil, domain.ErrInternalServerError
	}

	options, err := s.repos.PaymentAddresses.ListByOrder(s.db, orderId)
	if err != nil {
		return nil, domain.ErrInternalServerError
	}

	var paymentTxHash string
	if payments, err := s.repos.Payments.ListByOrderNewestFirst(s.db, orderId); err == nil && len(payments) > 0 {
		paymentTxHash = payments[0].TxHash
	}

	var shipmentTxHash string
	if shipment, err := s.repos.Shipments.FindByOrderID(s.db, orderId); err == nil {
		shipmentTxHash = shipment.TxHash
	}

	return s.buildInfo(order, product, options, paymentTxHash, shipmentTxHash)
}

func (s *OrdersService) Products() ([]domain.ResponseProductInfo, error) {
	products, err := s.repos.Products.ListEnabled(s.db)
	if err != nil {
		return nil, domain.ErrInternalServerError
	}

	out := make([]domain.ResponseProductInfo, 0, len(products))
	for _, p := range products {
		out = append(out, domain.ResponseProductInfo{
			ProductID:       p.ProductID,
			Title:           p.Title,
			PriceUsd:        p.PriceUsd,
			MinPurchaseQty:  p.MinPurchaseQty,
			QuantityStep:    p.QuantityStep,
			FulfillmentKind: p.FulfillmentKind.ToString(),
			RequiresCluster: p.RequiresCluster,
		})
	}
	return out, nil
}

func (s *OrdersService) buildInfo(order *domain.Orders, product *domain.Products, options []domain.PaymentAddresses, paymentTxHash, shipmentTxHash string) (*domain.ResponseOrderInfo, error) {
	unitPrice, err := decimal.NewFromString(product.PriceUsd)
	if err != nil {
		return nil, domain.ErrInternalServerError
	}

	info := &domain.ResponseOrderInfo{
		OrderID:          order.OrderID,
		Status:           order.Status.ToString(),
		ProductID:        order.ProductID,
		Quantity:         order.Quantity,
		UnitPriceUsd:     product.PriceUsd,
		TotalPriceUsd:    unitPrice.Mul(decimal.NewFromInt(int64(order.Quantity))).String(),
		CreatedAt:        order.CreatedAt.UTC().Format(time.RFC3339),
		ExpiresAt:        order.ExpiresAt.UTC().Format(time.RFC3339),
		PaymentTxHash:    paymentTxHash,
		ShipmentTxHash:   shipmentTxHash,
		FailReason:       order.FailReason,
		LatePaymentFlag:  order.LatePaymentFlag,
		ExtraPaymentFlag: order.ExtraPaymentFlag,
	}

	for _, o := range options {
		info.PaymentOptions = append(info.PaymentOptions, domain.ResponsePaymentOption{
			Chain:             o.Chain.ToString(),
			TokenSymbol:       o.TokenSymbol,
			AmountDisplay:     o.AmountDisplay.String(),
			ExpectedRawAmount: o.ExpectedRawAmount,
			Address:           o.Address,
		})
	}

	return info, nil
}

func validateQuantity(product *domain.Products, quantity uint) error {
	if quantity == 0 || quantity < product.MinPurchaseQty {
		return domain.ErrInvalidQuantity
	}
	if product.QuantityStep > 1 && quantity%product.QuantityStep != 0 {
		return domain.ErrInvalidQuantity
	}
	return nil
}

func validateCluster(product *domain.Products, cluster string) error {
	if product.RequiresCluster {
		if cluster != domain.CLUSTER_DEVNET && cluster != domain.CLUSTER_TESTNET {
			return domain.ErrClusterRequired
		}
		return nil
	}
	if cluster != "" {
		return domain.ErrClusterNotAllowed
	}
	return nil
}
