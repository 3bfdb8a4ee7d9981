package domain

// shapes exposed to the rest layer

type RequestCreateOrder struct {
	ProductID          string `json:"product_id" binding:"required"`
	Quantity           uint   `json:"quantity" binding:"required"`
	FulfillmentAddress string `json:"fulfillment_address" binding:"required"`
	Cluster            string `json:"cluster"`
	Contact            string `json:"contact"`
}

type RequestCreateTicket struct {
	OrderID      string `json:"order_id"`
	ContactType  string `json:"contact_type" binding:"required"`
	ContactValue string `json:"contact_value" binding:"required"`
	Message      string `json:"message" binding:"required"`
}

type RequestManualFulfill struct {
	TxHash string `json:"tx_hash" binding:"required"`
}

type RequestProvisionPool struct {
	Chain         string   `json:"chain" binding:"required"`
	TokenSymbol   string   `json:"token_symbol" binding:"required"`
	TokenContract string   `json:"token_contract"`
	Addresses     []string `json:"addresses" binding:"required"`
}

type ResponsePaymentOption struct {
	Chain             string `json:"chain"`
	TokenSymbol       string `json:"token_symbol"`
	AmountDisplay     string `json:"amount_display"`
	ExpectedRawAmount string `json:"expected_raw_amount"`
	Address           string `json:"address"`
}

type ResponseOrderInfo struct {
	OrderID       string `json:"order_id"`
	Status        string `json:"status"`
	ProductID     string `json:"product_id"`
	Quantity      uint   `json:"quantity"`
	UnitPriceUsd  string `json:"unit_price_usd"`
	TotalPriceUsd string `json:"total_price_usd"`
	CreatedAt     string `json:"created_at"`
	ExpiresAt     string `json:"expires_at"`

	PaymentTxHash    string `json:"payment_tx_hash,omitempty"`
	ShipmentTxHash   string `json:"shipment_tx_hash,omitempty"`
	FailReason       string `json:"fail_reason,omitempty"`
	LatePaymentFlag  bool   `json:"late_payment_flag"`
	ExtraPaymentFlag bool   `json:"extra_payment_flag"`

	PaymentOptions []ResponsePaymentOption `json:"payment_options"`
}

type ResponseProductInfo struct {
	ProductID       string `json:"product_id"`
	Title           string `json:"title"`
	PriceUsd        string `json:"price_usd"`
	MinPurchaseQty  uint   `json:"min_purchase_qty"`
	QuantityStep    uint   `json:"quantity_step"`
	FulfillmentKind string `json:"fulfillment_kind"`
	RequiresCluster bool   `json:"requires_cluster"`
}

type ResponseTicketInfo struct {
	TicketID  string `json:"ticket_id"`
	OrderID   string `json:"order_id,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}
