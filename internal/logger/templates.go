package logger

func (l Logger) TemplOrderErr(message string, errorId string, orderId string, productId string, uri string, ip string) string {
	l.Error(message, LS_ORDERS, true, "order_id", orderId, "product_id", productId, "uri", uri, "error_id", errorId, "ip", ip)
	return errorId
}

func (l Logger) TemplOrderInfo(message string, orderId string, productId string, args ...any) {
	args = append([]any{"order_id", orderId, "product_id", productId}, args...)
	l.Info(message, LS_ORDERS, true, args...)
}

func (l Logger) TemplWatcherErr(message string, chain string, err error) {
	l.Error(message, LS_WATCHERS, true, "chain", chain, "error", err.Error())
}

func (l Logger) TemplWatcherInfo(message string, chain string, args ...any) {
	args = append([]any{"chain", chain}, args...)
	l.Info(message, LS_WATCHERS, true, args...)
}

func (l Logger) TemplDispatchErr(message string, dispatcher string, orderId string, err error) {
	l.Error(message, LS_DISPATCH, true, "dispatcher", dispatcher, "order_id", orderId, "error", err.Error())
}

func (l Logger) TemplDispatchInfo(message string, dispatcher string, orderId string, txHash string) {
	l.Info(message, LS_DISPATCH, true, "dispatcher", dispatcher, "order_id", orderId, "tx_hash", txHash)
}

// use only for fatal errors
func (l Logger) TemplHTTPError(message string, ipv4 string, err error) {
	l.Fatal(message, LS_FATAL, true, "error", err.Error(), "ipv4", ipv4)
}

func (l Logger) TemplNatsError(message, natsUrl string, err error) {
	l.Error(message, LS_NATS, true, "nats_url", natsUrl, "error", err.Error())
}

func (l Logger) TemplNatsInfo(message, natsUrl string) {
	l.Info(message, LS_NATS, true, "nats_url", natsUrl, "error", NA)
}
