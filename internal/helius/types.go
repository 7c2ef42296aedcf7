package helius

// NativeTransfer is a single SOL movement inside a transaction,
// amount in lamports.
type NativeTransfer struct {
	FromUserAccount string `json:"fromUserAccount"`
	ToUserAccount   string `json:"toUserAccount"`
	Amount          int64  `json:"amount"`
}

// Transaction is one enriched transaction from the Helius address
// history endpoint. Signature doubles as the pagination cursor.
type Transaction struct {
	Signature       string           `json:"signature"`
	Timestamp       int64            `json:"timestamp"`
	Type            string           `json:"type,omitempty"`
	NativeTransfers []NativeTransfer `json:"nativeTransfers"`
}
