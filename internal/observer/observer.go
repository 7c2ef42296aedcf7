package observer

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Invalidator drops a wallet's cached history.
type Invalidator interface {
	Invalidate(ctx context.Context, wallet string) error
}

// TransferObserver watches confirmed transactions over the RPC websocket and
// invalidates the cache for every account they touch, so the next
// eligibility check for an active wallet refetches instead of serving a
// day-old entry.
type TransferObserver struct {
	Conn    *websocket.Conn
	URL     string
	cache   Invalidator
	counter *EventCounter
}

func NewTransferObserver(url string, cache Invalidator) (*TransferObserver, error) {
	obs := &TransferObserver{
		URL:     url,
		cache:   cache,
		counter: NewEventCounter(),
	}
	if err := obs.Connect(); err != nil {
		return nil, err
	}
	return obs, nil
}

func (o *TransferObserver) Connect() error {
	log.Printf("Connecting to WebSocket URL: %s", o.URL)
	conn, _, err := websocket.DefaultDialer.Dial(o.URL, nil)
	if err != nil {
		log.Printf("Failed to connect to WebSocket: %v", err)
		return err
	}

	subscribeMsg := `{
        "jsonrpc": "2.0",
        "method": "transactionSubscribe",
        "id": 1,
        "params": [
            {"vote": false, "failed": false},
            {"commitment": "confirmed", "encoding": "jsonParsed", "transactionDetails": "full"}
        ]
    }`

	if err := conn.WriteMessage(websocket.TextMessage, []byte(subscribeMsg)); err != nil {
		log.Printf("Failed to send subscription message: %v", err)
		conn.Close()
		return err
	}
	log.Println("Subscribed to the transaction stream")

	o.Conn = conn
	return nil
}

// Watch reads notifications until the context ends. Read errors trigger a
// reconnect, never a crash; the observer is strictly best-effort.
func (o *TransferObserver) Watch(ctx context.Context, logger *log.Logger) {
	defer o.Conn.Close()
	for {
		if ctx.Err() != nil {
			return
		}
		_, message, err := o.Conn.ReadMessage()
		if err != nil {
			logger.Printf("Error reading message: %v", err)
			o.handleReconnection(ctx, logger)
			continue
		}

		if o.processMessage(ctx, message, logger) && o.counter.Observed()%500 == 0 {
			o.counter.PrintCounts(logger)
		}
	}
}

func (o *TransferObserver) handleReconnection(ctx context.Context, logger *log.Logger) {
	logger.Println("Attempting to reconnect...")
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
		if err := o.Connect(); err != nil {
			logger.Printf("Reconnection failed: %v", err)
			continue
		}
		logger.Println("Reconnected successfully")
		return
	}
}

func (o *TransferObserver) processMessage(ctx context.Context, message []byte, logger *log.Logger) bool {
	var msg map[string]interface{}
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Printf("Error parsing message: %v", err)
		return false
	}

	accounts := extractAccountKeys(msg)
	if len(accounts) == 0 {
		return false
	}
	o.counter.CountObserved()

	for _, account := range accounts {
		if err := o.cache.Invalidate(ctx, account); err != nil {
			logger.Printf("Error invalidating cache for %s: %v", account, err)
			continue
		}
		o.counter.CountInvalidated()
	}
	return true
}

// extractAccountKeys walks a transaction notification down to its account
// list. Keys arrive as plain strings or as {"pubkey": ...} objects depending
// on the encoding.
func extractAccountKeys(msg map[string]interface{}) []string {
	params, ok := msg["params"].(map[string]interface{})
	if !ok {
		return nil
	}
	result, ok := params["result"].(map[string]interface{})
	if !ok {
		return nil
	}
	tx, ok := result["transaction"].(map[string]interface{})
	if !ok {
		return nil
	}
	if inner, ok := tx["transaction"].(map[string]interface{}); ok {
		tx = inner
	}
	message, ok := tx["message"].(map[string]interface{})
	if !ok {
		return nil
	}
	rawKeys, ok := message["accountKeys"].([]interface{})
	if !ok {
		return nil
	}

	var accounts []string
	for _, raw := range rawKeys {
		switch key := raw.(type) {
		case string:
			accounts = append(accounts, normalizeKey(key))
		case map[string]interface{}:
			if pubkey, ok := key["pubkey"].(string); ok {
				accounts = append(accounts, normalizeKey(pubkey))
			}
		}
	}
	return accounts
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
