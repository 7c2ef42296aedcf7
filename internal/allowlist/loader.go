package allowlist

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Sources names the three list inputs; each is a local path or an
// http(s) URL, empty meaning "no list configured".
type Sources struct {
	DegenBonusCSV string
	OGListCSV     string
	RoleHolderCSV string
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Load builds a snapshot from the configured sources. A source that fails
// to load yields an empty list so the service still boots; the error is
// logged and the next reload can pick the list up.
func Load(ctx context.Context, sources Sources, logger *log.Logger) *Snapshot {
	degen := make(map[string]int64)
	if sources.DegenBonusCSV != "" {
		rows, err := readRows(ctx, sources.DegenBonusCSV)
		if err != nil {
			logger.Printf("failed to load degen bonus list from %s: %v", sources.DegenBonusCSV, err)
		}
		for _, row := range rows {
			degen[row.wallet] = row.amount
		}
	}

	og := loadSet(ctx, sources.OGListCSV, "OG list", logger)
	role := loadSet(ctx, sources.RoleHolderCSV, "role holder list", logger)

	return NewSnapshot(degen, og, role)
}

func loadSet(ctx context.Context, source, name string, logger *log.Logger) []string {
	if source == "" {
		return nil
	}
	rows, err := readRows(ctx, source)
	if err != nil {
		logger.Printf("failed to load %s from %s: %v", name, source, err)
		return nil
	}
	wallets := make([]string, 0, len(rows))
	for _, row := range rows {
		wallets = append(wallets, row.wallet)
	}
	return wallets
}

type row struct {
	wallet string
	amount int64
}

func readRows(ctx context.Context, source string) ([]row, error) {
	rc, err := open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	walletCol, amountCol := 0, 1
	if len(records) > 0 && looksLikeHeader(records[0]) {
		walletCol, amountCol = headerColumns(records[0])
		records = records[1:]
	}

	var rows []row
	for _, record := range records {
		if walletCol >= len(record) {
			continue
		}
		wallet := normalize(record[walletCol])
		if wallet == "" {
			continue
		}
		var amount int64
		if amountCol >= 0 && amountCol < len(record) {
			// Malformed amounts stay at zero, the row still counts.
			if v, err := strconv.ParseInt(strings.TrimSpace(record[amountCol]), 10, 64); err == nil {
				amount = v
			}
		}
		rows = append(rows, row{wallet: wallet, amount: amount})
	}
	return rows, nil
}

func looksLikeHeader(record []string) bool {
	for _, field := range record {
		if strings.EqualFold(strings.TrimSpace(field), "wallet") {
			return true
		}
	}
	return false
}

func headerColumns(header []string) (walletCol, amountCol int) {
	walletCol, amountCol = 0, -1
	for i, field := range header {
		switch strings.ToLower(strings.TrimSpace(field)) {
		case "wallet":
			walletCol = i
		case "amount":
			amountCol = i
		}
	}
	return walletCol, amountCol
}

func open(ctx context.Context, source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch csv: %w", err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch csv: status %d", resp.StatusCode)
		}
		return resp.Body, nil
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	return f, nil
}
