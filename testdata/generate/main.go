// Command generate emits a deterministic sample transactions CSV for
// exercising the enrichment pipeline.
package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const leiAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomLEI(rng *rand.Rand) string {
	b := make([]byte, 20)
	for i := range b {
		b[i] = leiAlphabet[rng.Intn(len(leiAlphabet))]
	}
	return string(b)
}

func main() {
	rng := rand.New(rand.NewSource(42))

	// A small pool of LEIs, reused across rows so the dedup path gets
	// exercised.
	leis := make([]string, 12)
	for i := range leis {
		leis[i] = randomLEI(rng)
	}

	currencies := []string{"GBP", "EUR", "USD"}
	counterparties := []string{"CP-ALPHA", "CP-BRAVO", "CP-CHARLIE", "CP-DELTA"}

	startDate := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	out := filepath.Join("testdata", "sample_input.csv")
	f, err := os.Create(out)
	if err != nil {
		log.Fatalf("create %s: %v", out, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"transaction_uti", "isin", "trade_date", "counterparty", "currency", "notional", "rate", "lei"}
	if err := w.Write(header); err != nil {
		log.Fatalf("write header: %v", err)
	}

	const rows = 100
	for i := 1; i <= rows; i++ {
		tradeDate := startDate.AddDate(0, 0, rng.Intn(14))
		notional := float64(rng.Intn(9500)+500) * 1000
		rate := float64(rng.Intn(99000)+1000) / 10_000_000 // 0.0001 .. 0.01

		row := []string{
			fmt.Sprintf("UTI-%06d", i),
			fmt.Sprintf("GB00B%07d", rng.Intn(10000000)),
			tradeDate.Format("2006-01-02"),
			counterparties[rng.Intn(len(counterparties))],
			currencies[rng.Intn(len(currencies))],
			strconv.FormatFloat(notional, 'f', 1, 64),
			strconv.FormatFloat(rate, 'f', -1, 64),
			leis[rng.Intn(len(leis))],
		}
		if err := w.Write(row); err != nil {
			log.Fatalf("write row %d: %v", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("flush: %v", err)
	}

	log.Printf("Wrote %d rows to %s (%d unique LEIs)", rows, out, len(leis))
}
