// Package oplog implements the opportunity log of spec.md §6: an
// append-only newline-delimited JSON sink, filtering entries below a
// dust-lamports threshold. Grounded on the teacher's altcache-style
// append-only file writer (appendHotlist), generalized from one base58
// line per append into one JSON object per append.
package oplog

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/solmev/coreengine/pkg/core"
)

// Entry is one opportunity record, matching spec.md §6's named schema
// exactly: {slot, venue, route, input_amount, output_amount,
// profit_lamports, profit_sol, latency_us, timestamp}.
type Entry struct {
	Slot            uint64        `json:"slot"`
	Venue           core.Venue    `json:"venue"`
	Route           []string      `json:"route"`
	InputAmount     uint64        `json:"input_amount"`
	OutputAmount    uint64        `json:"output_amount"`
	ProfitLamports  int64         `json:"profit_lamports"`
	ProfitSol       float64       `json:"profit_sol"`
	LatencyMicros   int64         `json:"latency_us"`
	Timestamp       int64         `json:"timestamp"`
}

const lamportsPerSol = 1_000_000_000

// Logger appends Entry records to an ndjson file, dropping anything below
// its dust threshold. New substitutes spec.md's stated source default of
// 10^6 lamports when given a zero threshold.
type Logger struct {
	mu                    sync.Mutex
	f                     *os.File
	dustThresholdLamports int64
}

// New opens (creating if necessary) path for append and returns a Logger
// filtering entries below dustThresholdLamports.
func New(path string, dustThresholdLamports int64) (*Logger, error) {
	if dustThresholdLamports == 0 {
		dustThresholdLamports = 1_000_000
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("oplog: open %s: %w", path, err)
	}
	return &Logger{f: f, dustThresholdLamports: dustThresholdLamports}, nil
}

// Log writes e as one JSON line, unless its profit falls below the dust
// threshold, in which case it is silently dropped per spec.md §6.
func (l *Logger) Log(e Entry) error {
	if e.ProfitLamports < l.dustThresholdLamports {
		return nil
	}
	e.ProfitSol = float64(e.ProfitLamports) / lamportsPerSol

	l.mu.Lock()
	defer l.mu.Unlock()
	enc := json.NewEncoder(l.f)
	return enc.Encode(e)
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
