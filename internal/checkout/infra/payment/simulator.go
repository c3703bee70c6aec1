// Package payment simulates a card processor.
package payment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/shopdemo/internal/checkout/domain"
)

const (
	ModeRandom = "random"
	ModeAlways = "always"
	ModeNever  = "never"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

type Simulator struct {
	mode        string
	successRate float64

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewSimulator builds a processor for the given mode. Unknown modes behave
// like ModeRandom. The success rate is clamped to [0, 1].
func NewSimulator(mode string, successRate float64) *Simulator {
	switch {
	case successRate < 0:
		successRate = 0
	case successRate > 1:
		successRate = 1
	}
	return &Simulator{
		mode:        strings.ToLower(mode),
		successRate: successRate,
		rng:         rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
		now:         time.Now,
	}
}

// WithSource replaces the random source and clock, for tests.
func (s *Simulator) WithSource(rng *rand.Rand, now func() time.Time) *Simulator {
	s.rng = rng
	s.now = now
	return s
}

func (s *Simulator) Charge(_ context.Context, amount decimal.Decimal, method string) domain.PaymentResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	res := domain.PaymentResult{
		Amount:        amount,
		PaymentMethod: method,
		ProcessedAt:   now,
	}

	if !s.approve() {
		res.Message = "Payment processing failed"
		return res
	}

	txn := fmt.Sprintf("txn_%d_%s", now.UnixMilli(), s.suffix(9))
	res.Success = true
	res.TransactionID = &txn
	res.Message = "Payment processed successfully"
	return res
}

func (s *Simulator) approve() bool {
	switch s.mode {
	case ModeAlways:
		return true
	case ModeNever:
		return false
	default:
		return s.rng.Float64() < s.successRate
	}
}

func (s *Simulator) suffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36[s.rng.IntN(len(base36))]
	}
	return string(b)
}
