package payment

import (
	"context"
	"math/rand/v2"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var txnPattern = regexp.MustCompile(`^txn_1700000000000_[0-9a-z]{9}$`)

func fixed() time.Time { return time.UnixMilli(1700000000000) }

func TestSimulatorModes(t *testing.T) {
	amount := decimal.RequireFromString("42.50")

	t.Run("always", func(t *testing.T) {
		sim := NewSimulator(ModeAlways, 0).WithSource(rand.New(rand.NewPCG(1, 2)), fixed)
		for range 50 {
			res := sim.Charge(context.Background(), amount, "credit_card")
			if !res.Success || res.TransactionID == nil {
				t.Fatalf("expected success, got %+v", res)
			}
			if !txnPattern.MatchString(*res.TransactionID) {
				t.Fatalf("unexpected transaction id %q", *res.TransactionID)
			}
			if res.Message != "Payment processed successfully" {
				t.Fatalf("unexpected message %q", res.Message)
			}
		}
	})

	t.Run("never", func(t *testing.T) {
		sim := NewSimulator(ModeNever, 1).WithSource(rand.New(rand.NewPCG(1, 2)), fixed)
		res := sim.Charge(context.Background(), amount, "paypal")
		if res.Success || res.TransactionID != nil {
			t.Fatalf("expected failure, got %+v", res)
		}
		if !res.Amount.Equal(amount) || res.PaymentMethod != "paypal" {
			t.Fatalf("result should echo the request: %+v", res)
		}
		if !res.ProcessedAt.Equal(fixed()) {
			t.Fatalf("unexpected processedAt %v", res.ProcessedAt)
		}
	})
}

func TestSimulatorRandomRate(t *testing.T) {
	sim := NewSimulator("random", 0.9).WithSource(rand.New(rand.NewPCG(7, 11)), fixed)

	const n = 5000
	ok := 0
	for range n {
		if sim.Charge(context.Background(), decimal.NewFromInt(1), "credit_card").Success {
			ok++
		}
	}
	rate := float64(ok) / n
	if rate < 0.85 || rate > 0.95 {
		t.Fatalf("success rate %.3f too far from 0.9", rate)
	}
}

func TestSimulatorClampsRate(t *testing.T) {
	if got := NewSimulator(ModeRandom, 3).successRate; got != 1 {
		t.Fatalf("expected clamp to 1, got %v", got)
	}
	if got := NewSimulator(ModeRandom, -1).successRate; got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
}
