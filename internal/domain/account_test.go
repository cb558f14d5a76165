package domain

import (
	"errors"
	"math"
	"testing"
)

func mustAccount(t *testing.T, id int, cash int64, holdings map[string]int64) *Account {
	t.Helper()
	a, err := NewAccount(id, cash, holdings)
	if err != nil {
		t.Fatalf("NewAccount() error = %v", err)
	}
	return a
}

func TestNewAccount_RejectsNegative(t *testing.T) {
	var verr *ValidationError
	if _, err := NewAccount(1, -1, nil); !errors.As(err, &verr) {
		t.Errorf("negative cash: error = %v, want *ValidationError", err)
	}
	if _, err := NewAccount(1, 10, map[string]int64{"APL": -2}); !errors.As(err, &verr) {
		t.Errorf("negative holding: error = %v, want *ValidationError", err)
	}
}

func TestNewAccount_CopiesHoldings(t *testing.T) {
	src := map[string]int64{"APL": 5}
	a := mustAccount(t, 1, 0, src)
	src["APL"] = 99
	if got := a.Quantity("APL"); got != 5 {
		t.Errorf("Quantity(APL) = %d, want 5", got)
	}
}

func TestAccount_QuantityMissingIsZero(t *testing.T) {
	a := mustAccount(t, 1, 0, nil)
	if got := a.Quantity("NONE"); got != 0 {
		t.Errorf("Quantity(NONE) = %d, want 0", got)
	}
}

func TestAccount_BuyAndSell(t *testing.T) {
	a := mustAccount(t, 1, 1000, nil)

	if err := a.Buy("APL", 5, 150); err != nil {
		t.Fatalf("Buy() error = %v", err)
	}
	if a.Cash != 250 || a.Quantity("APL") != 5 {
		t.Errorf("after Buy: cash=%d qty=%d, want 250/5", a.Cash, a.Quantity("APL"))
	}

	if err := a.Sell("APL", 2, 200); err != nil {
		t.Fatalf("Sell() error = %v", err)
	}
	if a.Cash != 650 || a.Quantity("APL") != 3 {
		t.Errorf("after Sell: cash=%d qty=%d, want 650/3", a.Cash, a.Quantity("APL"))
	}
}

func TestAccount_BuyInsufficientFunds(t *testing.T) {
	a := mustAccount(t, 1, 100, nil)
	err := a.Buy("APL", 2, 51)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Buy() error = %v, want ErrInsufficientFunds", err)
	}
	if a.Cash != 100 || a.Quantity("APL") != 0 {
		t.Errorf("failed Buy mutated account: cash=%d qty=%d", a.Cash, a.Quantity("APL"))
	}
}

func TestAccount_SellInsufficientInventory(t *testing.T) {
	a := mustAccount(t, 1, 0, map[string]int64{"APL": 1})
	err := a.Sell("APL", 2, 10)
	if !errors.Is(err, ErrInsufficientInventory) {
		t.Fatalf("Sell() error = %v, want ErrInsufficientInventory", err)
	}
	if a.Cash != 0 || a.Quantity("APL") != 1 {
		t.Errorf("failed Sell mutated account: cash=%d qty=%d", a.Cash, a.Quantity("APL"))
	}
}

func TestTransfer_AllOrNothing(t *testing.T) {
	buyer := mustAccount(t, 1, 100, nil)
	seller := mustAccount(t, 2, 0, map[string]int64{"APL": 10})

	// Buyer cannot afford: neither side changes.
	if err := Transfer(buyer, seller, "APL", 5, 30); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Transfer() error = %v, want ErrInsufficientFunds", err)
	}
	if buyer.Cash != 100 || seller.Quantity("APL") != 10 || seller.Cash != 0 {
		t.Fatal("failed Transfer mutated an account")
	}

	// Seller short of shares: neither side changes.
	if err := Transfer(buyer, seller, "APL", 11, 1); !errors.Is(err, ErrInsufficientInventory) {
		t.Fatalf("Transfer() error = %v, want ErrInsufficientInventory", err)
	}
	if buyer.Cash != 100 || buyer.Quantity("APL") != 0 {
		t.Fatal("failed Transfer mutated the buyer")
	}

	if err := Transfer(buyer, seller, "APL", 5, 20); err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}
	if buyer.Cash != 0 || buyer.Quantity("APL") != 5 || seller.Cash != 100 || seller.Quantity("APL") != 5 {
		t.Errorf("after Transfer: buyer=(%d,%d) seller=(%d,%d)",
			buyer.Cash, buyer.Quantity("APL"), seller.Cash, seller.Quantity("APL"))
	}
}

func TestTransfer_SelfTradeIsNeutral(t *testing.T) {
	a := mustAccount(t, 1, 500, map[string]int64{"APL": 3})
	if err := Transfer(a, a, "APL", 3, 100); err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}
	if a.Cash != 500 || a.Quantity("APL") != 3 {
		t.Errorf("self trade changed account: cash=%d qty=%d", a.Cash, a.Quantity("APL"))
	}
}

func TestCost(t *testing.T) {
	cases := []struct {
		qty, price int64
		want       int64
		ok         bool
	}{
		{5, 20, 100, true},
		{0, math.MaxInt64, 0, true},
		{math.MaxInt64, 1, math.MaxInt64, true},
		{1 << 62, 3, 0, false},
		{math.MaxInt64/2 + 1, 2, 0, false},
		{-1, 10, 0, false},
		{1, -10, 0, false},
	}
	for _, tc := range cases {
		got, ok := Cost(tc.qty, tc.price)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Cost(%d, %d) = (%d, %v), want (%d, %v)", tc.qty, tc.price, got, ok, tc.want, tc.ok)
		}
	}
}

func TestAccount_CanBuyRejectsWrappingCost(t *testing.T) {
	a := mustAccount(t, 1, 0, nil)
	// 2^62 × 3 wraps to a negative int64.
	if a.CanBuy("APL", 1<<62, 3) {
		t.Fatal("CanBuy accepted a cost that overflows int64")
	}
	// 2^62 × 4 wraps to exactly 0.
	if a.CanBuy("APL", 1<<62, 4) {
		t.Fatal("CanBuy accepted a cost that wraps to zero")
	}
	if err := a.Buy("APL", 1<<62, 3); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Buy() error = %v, want ErrInsufficientFunds", err)
	}
	if a.Cash != 0 || a.Quantity("APL") != 0 {
		t.Errorf("failed Buy mutated the account: cash=%d qty=%d", a.Cash, a.Quantity("APL"))
	}
}

func TestAccount_SellRejectsCashOverflow(t *testing.T) {
	a := mustAccount(t, 1, math.MaxInt64, map[string]int64{"APL": 2})
	if err := a.Sell("APL", 1, 1); !errors.Is(err, ErrBalanceOverflow) {
		t.Fatalf("Sell() error = %v, want ErrBalanceOverflow", err)
	}
	if a.Cash != math.MaxInt64 || a.Quantity("APL") != 2 {
		t.Errorf("failed Sell mutated the account: cash=%d qty=%d", a.Cash, a.Quantity("APL"))
	}
}

func TestTransfer_RejectsOverflowWithoutSideEffects(t *testing.T) {
	buyer := mustAccount(t, 1, 0, nil)
	seller := mustAccount(t, 2, 0, map[string]int64{"APL": 1 << 62})

	if err := Transfer(buyer, seller, "APL", 1<<62, 3); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Transfer() error = %v, want ErrInsufficientFunds", err)
	}
	if buyer.Cash != 0 || buyer.Quantity("APL") != 0 || seller.Cash != 0 || seller.Quantity("APL") != 1<<62 {
		t.Fatalf("failed Transfer mutated an account: buyer=(%d,%d) seller=(%d,%d)",
			buyer.Cash, buyer.Quantity("APL"), seller.Cash, seller.Quantity("APL"))
	}

	rich := mustAccount(t, 3, 10, nil)
	full := mustAccount(t, 4, math.MaxInt64-5, map[string]int64{"APL": 1})
	if err := Transfer(rich, full, "APL", 1, 10); !errors.Is(err, ErrBalanceOverflow) {
		t.Fatalf("Transfer() error = %v, want ErrBalanceOverflow", err)
	}
	if rich.Cash != 10 || full.Cash != math.MaxInt64-5 || full.Quantity("APL") != 1 {
		t.Fatal("failed Transfer mutated an account")
	}
}
