package ledger

import (
	"errors"
	"testing"

	"github.com/fairhouse/casino-core/internal/repos/users"
)

func TestSplit_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		win         int64
		attr        users.BetAttribution
		wantDeposit int64
		wantPromo   int64
	}{
		{
			name:        "all_deposit",
			win:         200,
			attr:        users.BetAttribution{FromDeposit: 100, FromPromo: 0},
			wantDeposit: 200,
			wantPromo:   0,
		},
		{
			name:        "all_promo",
			win:         200,
			attr:        users.BetAttribution{FromDeposit: 0, FromPromo: 100},
			wantDeposit: 0,
			wantPromo:   200,
		},
		{
			name:        "even_split",
			win:         200,
			attr:        users.BetAttribution{FromDeposit: 50, FromPromo: 50},
			wantDeposit: 100,
			wantPromo:   100,
		},
		{
			name: "remainder_cent_goes_to_deposit",
			// 1/3 deposit attribution of 100: 33 to deposit, 33 to
			// promo by floor; the remaining 34th cent lands on deposit.
			win:         100,
			attr:        users.BetAttribution{FromDeposit: 1, FromPromo: 2},
			wantDeposit: 34,
			wantPromo:   66,
		},
		{
			name:        "zero_win",
			win:         0,
			attr:        users.BetAttribution{FromDeposit: 100, FromPromo: 0},
			wantDeposit: 0,
			wantPromo:   0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			deposit, promo, err := Split(tt.win, tt.attr)
			if err != nil {
				t.Fatalf("split: %v", err)
			}
			if deposit != tt.wantDeposit || promo != tt.wantPromo {
				t.Fatalf("want (%d,%d), got (%d,%d)", tt.wantDeposit, tt.wantPromo, deposit, promo)
			}
			if deposit+promo != tt.win {
				t.Fatalf("shares do not sum to win: %d+%d != %d", deposit, promo, tt.win)
			}
		})
	}
}

func TestSplit_ZeroAttribution(t *testing.T) {
	t.Parallel()

	_, _, err := Split(100, users.BetAttribution{})
	if !errors.Is(err, ErrInvalidAttribution) {
		t.Fatalf("expected ErrInvalidAttribution, got: %v", err)
	}
}

func TestSplit_SumExactAcrossRatios(t *testing.T) {
	t.Parallel()

	for dep := int64(0); dep <= 97; dep += 7 {
		attr := users.BetAttribution{FromDeposit: dep, FromPromo: 97 - dep}
		for win := int64(0); win < 1_000; win += 31 {
			d, p, err := Split(win, attr)
			if err != nil {
				t.Fatalf("split: %v", err)
			}
			if d+p != win {
				t.Fatalf("attr %+v win %d: %d+%d != win", attr, win, d, p)
			}
			if d < 0 || p < 0 {
				t.Fatalf("negative share: %d, %d", d, p)
			}
		}
	}
}

func TestCreditPlan_DepositProfitGoesToWinnings(t *testing.T) {
	t.Parallel()

	// Bet 100 from deposit, win 200: the stake returns to the pool, the
	// 100 profit lands on the winnings counter only.
	credit, err := CreditPlan(200, users.BetAttribution{FromDeposit: 100})
	if err != nil {
		t.Fatalf("credit plan: %v", err)
	}

	want := users.WinCredit{ToDepositBalance: 100, ToDepositWinnings: 100}
	if credit != want {
		t.Fatalf("want %+v, got %+v", want, credit)
	}
}

func TestCreditPlan_PromoShareStaysInPool(t *testing.T) {
	t.Parallel()

	credit, err := CreditPlan(300, users.BetAttribution{FromPromo: 100})
	if err != nil {
		t.Fatalf("credit plan: %v", err)
	}

	if credit.ToPromoBalance != 300 {
		t.Fatalf("promo share must return to the pool in full, got %+v", credit)
	}
	if credit.ToPromoWinnings != 200 {
		t.Fatalf("promo profit counter: want 200, got %d", credit.ToPromoWinnings)
	}
	if credit.ToDepositBalance != 0 || credit.ToDepositWinnings != 0 {
		t.Fatalf("deposit side must stay untouched, got %+v", credit)
	}
}

func TestCreditPlan_LossShrinksStakeBack(t *testing.T) {
	t.Parallel()

	// A partial cash-out below the stake returns only what was won.
	credit, err := CreditPlan(60, users.BetAttribution{FromDeposit: 100})
	if err != nil {
		t.Fatalf("credit plan: %v", err)
	}

	want := users.WinCredit{ToDepositBalance: 60}
	if credit != want {
		t.Fatalf("want %+v, got %+v", want, credit)
	}
}

func TestComputeWithdrawable_MixedPools(t *testing.T) {
	t.Parallel()

	// deposit=500, promo=1000, limit=300; a 100 deposit-funded bet wins
	// 200: winnings counter is 100 and the stake is back in the pool.
	b := users.Balances{
		DepositBalance:  500,
		DepositWinnings: 100,
		PromoBalance:    1_000,
		PromoLimit:      300,
	}

	w := ComputeWithdrawable(b)
	if w.Total != 900 {
		t.Fatalf("total: want 900, got %d", w.Total)
	}
	if w.FromPromo != 300 || w.FromDeposit != 600 || w.LockedPromo != 700 {
		t.Fatalf("breakdown mismatch: %+v", w)
	}
}

func TestComputeWithdrawable_WagerLocksPromo(t *testing.T) {
	t.Parallel()

	b := users.Balances{
		DepositBalance: 500,
		PromoBalance:   1_000,
		PromoLimit:     300,
		Wager:          1,
	}

	w := ComputeWithdrawable(b)
	if w.FromPromo != 0 {
		t.Fatalf("promo must be locked under an open wager, got %d", w.FromPromo)
	}
	if w.Total != 500 || w.LockedPromo != 1_000 {
		t.Fatalf("breakdown mismatch: %+v", w)
	}
}

func TestSplitWithdrawal_DrawOrder(t *testing.T) {
	t.Parallel()

	b := users.Balances{
		DepositBalance:  500,
		DepositWinnings: 100,
		PromoBalance:    1_000,
		PromoLimit:      300,
	}

	tests := []struct {
		name   string
		amount int64
		want   users.WithdrawalParts
	}{
		{name: "winnings_first", amount: 80, want: users.WithdrawalParts{FromWinnings: 80}},
		{name: "spills_into_deposit", amount: 300, want: users.WithdrawalParts{FromWinnings: 100, FromDeposit: 200}},
		{name: "reaches_promo", amount: 700, want: users.WithdrawalParts{FromWinnings: 100, FromDeposit: 500, FromPromo: 100}},
		{name: "full_withdrawable", amount: 900, want: users.WithdrawalParts{FromWinnings: 100, FromDeposit: 500, FromPromo: 300}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := splitWithdrawal(b, tt.amount)
			if got != tt.want {
				t.Fatalf("want %+v, got %+v", tt.want, got)
			}
			if got.Total() != tt.amount {
				t.Fatalf("parts do not sum to amount: %d != %d", got.Total(), tt.amount)
			}
		})
	}
}
