package holders

import (
	"testing"

	"phoenix-analyzer/internal/clients_api/solanarpc"
)

func accounts(amounts ...float64) []solanarpc.HolderAccount {
	out := make([]solanarpc.HolderAccount, 0, len(amounts))
	for i, a := range amounts {
		out = append(out, solanarpc.HolderAccount{
			Address:  string(rune('A' + i)),
			UIAmount: a,
		})
	}
	return out
}

func TestTopPctTwoHolders(t *testing.T) {
	t.Parallel()

	list := accounts(80, 20)
	if got := TopPct(list, 1); got != 80.0 {
		t.Fatalf("top1: got %f want 80", got)
	}
	if got := TopPct(list, 5); got != 100.0 {
		t.Fatalf("top5: got %f want 100", got)
	}
}

func TestTopPctMonotonic(t *testing.T) {
	t.Parallel()

	list := accounts(40, 25, 15, 10, 5, 3, 1, 1)
	prev := 0.0
	for _, n := range []int{1, 5, 10, 20} {
		got := TopPct(list, n)
		if got < prev {
			t.Fatalf("top%d=%f dropped below previous %f", n, got, prev)
		}
		if got > 100.0001 {
			t.Fatalf("top%d=%f exceeds 100", n, got)
		}
		prev = got
	}
}

func TestTopPctDegenerateInputs(t *testing.T) {
	t.Parallel()

	if got := TopPct(nil, 5); got != 0 {
		t.Fatalf("empty list: got %f want 0", got)
	}
	if got := TopPct(accounts(0, 0), 5); got != 0 {
		t.Fatalf("zero total: got %f want 0", got)
	}
}

func TestAnalyzeBestCase(t *testing.T) {
	t.Parallel()

	// top1=5%, top10=28%:
	// 50 +25 (no mint auth) +10 (no freeze) +5 (top1 small) +15 (top10<30) = 105, clamped to 100
	list := []solanarpc.HolderAccount{
		{Address: "A", UIAmount: 5},
		{Address: "B", UIAmount: 2},
		{Address: "C", UIAmount: 2},
		{Address: "D", UIAmount: 1},
	}
	// pad the total to 100 with small accounts
	for i := 0; i < 30; i++ {
		list = append(list, solanarpc.HolderAccount{Address: "pad", UIAmount: 3})
	}
	s := Analyze(list, false, false)
	if s.Top1Pct != 5.0 {
		t.Fatalf("top1: got %f want 5", s.Top1Pct)
	}
	if s.Score != 100 {
		t.Fatalf("score: got %d want 100", s.Score)
	}
	if s.DevLikelyInControl {
		t.Fatal("dev must not be flagged in-control")
	}
}

func TestAnalyzeConcentratedWithAuthorities(t *testing.T) {
	t.Parallel()

	// top1=80%: 50 -20 (mint auth) -25 (top1>30) -15 (top10>60) = 0 with freeze auth present
	s := Analyze(accounts(80, 20), true, true)
	if s.Score != 0 {
		t.Fatalf("score: got %d want 0", s.Score)
	}
	if !s.DevLikelyInControl {
		t.Fatal("dev must be flagged in-control")
	}
	if !s.MintAuthorityPresent || !s.FreezeAuthorityPresent {
		t.Fatal("authority flags lost")
	}
}

func TestAnalyzeMidConcentration(t *testing.T) {
	t.Parallel()

	// top1=20%: -10 and dev flag; top10=100% > 60: -15
	// 50 +25 +10 -10 -15 = 60
	s := Analyze(accounts(20, 20, 20, 20, 20), false, false)
	if s.Score != 60 {
		t.Fatalf("score: got %d want 60", s.Score)
	}
	if !s.DevLikelyInControl {
		t.Fatal("top1 above 15%% must set the dev flag")
	}
}

func TestAnalyzeEmptyHolderList(t *testing.T) {
	t.Parallel()

	// all concentrations zero: 50 +25 +10 = 85, no concentration adjustments
	s := Analyze(nil, false, false)
	if s.Score != 85 {
		t.Fatalf("score: got %d want 85", s.Score)
	}
	if s.Score < 0 || s.Score > 100 {
		t.Fatalf("score %d out of bounds", s.Score)
	}
}
