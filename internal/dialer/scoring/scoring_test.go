package scoring

import (
	"testing"

	"dialer_backend/internal/dialer/domain"

	"github.com/google/uuid"
)

func minutes(v int) *int {
	return &v
}

func lead(priority domain.Priority, conversion int, speedToLead *int) domain.Lead {
	return domain.Lead{
		ID:                   uuid.New(),
		Priority:             priority,
		ConversionLikelihood: conversion,
		SpeedToLeadMinutes:   speedToLead,
	}
}

func TestClassifyBucketsSpeedToLeadMinutes(t *testing.T) {
	cases := []struct {
		minutes *int
		want    Urgency
	}{
		{minutes(0), UrgencyCritical},
		{minutes(4), UrgencyCritical},
		{minutes(5), UrgencyUrgent},
		{minutes(14), UrgencyUrgent},
		{minutes(15), UrgencyWarm},
		{minutes(59), UrgencyWarm},
		{minutes(60), UrgencyCold},
		{minutes(600), UrgencyCold},
		{nil, UrgencyCold},
	}

	for _, tc := range cases {
		if got := Classify(tc.minutes); got != tc.want {
			t.Fatalf("Classify(%v) = %s, want %s", tc.minutes, got, tc.want)
		}
	}
}

func TestScoreAppliesSpeedBonusAndPriorityBoost(t *testing.T) {
	fresh := lead(domain.PriorityHigh, 70, minutes(3))
	if got := Score(fresh); got != 150 {
		t.Fatalf("expected (30+70)*1.5 = 150, got %v", got)
	}

	stale := lead(domain.PriorityMedium, 50, minutes(90))
	if got := Score(stale); got != 60 {
		t.Fatalf("expected (0+50)*1.2 = 60, got %v", got)
	}
}

func TestScoreTreatsUnknownPriorityAsLow(t *testing.T) {
	unknown := lead(domain.Priority("vip"), 40, nil)
	low := lead(domain.PriorityLow, 40, nil)
	if Score(unknown) != Score(low) {
		t.Fatalf("unknown priority should score like low, got %v vs %v", Score(unknown), Score(low))
	}
}

func TestFreshLeadOutranksStaleLeadOfEqualQuality(t *testing.T) {
	fresh := lead(domain.PriorityHigh, 50, minutes(3))
	stale := lead(domain.PriorityHigh, 50, minutes(120))

	if !Less(fresh, stale) {
		t.Fatal("expected a three-minute-old lead to outrank a two-hour-old one")
	}
	if Less(stale, fresh) {
		t.Fatal("ordering must be asymmetric")
	}
}

func TestLessTieBreaksOnFreshnessThenConversion(t *testing.T) {
	// Same urgency tier and conversion, so scores tie; the fresher lead wins.
	a := lead(domain.PriorityMedium, 40, minutes(6))
	b := lead(domain.PriorityMedium, 40, minutes(14))
	if !Less(a, b) {
		t.Fatal("expected tie to break toward the fresher lead")
	}

	// Tied score (60) and age across different priority bands; raw
	// conversion likelihood breaks the tie.
	c := lead(domain.PriorityLow, 60, nil)
	d := lead(domain.PriorityMedium, 50, nil)
	if Score(c) != Score(d) {
		t.Fatalf("test setup expects a score tie, got %v vs %v", Score(c), Score(d))
	}
	if !Less(c, d) {
		t.Fatal("expected the higher raw conversion likelihood to win the tie")
	}
}

func TestAbsentSpeedToLeadSortsAfterEveryRealValue(t *testing.T) {
	old := lead(domain.PriorityLow, 30, nil)
	known := lead(domain.PriorityLow, 30, minutes(300))

	if !Less(known, old) {
		t.Fatal("expected a lead with a known age to outrank one with none")
	}
}

func TestSortOrdersBestFirstAndIsStable(t *testing.T) {
	best := lead(domain.PriorityHigh, 90, minutes(2))
	mid := lead(domain.PriorityMedium, 60, minutes(30))
	worstA := lead(domain.PriorityLow, 10, nil)
	worstB := lead(domain.PriorityLow, 10, nil)

	leads := []domain.Lead{worstA, mid, worstB, best}
	Sort(leads)

	if leads[0].ID != best.ID {
		t.Fatalf("expected best lead first, got %s", leads[0].ID)
	}
	if leads[1].ID != mid.ID {
		t.Fatalf("expected mid lead second, got %s", leads[1].ID)
	}
	if leads[2].ID != worstA.ID || leads[3].ID != worstB.ID {
		t.Fatal("expected fully tied leads to keep their relative order")
	}
}
