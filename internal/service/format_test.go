package service

import (
	"testing"
	"time"

	"github.com/yuqie6/TrivialFit/internal/schema"
)

func TestFormatSetsSummary(t *testing.T) {
	w := 60.0
	sets := []schema.SetLog{
		{SetNumber: 0, Reps: 6, IsDropdown: true},
		{SetNumber: 1, Weight: &w, Reps: 10},
		{SetNumber: 2, Weight: &w, Reps: 8},
		{SetNumber: 0, Reps: 4, IsDropdown: true},
	}
	if got := FormatSetsSummary(sets); got != "60kg × 10, 8 + 6, 4" {
		t.Fatalf("summary=%q", got)
	}
	if got := FormatSetsSummary([]schema.SetLog{{SetNumber: 1, Reps: 12}}); got != "/ × 12" {
		t.Fatalf("summary without weight=%q", got)
	}
	bodyweightFirst := []schema.SetLog{
		{SetNumber: 1, Reps: 12},
		{SetNumber: 2, Weight: &w, Reps: 8},
	}
	if got := FormatSetsSummary(bodyweightFirst); got != "/ × 12, 8" {
		t.Fatalf("summary with unweighted first set=%q", got)
	}
	if got := FormatSetsSummary(nil); got != "No sets logged" {
		t.Fatalf("empty summary=%q", got)
	}
}

func TestFormatWeightAndDuration(t *testing.T) {
	if FormatWeight(62.5) != "62.5" || FormatWeight(60) != "60" {
		t.Fatalf("FormatWeight mismatch")
	}
	if FormatDuration(125*time.Second) != "2:05" || FormatDuration(0) != "0:00" {
		t.Fatalf("FormatDuration mismatch: %s", FormatDuration(125*time.Second))
	}
}
