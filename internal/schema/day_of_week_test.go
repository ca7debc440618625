package schema

import (
	"testing"
	"time"
)

func TestParseDayOfWeek(t *testing.T) {
	cases := map[string]DayOfWeek{
		"monday":    Monday,
		" SATURDAY": Saturday,
		"wed":       Wednesday,
		"Sun":       Sunday,
	}
	for in, want := range cases {
		got, err := ParseDayOfWeek(in)
		if err != nil {
			t.Fatalf("ParseDayOfWeek(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseDayOfWeek(%q)=%s, want %s", in, got, want)
		}
	}

	if _, err := ParseDayOfWeek("funday"); err == nil {
		t.Fatalf("expected error for unknown day")
	}
	if _, err := ParseDayOfWeek(""); err == nil {
		t.Fatalf("expected error for empty day")
	}
}

func TestDayOfWeekConversions(t *testing.T) {
	if Monday.DisplayName() != "Monday" {
		t.Fatalf("DisplayName=%q, want Monday", Monday.DisplayName())
	}
	if Sunday.Ordinal() != 6 || Monday.Ordinal() != 0 {
		t.Fatalf("unexpected ordinals: mon=%d sun=%d", Monday.Ordinal(), Sunday.Ordinal())
	}
	if DayOfWeek("X").Ordinal() != -1 || DayOfWeek("X").Valid() {
		t.Fatalf("unknown day should have ordinal -1")
	}
	for _, d := range AllDays {
		if FromWeekday(d.Weekday()) != d {
			t.Fatalf("round trip failed for %s", d)
		}
	}
	if FromWeekday(time.Sunday) != Sunday {
		t.Fatalf("FromWeekday(Sunday) != SUNDAY")
	}
}
