package field

import (
	"testing"
	"time"
)

func TestDateTimeToSQLFormatsUTC(t *testing.T) {
	f := NewDateTime()
	loc := time.FixedZone("+0200", 2*60*60)
	ts := time.Date(2026, 3, 5, 14, 30, 0, 0, loc)

	got, err := f.ToSQL(ts)
	if err != nil {
		t.Fatalf("ToSQL returned error: %v", err)
	}
	want := "'2026-03-05 12:30:00'"
	if got != want {
		t.Errorf("ToSQL(%v) = %q, want %q", ts, got, want)
	}
}

func TestDateTimeFromSQLParsesBytesAndString(t *testing.T) {
	f := NewDateTime()
	want := time.Date(2026, 3, 5, 12, 30, 0, 0, time.UTC)

	got, err := f.FromSQL([]byte("2026-03-05 12:30:00"))
	if err != nil {
		t.Fatalf("FromSQL([]byte) returned error: %v", err)
	}
	if !got.(time.Time).Equal(want) {
		t.Errorf("FromSQL([]byte) = %v, want %v", got, want)
	}

	got, err = f.FromSQL("2026-03-05 12:30:00")
	if err != nil {
		t.Fatalf("FromSQL(string) returned error: %v", err)
	}
	if !got.(time.Time).Equal(want) {
		t.Errorf("FromSQL(string) = %v, want %v", got, want)
	}
}

func TestDateTimeNotNullableRejectsNil(t *testing.T) {
	f := NewDateTime()
	if _, err := f.ToSQL(nil); err == nil {
		t.Fatal("ToSQL(nil) on non-nullable datetime field should error")
	}
}

func TestDurationRoundTrip(t *testing.T) {
	f := NewDuration()
	d := 90 * time.Minute

	lit, err := f.ToSQL(d)
	if err != nil {
		t.Fatalf("ToSQL returned error: %v", err)
	}
	if lit != "5400" {
		t.Errorf("ToSQL(90m) = %q, want %q", lit, "5400")
	}

	got, err := f.FromSQL(int64(5400))
	if err != nil {
		t.Fatalf("FromSQL returned error: %v", err)
	}
	if got.(time.Duration) != d {
		t.Errorf("FromSQL(5400) = %v, want %v", got, d)
	}
}
