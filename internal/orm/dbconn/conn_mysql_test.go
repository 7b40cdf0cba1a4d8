package dbconn

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildDSNWithPassword(t *testing.T) {
	cfg := &Config{Host: "db.internal", Port: 3306, User: "app", Password: "secret", Database: "airline"}
	got := buildDSN(cfg)
	want := "app:secret@tcp(db.internal:3306)/airline?parseTime=true"
	if got != want {
		t.Errorf("buildDSN() = %q, want %q", got, want)
	}
}

func TestBuildDSNWithoutPassword(t *testing.T) {
	cfg := &Config{Host: "db.internal", Port: 3306, User: "app", Database: "airline"}
	got := buildDSN(cfg)
	want := "app@tcp(db.internal:3306)/airline?parseTime=true"
	if got != want {
		t.Errorf("buildDSN() = %q, want %q", got, want)
	}
}

func TestBuildDSNWithTLS(t *testing.T) {
	cfg := &Config{Host: "db.internal", Port: 3306, User: "app", Database: "airline", TLS: true}
	got := buildDSN(cfg)
	if !strings.HasSuffix(got, "?parseTime=true&tls=true") {
		t.Errorf("buildDSN() = %q, want a tls=true param appended", got)
	}
}

func TestIsRetryableMatchesTransientErrors(t *testing.T) {
	cases := []string{
		"driver: bad connection",
		"invalid connection",
		"write: broken pipe",
		"read: connection reset by peer",
		"dial tcp: connection refused",
		"packets.go:36: unexpected EOF, server lost connection",
		"mysql: server has gone away",
		"dial tcp: i/o timeout",
	}
	for _, msg := range cases {
		if !isRetryable(errors.New(msg)) {
			t.Errorf("isRetryable(%q) = false, want true", msg)
		}
	}
}

func TestIsRetryableRejectsPermanentErrors(t *testing.T) {
	cases := []string{
		"Error 1062: Duplicate entry 'x' for key 'name'",
		"Error 1146: Table 'airline.planes' doesn't exist",
		"syntax error near 'SELCT'",
	}
	for _, msg := range cases {
		if isRetryable(errors.New(msg)) {
			t.Errorf("isRetryable(%q) = true, want false", msg)
		}
	}
}

func TestIsRetryableNilError(t *testing.T) {
	if isRetryable(nil) {
		t.Error("isRetryable(nil) = true, want false")
	}
}

func TestSpanSQLTruncatesLongQueries(t *testing.T) {
	q := strings.Repeat("a", 400)
	got := spanSQL(q)
	if !strings.HasPrefix(got, strings.Repeat("a", 300)) {
		t.Errorf("spanSQL(400 chars) did not preserve the first 300 characters: %q", got)
	}
	if len(got) != 300+len("…") {
		t.Errorf("spanSQL(400 chars) length = %d, want %d (300 + ellipsis)", len(got), 300+len("…"))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("spanSQL(long query) = %q, want an ellipsis suffix", got)
	}
}

func TestSpanSQLPassesThroughShortQueries(t *testing.T) {
	q := "SELECT id FROM airlines"
	if got := spanSQL(q); got != q {
		t.Errorf("spanSQL(short query) = %q, want unchanged %q", got, q)
	}
}
