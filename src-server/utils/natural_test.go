package utils_test

import (
	"testing"
	"time"

	"devevents/src-server/utils"
)

func TestStartsAt(t *testing.T) {
	parser := utils.NewWhenParser()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		date, clock string
		want        time.Time
	}{
		{"2026-11-02", "18:30", time.Date(2026, 11, 2, 18, 30, 0, 0, time.UTC)},
		{"2026-11-02", "", time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)},
		{" 2026-11-02 ", " 09:05:30 ", time.Date(2026, 11, 2, 9, 5, 30, 0, time.UTC)},
	} {
		got, err := utils.StartsAt(parser, tc.date, tc.clock, time.UTC, now)
		if err != nil {
			t.Error(tc.date, tc.clock, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("StartsAt(%q, %q) = %v, want %v", tc.date, tc.clock, got, tc.want)
		}
	}

	// natural language lands in the future relative to now
	got, err := utils.StartsAt(parser, "tomorrow", "", time.UTC, now)
	if err != nil {
		t.Fatal(err)
	}
	if got.YearDay() != now.YearDay()+1 {
		t.Error("expected tomorrow, got", got)
	}

	if _, err := utils.StartsAt(parser, "", "  ", time.UTC, now); err == nil {
		t.Error("expected an error for blank input")
	}
	if _, err := utils.StartsAt(parser, "qwxz", "", time.UTC, now); err == nil {
		t.Error("expected an error for gibberish")
	}
}

func TestModeLabel(t *testing.T) {
	if got := utils.ModeLabel("hybrid"); got != "Hybrid" {
		t.Error("unexpected label", got)
	}
}

func TestGetFileHash(t *testing.T) {
	if utils.GetFileHash([]byte("a")) != utils.GetFileHash([]byte("a")) {
		t.Error("hash is not stable")
	}
	if got := utils.GetFileHash(nil); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Error("unexpected empty hash", got)
	}
}
