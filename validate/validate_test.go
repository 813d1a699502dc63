package validate

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNameAcceptsSupportedScripts(t *testing.T) {
	cases := []string{
		"Aoi",
		"player_01",
		"さくや",
		"サクヤファン",
		"反応の達人",
		"Aoi さん！",
		"クイック・ドロー（2）",
	}
	for _, raw := range cases {
		sanitized, err := Name(raw)
		if err != nil {
			t.Errorf("Name(%q) unexpectedly rejected: %v", raw, err)
			continue
		}
		if sanitized == "" {
			t.Errorf("Name(%q) returned empty sanitized name", raw)
		}
	}
}

func TestNameRejectsInjectionVectors(t *testing.T) {
	cases := []string{
		"<script>alert(1)</script>",
		"javascript:alert(1)",
		"a onclick=steal()",
		"<iframe src=x>",
		"eval(document.cookie)",
		"../../etc/passwd",
		"window.location",
	}
	for _, raw := range cases {
		if _, err := Name(raw); !errors.Is(err, ErrNameDisallowed) {
			t.Errorf("Name(%q): expected disallowed-characters rejection, got %v", raw, err)
		}
	}
}

func TestNameRejectsEmptyAndOverlong(t *testing.T) {
	if _, err := Name(""); !errors.Is(err, ErrNameEmpty) {
		t.Errorf("empty name: expected %v, got %v", ErrNameEmpty, err)
	}
	if _, err := Name("   "); !errors.Is(err, ErrNameEmpty) {
		t.Errorf("whitespace-only name: expected %v, got %v", ErrNameEmpty, err)
	}
	if _, err := Name(strings.Repeat("あ", MaxNameLength+1)); !errors.Is(err, ErrNameTooLong) {
		t.Errorf("overlong name: expected %v, got %v", ErrNameTooLong, err)
	}
	// Exactly at the cap is fine
	if _, err := Name(strings.Repeat("あ", MaxNameLength)); err != nil {
		t.Errorf("name at the rune cap rejected: %v", err)
	}
}

func TestNameTrims(t *testing.T) {
	sanitized, err := Name("  Aoi  ")
	if err != nil {
		t.Fatalf("Name rejected padded input: %v", err)
	}
	if sanitized != "Aoi" {
		t.Errorf("Expected trimmed name, got %q", sanitized)
	}
}

func TestEscapeHTMLCoversReservedCharacters(t *testing.T) {
	got := EscapeHTML(`&<>"'`)
	want := "&amp;&lt;&gt;&quot;&#039;"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestScoreBounds(t *testing.T) {
	cases := []struct {
		score int
		want  bool
	}{
		{49, false},
		{50, true},
		{180, true},
		{10000, true},
		{10001, false},
		{-5, false},
	}
	for _, c := range cases {
		if got := Score(c.score, 50, 10000); got != c.want {
			t.Errorf("Score(%d) = %v, want %v", c.score, got, c.want)
		}
	}
}

func TestRecordStructuralCheck(t *testing.T) {
	now := time.Now()

	if !Record("Aoi", 180, now, 50, 10000) {
		t.Error("valid record rejected")
	}
	if Record("", 180, now, 50, 10000) {
		t.Error("record without a name accepted")
	}
	if Record("Aoi", 180, time.Time{}, 50, 10000) {
		t.Error("record without a timestamp accepted")
	}
	if Record("Aoi", 20, now, 50, 10000) {
		t.Error("record with an implausible score accepted")
	}
	if Record(strings.Repeat("x", MaxNameLength+1), 180, now, 50, 10000) {
		t.Error("record with an overlong name accepted")
	}
}
