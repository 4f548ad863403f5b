package config

import (
	"testing"

	kit "langid/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	root := New()
	li := root.Prefix("LANGID_")
	if got := li.key("MODEL"); got != "LANGID_MODEL" {
		t.Fatalf("key() = %q, want %q", got, "LANGID_MODEL")
	}
	// nested prefix
	liLog := li.Prefix("LOG_")
	if got := liLog.key("LEVEL"); got != "LANGID_LOG_LEVEL" {
		t.Fatalf("nested key() = %q, want %q", got, "LANGID_LOG_LEVEL")
	}
}

// Must* panics

func TestMustString(t *testing.T) {
	c := New().Prefix("APP_")
	t.Setenv("APP_NAME", "  langid ")
	got := c.MustString("NAME")
	if got != "langid" {
		t.Fatalf("MustString = %q, want %q", got, "langid")
	}

	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestRequire(t *testing.T) {
	c := New().Prefix("REQ_")
	t.Setenv("REQ_A", "x")
	t.Setenv("REQ_B", "y")
	// should not panic
	c.Require("A", "B")

	// missing C should panic
	kit.MustPanic(t, func() { c.Require("A", "C") })
}

func TestRequireWhitespaceIsMissing(t *testing.T) {
	c := New().Prefix("REQ_")
	t.Setenv("REQ_WS", "   ")
	kit.MustPanic(t, func() { c.Require("WS") })
}

// May* fallbacks

func TestMayString(t *testing.T) {
	c := New().Prefix("S_")
	if got := c.MayString("MISSING", "def"); got != "def" {
		t.Fatalf("MayString default = %q, want %q", got, "def")
	}
	t.Setenv("S_NAME", " langid ")
	if got := c.MayString("NAME", "x"); got != "langid" {
		t.Fatalf("MayString value = %q, want %q", got, "langid")
	}
}

func TestMayInt(t *testing.T) {
	c := New().Prefix("I_")
	if got := c.MayInt("MISSING", 9); got != 9 {
		t.Fatalf("MayInt default = %d, want %d", got, 9)
	}
	t.Setenv("I_OK", " 7 ")
	if got := c.MayInt("OK", 0); got != 7 {
		t.Fatalf("MayInt ok = %d, want %d", got, 7)
	}
	t.Setenv("I_BAD", "x")
	if got := c.MayInt("BAD", 3); got != 3 {
		t.Fatalf("MayInt bad -> default = %d, want %d", got, 3)
	}
}

func TestMayFloat64(t *testing.T) {
	c := New().Prefix("F_")
	if got := c.MayFloat64("MISSING", 0.5); got != 0.5 {
		t.Fatalf("MayFloat64 default = %v, want 0.5", got)
	}
	t.Setenv("F_OK", " 0.75 ")
	if got := c.MayFloat64("OK", 0); got != 0.75 {
		t.Fatalf("MayFloat64 ok = %v, want 0.75", got)
	}
	t.Setenv("F_BAD", "half")
	if got := c.MayFloat64("BAD", 0.25); got != 0.25 {
		t.Fatalf("MayFloat64 bad -> default = %v, want 0.25", got)
	}
}

func TestMayBool(t *testing.T) {
	c := New().Prefix("B_")
	if got := c.MayBool("MISSING", true); got != true {
		t.Fatalf("MayBool default true expected")
	}
	t.Setenv("B_T", "true")
	if got := c.MayBool("T", false); got != true {
		t.Fatalf("MayBool true expected")
	}
	t.Setenv("B_BAD", "nope")
	if got := c.MayBool("BAD", false); got != false {
		t.Fatalf("MayBool bad -> default false expected")
	}
}
