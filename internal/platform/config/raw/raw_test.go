package raw

import "testing"

func TestEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "  info ")
	t.Setenv("LOG_CALLER", "YES")
	t.Setenv("LOG_COLOR", "0")
	t.Setenv("LOG_BAD_BOOL", "sometimes")
	t.Setenv("LOG_SAMPLE_EVERY", "10")
	t.Setenv("LOG_NEGATIVE", "-3")
	t.Setenv("LOG_WORDS", "ten")

	e := Env("LOG_")
	cases := []struct {
		name string
		got  any
		want any
	}{
		{"trimmed", e.Get("LEVEL", "debug"), "info"},
		{"default string", e.Get("MISSING", "console"), "console"},
		{"yes", e.Bool("CALLER", false), true},
		{"zero", e.Bool("COLOR", true), false},
		{"bad bool", e.Bool("BAD_BOOL", true), true},
		{"missing bool", e.Bool("MISSING", true), true},
		{"int", e.Int("SAMPLE_EVERY", 0), 10},
		{"negative", e.Int("NEGATIVE", 1), 1},
		{"words", e.Int("WORDS", 2), 2},
		{"missing int", e.Int("MISSING", 3), 3},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, tc.got, tc.want)
		}
	}

	if got := Env("").Get("LOG_LEVEL", ""); got != "info" {
		t.Fatalf("empty prefix = %q", got)
	}
}
