package sysutil

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetLogLevel_AllVariants(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"  DeBuG  ", zerolog.DebugLevel}, // case + trim
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel}, // empty -> info
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel}, // alias
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"unknown", zerolog.InfoLevel}, // default
	}

	for _, tc := range cases {
		SetLogLevel(tc.in)
		if got := zerolog.GlobalLevel(); got != tc.want {
			t.Fatalf("SetLogLevel(%q) -> %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestSetupLogger_JSONAndPretty(t *testing.T) {
	origLevel, origLogger := zerolog.GlobalLevel(), log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(origLevel)
		log.Logger = origLogger
	})

	var buf bytes.Buffer
	SetupLogger("warn", false, &buf)
	log.Info().Msg("dropped")
	log.Warn().Str("patient_id", "p1").Msg("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("want 1 line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if rec["message"] != "kept" || rec["patient_id"] != "p1" || rec["time"] == nil {
		t.Fatalf("unexpected record: %v", rec)
	}

	buf.Reset()
	SetupLogger("info", true, &buf)
	log.Info().Msg("hello")
	if out := buf.String(); strings.HasPrefix(out, "{") || !strings.Contains(out, "hello") {
		t.Fatalf("pretty output unexpected: %q", out)
	}
}

func TestParseOptionalBool(t *testing.T) {
	if v, ok := ParseOptionalBool("  "); !ok || v != nil {
		t.Fatalf("blank should be (nil, true), got (%v, %v)", v, ok)
	}
	for _, s := range []string{"1", "TRUE", " yes ", "on"} {
		if v, ok := ParseOptionalBool(s); !ok || v == nil || !*v {
			t.Fatalf("ParseOptionalBool(%q) should be true", s)
		}
	}
	for _, s := range []string{"0", "false", "No", "off"} {
		if v, ok := ParseOptionalBool(s); !ok || v == nil || *v {
			t.Fatalf("ParseOptionalBool(%q) should be false", s)
		}
	}
	if v, ok := ParseOptionalBool("maybe"); ok || v != nil {
		t.Fatalf("garbage should be (nil, false), got (%v, %v)", v, ok)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("FirstNonEmpty() = %q; want \"\"", got)
	}
	if got := FirstNonEmpty(" ", "\t", "\n"); got != "" {
		t.Fatalf("FirstNonEmpty(empties) = %q; want \"\"", got)
	}
	// picks first non-empty (preserves original spacing)
	if got := FirstNonEmpty("   ", "  nurse  ", "demo"); got != "  nurse  " {
		t.Fatalf("FirstNonEmpty(...) = %q; want %q", got, "  nurse  ")
	}
}
