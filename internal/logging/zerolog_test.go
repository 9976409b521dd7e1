package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newZerologTestLogger() (*ZerologLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := zerolog.New(&buf).Level(zerolog.DebugLevel)
	return NewZerologLogger(l), &buf
}

func TestZerologLogger_Levels_WriteExpectedOutput(t *testing.T) {
	log, buf := newZerologTestLogger()
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()

	tests := []struct {
		level string
		msg   string
		attr  string
	}{
		{"debug", "dbg", `"a":1`},
		{"info", "inf", `"b":2`},
		{"warn", "wrn", `"c":3`},
		{"error", "err", `"d":4`},
	}

	for _, tc := range tests {
		if !strings.Contains(out, `"level":"`+tc.level+`"`) {
			t.Fatalf("expected line with level %s in output:\n%s", tc.level, out)
		}
		if !strings.Contains(out, `"message":"`+tc.msg+`"`) {
			t.Fatalf("expected line with message %q in output:\n%s", tc.msg, out)
		}
		if !strings.Contains(out, tc.attr) {
			t.Fatalf("expected attribute %s in output:\n%s", tc.attr, out)
		}
	}
}

func TestZerologLogger_With_AddsFields(t *testing.T) {
	log, buf := newZerologTestLogger()

	log.With("module", "uploader").Info(context.Background(), "hello", "k", "v")

	out := buf.String()
	for _, s := range []string{`"module":"uploader"`, `"message":"hello"`, `"k":"v"`} {
		if !strings.Contains(out, s) {
			t.Fatalf("expected %q in output, got:\n%s", s, out)
		}
	}
}

func TestZerologLogger_NonStringKeyDoesNotPanic(t *testing.T) {
	log, buf := newZerologTestLogger()

	log.Info(context.Background(), "odd", 42, "v")

	if !strings.Contains(buf.String(), `"42":"v"`) {
		t.Fatalf("expected stringified key in output, got:\n%s", buf.String())
	}
}
