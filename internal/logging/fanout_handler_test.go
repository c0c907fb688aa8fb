package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func jsonSink(buf *bytes.Buffer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level})
}

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every sink is nil")
	}
	var buf bytes.Buffer
	inner := jsonSink(&buf, slog.LevelInfo)
	if h := newFanoutHandler(nil, inner, nil); h != inner {
		t.Fatal("expected the single live sink to be returned unwrapped")
	}
}

func TestFanoutHandlerRoutesByLevel(t *testing.T) {
	var infoBuf, warnBuf bytes.Buffer
	h := newFanoutHandler(jsonSink(&infoBuf, slog.LevelInfo), jsonSink(&warnBuf, slog.LevelWarn))
	logger := slog.New(h)

	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug should be disabled on both sinks")
	}
	logger.Info("member extracted")
	if infoBuf.Len() == 0 || warnBuf.Len() != 0 {
		t.Fatalf("info routed wrong: info=%q warn=%q", infoBuf.String(), warnBuf.String())
	}
	logger.Warn("member failed")
	if !bytes.Contains(warnBuf.Bytes(), []byte("member failed")) {
		t.Fatalf("warn sink missing record: %q", warnBuf.String())
	}
}

func TestFanoutHandlerDerivesAttrsAndGroups(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := newFanoutHandler(jsonSink(&buf1, slog.LevelInfo), jsonSink(&buf2, slog.LevelInfo))

	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String(FieldStage, "extract")}).WithGroup("member"))
	logger.Info("done", slog.String("name", "GSM1.txt.gz"))

	for i, buf := range []*bytes.Buffer{&buf1, &buf2} {
		for _, want := range []string{`"stage":"extract"`, `"member":{"name":"GSM1.txt.gz"}`} {
			if !bytes.Contains(buf.Bytes(), []byte(want)) {
				t.Errorf("sink %d missing %s in %q", i, want, buf.String())
			}
		}
	}
}
