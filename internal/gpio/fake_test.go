package gpio

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"
)

// captureLog redirects the standard logger for the duration of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestFakeControllerSetupStartsLow(t *testing.T) {
	f := NewFakeController(Options{})

	out, err := f.Setup(23)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Channel() != 23 {
		t.Errorf("Channel: got %d, want 23", out.Channel())
	}
	if out.Level() != Low {
		t.Errorf("Level: got %s, want LOW", out.Level())
	}

	reqs := f.Requests()
	if len(reqs) != 1 || reqs[0] != 23 {
		t.Errorf("Requests: got %v, want [23]", reqs)
	}
}

func TestFakeControllerRecordsTransitions(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	f := NewFakeController(Options{})
	f.Now = func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}

	out, err := f.Setup(23)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := out.Set(High); err != nil {
		t.Fatalf("set high: %v", err)
	}
	if out.Level() != High {
		t.Errorf("Level after high: got %s, want HIGH", out.Level())
	}
	if err := out.Set(Low); err != nil {
		t.Fatalf("set low: %v", err)
	}

	l := f.Line(23)
	if l == nil {
		t.Fatal("expected line 23 to be recorded")
	}
	if len(l.Transitions) != 2 {
		t.Fatalf("expected 2 transitions, got %d", len(l.Transitions))
	}
	if l.Transitions[0].Level != High || l.Transitions[1].Level != Low {
		t.Errorf("transitions: got %v", l.Transitions)
	}
	if got := l.Transitions[1].At.Sub(l.Transitions[0].At); got != time.Second {
		t.Errorf("transition gap: got %v, want 1s", got)
	}
}

func TestFakeControllerSetupError(t *testing.T) {
	f := NewFakeController(Options{})
	f.SetupError = fmt.Errorf("open gpio chip: %w", &os.PathError{Op: "open", Path: "/dev/gpiochip0", Err: syscall.EACCES})

	out, err := f.Setup(23)
	if err == nil {
		t.Fatal("expected error")
	}
	if out != nil {
		t.Errorf("expected nil output, got %v", out)
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if cfgErr.Pin != 23 {
		t.Errorf("ConfigError.Pin: got %d, want 23", cfgErr.Pin)
	}
	if !errors.Is(err, ErrPermission) {
		t.Errorf("expected errors.Is(err, ErrPermission), got %v", err)
	}
	if len(f.Requests()) != 0 {
		t.Errorf("expected no recorded requests, got %v", f.Requests())
	}
}

func TestFakeControllerSetError(t *testing.T) {
	f := NewFakeController(Options{})
	out, err := f.Setup(23)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.SetError = errors.New("simulated error")
	if err := out.Set(High); err == nil {
		t.Fatal("expected error")
	}
	if out.Level() != Low {
		t.Errorf("Level should be unchanged after failed set, got %s", out.Level())
	}
}

func TestSetupTwiceAllowReconfigure(t *testing.T) {
	buf := captureLog(t)
	f := NewFakeController(Options{AllowReconfigure: true})

	first, err := f.Setup(23)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.Setup(23)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Error("expected the same Output for a pin set up twice")
	}
	if len(f.Requests()) != 1 {
		t.Errorf("expected 1 hardware request, got %d", len(f.Requests()))
	}
	if buf.Len() != 0 {
		t.Errorf("expected no warning, got %q", buf.String())
	}
}

func TestSetupTwiceWarns(t *testing.T) {
	buf := captureLog(t)
	f := NewFakeController(Options{})

	if _, err := f.Setup(23); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.Setup(23); err != nil {
		t.Fatalf("second setup should still succeed, got %v", err)
	}

	if !strings.Contains(buf.String(), "channel 23 is already in use") {
		t.Errorf("expected reconfigure warning, got %q", buf.String())
	}
}

func TestSetupBoardNumbering(t *testing.T) {
	f := NewFakeController(Options{Numbering: Board})

	out, err := f.Setup(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Channel() != 23 {
		t.Errorf("board pin 16: got channel %d, want 23", out.Channel())
	}

	_, err = f.Setup(6) // ground
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError for ground pin, got %v", err)
	}
}

func TestCloseReleasesLines(t *testing.T) {
	f := NewFakeController(Options{})
	out, err := f.Setup(23)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := out.Set(High); err != nil {
		t.Fatalf("set high: %v", err)
	}

	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !f.Released() {
		t.Error("expected controller to be released")
	}
	if !f.Line(23).Closed {
		t.Error("expected line 23 to be closed")
	}

	// Closing does not change the level.
	if n := len(f.Line(23).Transitions); n != 1 {
		t.Errorf("expected 1 transition after close, got %d", n)
	}

	if err := out.Set(Low); !errors.Is(err, ErrClosed) {
		t.Errorf("Set after close: got %v, want ErrClosed", err)
	}
	if _, err := f.Setup(23); !errors.Is(err, ErrClosed) {
		t.Errorf("Setup after close: got %v, want ErrClosed", err)
	}

	// Second close is a no-op.
	if err := f.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}
