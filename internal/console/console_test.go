package console

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/button-panel/internal/logic"
)

func TestAnnounceExactOutput(t *testing.T) {
	tests := []struct {
		position int
		want     string
	}{
		{0, "Button 1 Pressed!\nupload\n"},
		{1, "Button 2 Pressed!\ndelete\n"},
		{2, "Button 3 Pressed!\nrescan\n"},
		{3, "Button 4 Pressed!\nconfirm\n"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		c := New(&buf)
		p := logic.Press{Timestamp: time.Now(), Button: logic.Buttons[tt.position]}
		if err := c.Announce(p); err != nil {
			t.Fatalf("position %d: unexpected error: %v", tt.position, err)
		}
		if got := buf.String(); got != tt.want {
			t.Errorf("position %d: got %q, want %q", tt.position, got, tt.want)
		}
	}
}

func TestAnnounceAppends(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)
	p := logic.Press{Button: logic.Buttons[0]}

	c.Announce(p)
	c.Announce(p)

	want := "Button 1 Pressed!\nupload\nButton 1 Pressed!\nupload\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errors.New("line down")
}

func TestAnnounceWriteError(t *testing.T) {
	c := New(failWriter{})
	err := c.Announce(logic.Press{Button: logic.Buttons[1]})
	if err == nil {
		t.Fatal("expected error from failing writer")
	}
}

func TestCloseWithoutPort(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf).Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOpenStdout(t *testing.T) {
	c, err := Open(Stdout, DefaultBaud)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.port != nil {
		t.Error("stdout console must not hold a serial port")
	}
	if err := c.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestOpenMissingDevice(t *testing.T) {
	_, err := Open("/dev/does-not-exist-button-panel", DefaultBaud)
	if err == nil {
		t.Error("expected error opening a missing device")
	}
}

func TestDefaultBaud(t *testing.T) {
	if DefaultBaud != 115200 {
		t.Errorf("DefaultBaud: got %d, want 115200", DefaultBaud)
	}
}
