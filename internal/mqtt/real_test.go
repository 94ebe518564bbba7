package mqtt

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/button-panel/internal/logic"
)

// fakeToken is an already-completed paho token.
type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                   { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type sentMsg struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient records publishes. Methods not overridden panic via the nil
// embedded interface.
type fakeClient struct {
	paho.Client

	mu         sync.Mutex
	open       bool
	sent       []sentMsg
	publishErr error
}

func (c *fakeClient) IsConnectionOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *fakeClient) setOpen(open bool) {
	c.mu.Lock()
	c.open = open
	c.mu.Unlock()
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, sentMsg{topic: topic, qos: qos, retained: retained, payload: payload.([]byte)})
	return &fakeToken{err: c.publishErr}
}

func (c *fakeClient) Disconnect(uint) {
	c.setOpen(false)
}

func (c *fakeClient) messages() []sentMsg {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sentMsg(nil), c.sent...)
}

func newTestPublisher() (*RealPublisher, *fakeClient) {
	c := &fakeClient{}
	return &RealPublisher{client: c, buf: newRingBuffer(bufferCapacity)}, c
}

func pressAt(position int) logic.Press {
	return logic.Press{Timestamp: time.Date(2026, 1, 1, 0, 0, position, 0, time.UTC), Button: logic.Buttons[position]}
}

func TestRealPublisherBuffersWhileOffline(t *testing.T) {
	p, c := newTestPublisher()

	for pos := 0; pos < 3; pos++ {
		if err := p.Publish(pressAt(pos)); err != nil {
			t.Fatalf("Publish while offline: %v", err)
		}
	}
	if n := len(c.messages()); n != 0 {
		t.Errorf("expected nothing sent while offline, got %d", n)
	}
	if p.Buffered() != 3 {
		t.Errorf("Buffered: got %d, want 3", p.Buffered())
	}
	if p.IsConnected() {
		t.Error("expected IsConnected=false before the first connect")
	}
}

// The socket can be open before onConnect has replayed the buffer.
func TestRealPublisherBuffersUntilReplay(t *testing.T) {
	p, c := newTestPublisher()
	c.setOpen(true)

	p.Publish(pressAt(0))
	if n := len(c.messages()); n != 0 {
		t.Errorf("expected publish to wait for the replay, got %d sent", n)
	}
	if p.Buffered() != 1 {
		t.Errorf("Buffered: got %d, want 1", p.Buffered())
	}
}

func TestRealPublisherFirstConnectReplaysInOrder(t *testing.T) {
	p, c := newTestPublisher()
	for pos := 0; pos < logic.NumButtons; pos++ {
		p.Publish(pressAt(pos))
	}

	c.setOpen(true)
	p.onConnect(c)

	msgs := c.messages()
	if len(msgs) != logic.NumButtons {
		t.Fatalf("expected %d replayed messages, got %d", logic.NumButtons, len(msgs))
	}
	for pos, m := range msgs {
		want, _ := FormatPayload(pressAt(pos))
		if m.topic != Topic || !bytes.Equal(m.payload, want) {
			t.Errorf("message %d: got %s %s, want %s %s", pos, m.topic, m.payload, Topic, want)
		}
	}
	if p.Buffered() != 0 {
		t.Errorf("Buffered after replay: got %d, want 0", p.Buffered())
	}
	if !p.IsConnected() {
		t.Error("expected IsConnected=true after connect")
	}
}

func TestRealPublisherPublishesDirectlyWhenOnline(t *testing.T) {
	p, c := newTestPublisher()
	c.setOpen(true)
	p.onConnect(c)

	if err := p.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "STARTUP", Retained: true}); err != nil {
		t.Fatalf("PublishSystem: %v", err)
	}
	msgs := c.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].topic != TopicSystem || msgs[0].qos != 1 || !msgs[0].retained {
		t.Errorf("unexpected system message: %+v", msgs[0])
	}
	if p.Buffered() != 0 {
		t.Errorf("Buffered: got %d, want 0", p.Buffered())
	}
}

func TestRealPublisherReconnectPrependsEvent(t *testing.T) {
	p, c := newTestPublisher()
	c.setOpen(true)
	p.onConnect(c)

	c.setOpen(false)
	p.onConnectionLost(c, errors.New("eof"))
	p.Publish(pressAt(2))
	if p.Buffered() != 1 {
		t.Fatalf("Buffered after connection lost: got %d, want 1", p.Buffered())
	}

	c.setOpen(true)
	p.onConnect(c)

	msgs := c.messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages after reconnect, got %d", len(msgs))
	}
	if msgs[0].topic != TopicSystem || !bytes.Contains(msgs[0].payload, []byte(`"event":"RECONNECTED"`)) {
		t.Errorf("first message: got %s %s, want RECONNECTED on %s", msgs[0].topic, msgs[0].payload, TopicSystem)
	}
	if msgs[1].topic != Topic || !bytes.Contains(msgs[1].payload, []byte(`"label":"rescan"`)) {
		t.Errorf("second message: got %s %s", msgs[1].topic, msgs[1].payload)
	}
}

// A connection lost handler may lag behind the socket closing.
func TestRealPublisherBuffersWhenSocketClosed(t *testing.T) {
	p, c := newTestPublisher()
	c.setOpen(true)
	p.onConnect(c)
	c.setOpen(false)

	p.Publish(pressAt(1))
	if n := len(c.messages()); n != 0 {
		t.Errorf("expected nothing sent with the socket closed, got %d", n)
	}
	if p.Buffered() != 1 {
		t.Errorf("Buffered: got %d, want 1", p.Buffered())
	}
}

func TestRealPublisherPublishError(t *testing.T) {
	p, c := newTestPublisher()
	c.setOpen(true)
	p.onConnect(c)
	c.publishErr = errors.New("not authorized")

	if err := p.Publish(pressAt(0)); err == nil {
		t.Error("expected error from failed publish")
	}
}

// Publishes racing a connect are either replayed or sent after the replay.
// None may be left behind in the buffer.
func TestRealPublisherConcurrentPublishAndConnect(t *testing.T) {
	const n = 50

	for round := 0; round < 20; round++ {
		p, c := newTestPublisher()
		c.setOpen(true)

		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				p.Publish(pressAt(i % logic.NumButtons))
			}(i)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			p.onConnect(c)
		}()
		close(start)
		wg.Wait()

		if p.Buffered() != 0 {
			t.Fatalf("round %d: %d messages stranded in the buffer", round, p.Buffered())
		}
		if got := len(c.messages()); got != n {
			t.Fatalf("round %d: sent %d messages, want %d", round, got, n)
		}
	}
}

func TestRealPublisherClose(t *testing.T) {
	p, c := newTestPublisher()
	c.setOpen(true)
	p.onConnect(c)

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if c.IsConnectionOpen() {
		t.Error("expected Close to disconnect the client")
	}
}
