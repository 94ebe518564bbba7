// Package scanner runs one scan pass over the panel: read each line in
// position order, announce and mirror every press, pause after each one.
package scanner

import (
	"log"
	"time"

	"github.com/sweeney/button-panel/internal/gpio"
	"github.com/sweeney/button-panel/internal/logic"
	"github.com/sweeney/button-panel/internal/mqtt"
	"github.com/sweeney/button-panel/internal/status"
)

// Announcer writes a press to the output channel.
type Announcer interface {
	Announce(p logic.Press) error
}

// Scanner owns the dispatcher and the collaborators a pass touches.
// The optional fields may be left nil.
type Scanner struct {
	reader     gpio.Reader
	out        Announcer
	pause      time.Duration
	dispatcher *logic.Dispatcher

	Publisher  mqtt.Publisher
	MQTTStatus mqtt.ConnectionStatus
	Tracker    *status.Tracker
	Now        func() time.Time      // defaults to time.Now
	Sleep      func(d time.Duration) // defaults to time.Sleep
}

// New creates a Scanner that pauses for pause after every press.
func New(reader gpio.Reader, out Announcer, pause time.Duration) *Scanner {
	return &Scanner{
		reader:     reader,
		out:        out,
		pause:      pause,
		dispatcher: logic.NewDispatcher(),
		Now:        time.Now,
		Sleep:      time.Sleep,
	}
}

// Pass scans the four lines once and returns the number of presses.
//
// A line that reads low is announced and then Sleep(pause) blocks the
// whole scan, so a held button is announced again once per pause. Read
// errors are logged and the line is skipped for this pass.
func (s *Scanner) Pass() int {
	presses := 0
	for _, b := range logic.Buttons {
		high, err := s.reader.Read(b.Position)
		if err != nil {
			log.Printf("gpio read error: %v", err)
			continue
		}

		press := s.dispatcher.Check(b.Position, logic.Level(high), s.Now())
		if press == nil {
			continue
		}
		presses++

		log.Printf("press: button %d (%s)", press.Button.Number, press.Button.Label)
		if err := s.out.Announce(*press); err != nil {
			log.Printf("announce error: %v", err)
		}
		if s.Publisher != nil {
			if err := s.Publisher.Publish(*press); err != nil {
				log.Printf("publish error: %v", err)
				// Don't crash on publish failure
			}
		}
		if s.Tracker != nil {
			s.Tracker.Update(s.dispatcher)
		}

		s.Sleep(s.pause)
	}

	// Update status tracker for HTTP consumers
	if s.Tracker != nil {
		s.Tracker.Update(s.dispatcher)
		if s.MQTTStatus != nil {
			s.Tracker.SetMQTTConnected(s.MQTTStatus.IsConnected())
			s.Tracker.SetMQTTBuffered(s.MQTTStatus.Buffered())
		}
	}
	return presses
}

// Counts returns the presses seen since the scanner was created.
func (s *Scanner) Counts() logic.PressCounts {
	return s.dispatcher.Counts()
}
