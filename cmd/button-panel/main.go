// Command button-panel polls four active-low pushbuttons on GPIO and announces
// each press with its command label over a serial line.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"github.com/sweeney/button-panel/internal/config"
	"github.com/sweeney/button-panel/internal/console"
	"github.com/sweeney/button-panel/internal/gpio"
	"github.com/sweeney/button-panel/internal/logic"
	"github.com/sweeney/button-panel/internal/mqtt"
	"github.com/sweeney/button-panel/internal/scanner"
	"github.com/sweeney/button-panel/internal/status"
	"github.com/sweeney/button-panel/internal/web"
)

func main() {
	fs := newFlagSet()
	printState := fs.Bool("print-state", false, "Print current button levels and exit")
	listPorts := fs.Bool("list-ports", false, "List serial ports and exit")
	fs.Parse(os.Args[1:])

	if *listPorts {
		if err := printPorts(); err != nil {
			log.Fatalf("fatal: %v", err)
		}
		return
	}

	cfg, err := loadConfig(fs)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// newFlagSet declares the flags that map onto config.Config.
func newFlagSet() *flag.FlagSet {
	def := config.Default()
	fs := flag.NewFlagSet("button-panel", flag.ExitOnError)
	fs.String("config", "", "YAML config file (explicit flags override it)")
	fs.String("chip", def.Chip, "GPIO chip device")
	fs.String("pins", config.FormatPins(def.Pins), "BCM pins for buttons 1-4, comma-separated")
	fs.String("serial", def.Serial, `Serial device for announcements ("-" for stdout)`)
	fs.Int("baud", def.Baud, "Serial baud rate")
	fs.Duration("pause", def.Pause, "Blocking pause after each press")
	fs.Duration("poll", def.Poll, "Delay between scan passes (0 for back-to-back)")
	fs.String("broker", def.Broker, "MQTT broker address (empty to disable)")
	fs.String("http", def.HTTPAddr, "HTTP status address (empty to disable)")
	fs.String("lock", def.LockPath, "Single-instance lock file (empty to disable)")
	return fs
}

// loadConfig builds the configuration: defaults, then the --config file, then
// any flag set explicitly on the command line.
func loadConfig(fs *flag.FlagSet) (config.Config, error) {
	cfg := config.Default()
	if path := fs.Lookup("config").Value.String(); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	var applyErr error
	fs.Visit(func(f *flag.Flag) {
		v := f.Value.(flag.Getter).Get()
		switch f.Name {
		case "chip":
			cfg.Chip = v.(string)
		case "pins":
			pins, err := config.ParsePins(v.(string))
			if err != nil && applyErr == nil {
				applyErr = fmt.Errorf("--pins: %w", err)
			}
			cfg.Pins = pins
		case "serial":
			cfg.Serial = v.(string)
		case "baud":
			cfg.Baud = v.(int)
		case "pause":
			cfg.Pause = v.(time.Duration)
		case "poll":
			cfg.Poll = v.(time.Duration)
		case "broker":
			cfg.Broker = v.(string)
		case "http":
			cfg.HTTPAddr = v.(string)
		case "lock":
			cfg.LockPath = v.(string)
		}
	})
	if applyErr != nil {
		return cfg, applyErr
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func printPorts() error {
	ports, err := console.Ports()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("no serial ports found")
	}
	for _, p := range ports {
		fmt.Println(p)
	}
	return nil
}

func run(cfg config.Config, printState bool) error {
	if cfg.LockPath != "" {
		lock := flock.New(cfg.LockPath)
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("lock %s: %w", cfg.LockPath, err)
		}
		if !locked {
			return fmt.Errorf("lock %s: another instance is running", cfg.LockPath)
		}
		defer lock.Unlock()
	}

	// Initialize GPIO
	gpioReader, err := gpio.NewRealReader(cfg.Chip, cfg.Pins)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer gpioReader.Close()

	// Print state mode
	if printState {
		return printLevels(gpioReader)
	}

	con, err := console.Open(cfg.Serial, cfg.Baud)
	if err != nil {
		return fmt.Errorf("init console: %w", err)
	}
	defer con.Close()

	// MQTT is optional; a nil publisher disables it
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if cfg.Broker != "" {
		p := mqtt.NewRealPublisher(cfg.Broker)
		defer p.Close()
		publisher, mqttStatus = p, p
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		Chip:     cfg.Chip,
		Pins:     cfg.Pins,
		Serial:   cfg.Serial,
		Baud:     cfg.Baud,
		PauseMs:  cfg.Pause.Milliseconds(),
		PollMs:   cfg.Poll.Milliseconds(),
		Broker:   cfg.Broker,
		HTTPAddr: cfg.HTTPAddr,
	})

	if publisher != nil {
		startup := mqtt.SystemEvent{Timestamp: time.Now(), Event: "STARTUP", Retained: true}
		if err := publisher.PublishSystem(startup); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		}
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Printf("started: chip=%s pins=%s serial=%s baud=%d pause=%v poll=%v broker=%q",
		cfg.Chip, config.FormatPins(cfg.Pins), cfg.Serial, cfg.Baud, cfg.Pause, cfg.Poll, cfg.Broker)

	var tick <-chan time.Time
	if cfg.Poll > 0 {
		ticker := time.NewTicker(cfg.Poll)
		defer ticker.Stop()
		tick = ticker.C
	} else {
		always := make(chan time.Time)
		close(always)
		tick = always
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sc := scanner.New(gpioReader, con, cfg.Pause)
	sc.Publisher = publisher
	sc.MQTTStatus = mqttStatus
	sc.Tracker = tracker

	return runLoop(sc, tick, sigCh)
}

// runLoop runs one scan pass per tick until a signal arrives. Signals are
// only observed between passes, so an announcement is never cut short.
func runLoop(sc *scanner.Scanner, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			counts := sc.Counts()
			log.Printf("presses: total=%d upload=%d delete=%d rescan=%d confirm=%d",
				counts.Total(), counts[0], counts[1], counts[2], counts[3])
			if sc.Publisher != nil {
				event := mqtt.SystemEvent{
					Timestamp: sc.Now(),
					Event:     "SHUTDOWN",
					Reason:    signalName(s),
					Counts:    &counts,
					Retained:  true,
				}
				if err := sc.Publisher.PublishSystem(event); err != nil {
					log.Printf("failed to publish shutdown event: %v", err)
				} else {
					log.Printf("published shutdown event")
				}
			}
			return nil

		case <-tick:
			sc.Pass()
		}
	}
}

func printLevels(reader gpio.Reader) error {
	for _, b := range logic.Buttons {
		high, err := reader.Read(b.Position)
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		state := "released"
		if logic.Level(high) == logic.Pressed {
			state = "pressed"
		}
		fmt.Printf("Button %d (%s): %s %s\n", b.Number, b.Label, logic.Level(high), state)
	}
	return nil
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
