// Command gauge-display drives a two-gauge system monitor from samples sent
// over a serial link, hiding idle gauges and blanking the display when the
// host goes quiet.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/sweeney/gauge-display/internal/backlight"
	"github.com/sweeney/gauge-display/internal/clock"
	"github.com/sweeney/gauge-display/internal/config"
	"github.com/sweeney/gauge-display/internal/coordinator"
	"github.com/sweeney/gauge-display/internal/logger"
	"github.com/sweeney/gauge-display/internal/mqtt"
	"github.com/sweeney/gauge-display/internal/present"
	"github.com/sweeney/gauge-display/internal/sample"
	"github.com/sweeney/gauge-display/internal/status"
	"github.com/sweeney/gauge-display/internal/web"
)

// printSampleTimeout bounds how long --print-sample waits for a valid line.
const printSampleTimeout = 5 * time.Second

type options struct {
	printSample bool
}

func main() {
	cfg, opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "gauge-display: %v\n", err)
		os.Exit(2)
	}

	log, err := logger.Init(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gauge-display: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg, opts, log); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}

// parseFlags loads the optional config file and applies flags the user set
// explicitly on top of it.
func parseFlags(args []string, errOut io.Writer) (config.Config, options, error) {
	var opts options
	fs := flag.NewFlagSet("gauge-display", flag.ContinueOnError)
	fs.SetOutput(errOut)

	def := config.Default()
	cfgPath := fs.String("config", "", "YAML config file")
	device := fs.String("serial", def.Serial.Device, "Serial device carrying samples")
	baud := fs.Int("baud", def.Serial.Baud, "Serial baud rate")
	hide := fs.Uint32("hide-timeout", def.Timeouts.MeterHideMs, "Milliseconds at zero before a gauge is hidden")
	blank := fs.Uint32("blank-timeout", def.Timeouts.DisplayBlankMs, "Milliseconds without data before the display blanks")
	poll := fs.Int("poll", def.Loop.PollMs, "Control loop period in milliseconds")
	chip := fs.String("backlight-chip", def.Backlight.Chip, "GPIO chip for the backlight line")
	pin := fs.Int("backlight-pin", def.Backlight.Pin, "GPIO line offset for the backlight")
	broker := fs.String("broker", def.MQTT.Broker, `MQTT broker address ("" disables publishing)`)
	heartbeat := fs.Int("heartbeat", def.MQTT.HeartbeatMs, "Heartbeat interval in milliseconds (0 to disable)")
	httpAddr := fs.String("http", def.HTTP.Addr, "HTTP status address (empty to disable)")
	level := fs.String("log-level", def.Log.Level, "Log level: debug, info, warn, error")
	fs.BoolVar(&opts.printSample, "print-sample", false, "Print the next valid sample and exit")

	if err := fs.Parse(args); err != nil {
		return config.Config{}, opts, err
	}

	cfg := def
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			return config.Config{}, opts, err
		}
		cfg = loaded
	}

	if fs.Changed("serial") {
		cfg.Serial.Device = *device
	}
	if fs.Changed("baud") {
		cfg.Serial.Baud = *baud
	}
	if fs.Changed("hide-timeout") {
		cfg.Timeouts.MeterHideMs = *hide
	}
	if fs.Changed("blank-timeout") {
		cfg.Timeouts.DisplayBlankMs = *blank
	}
	if fs.Changed("poll") {
		cfg.Loop.PollMs = *poll
	}
	if fs.Changed("backlight-chip") {
		cfg.Backlight.Chip = *chip
	}
	if fs.Changed("backlight-pin") {
		cfg.Backlight.Pin = *pin
	}
	if fs.Changed("broker") {
		cfg.MQTT.Broker = *broker
	}
	if fs.Changed("heartbeat") {
		cfg.MQTT.HeartbeatMs = *heartbeat
	}
	if fs.Changed("http") {
		cfg.HTTP.Addr = *httpAddr
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = *level
	}

	if err := config.Validate(&cfg); err != nil {
		return config.Config{}, opts, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, opts, nil
}

func run(cfg config.Config, opts options, log zerolog.Logger) error {
	port, err := sample.OpenSerial(sample.SerialConfig{Device: cfg.Serial.Device, Baud: cfg.Serial.Baud})
	if err != nil {
		return fmt.Errorf("init serial: %w", err)
	}
	reader := sample.NewReader(port, logger.Component(log, "sample"))
	defer reader.Close()

	if opts.printSample {
		return printSample(reader, os.Stdout, printSampleTimeout)
	}

	light, err := backlight.NewRealSwitch(cfg.Backlight.Chip, cfg.Backlight.Pin)
	if err != nil {
		return fmt.Errorf("init backlight: %w", err)
	}
	defer light.Close()

	var publisher interface {
		mqtt.Publisher
		mqtt.ConnectionStatus
	} = mqtt.Nop{}
	if cfg.MQTT.Broker != "" {
		rp, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, clientID(), logger.Component(log, "mqtt"))
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		publisher = rp
	}
	defer publisher.Close()

	// Tracker is created before STARTUP so the snapshot is available.
	tracker := status.NewTracker(time.Now(), status.Config{
		SerialDevice:   cfg.Serial.Device,
		PollMs:         int64(cfg.Loop.PollMs),
		HideTimeoutMs:  cfg.Timeouts.MeterHideMs,
		BlankTimeoutMs: cfg.Timeouts.DisplayBlankMs,
		HeartbeatMs:    int64(cfg.MQTT.HeartbeatMs),
		Broker:         cfg.MQTT.Broker,
		HTTPAddr:       cfg.HTTP.Addr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Warn().Err(err).Msg("failed to publish startup event")
	}

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, logger.Component(log, "web"))
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("http status server listening")
	}

	screen := present.NewLogScreen(logger.Component(log, "screen"))
	adapter := present.NewAdapter(screen, light, publisher, logger.Component(log, "present"), time.Now)
	coord := coordinator.New(coordinator.Config{
		HideTimeoutMs:  cfg.Timeouts.MeterHideMs,
		BlankTimeoutMs: cfg.Timeouts.DisplayBlankMs,
	}, adapter, logger.Component(log, "coordinator"))
	adapter.Start()

	log.Info().
		Str("serial", cfg.Serial.Device).
		Int("poll_ms", cfg.Loop.PollMs).
		Uint32("hide_ms", cfg.Timeouts.MeterHideMs).
		Uint32("blank_ms", cfg.Timeouts.DisplayBlankMs).
		Str("broker", cfg.MQTT.Broker).
		Msg("started")

	ticker := time.NewTicker(time.Duration(cfg.Loop.PollMs) * time.Millisecond)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(&loop{
		source:     reader,
		coord:      coord,
		render:     adapter,
		publisher:  publisher,
		mqttStatus: publisher,
		tracker:    tracker,
		clk:        clock.NewMonotonic(),
		wallNow:    time.Now,
		heartbeat:  time.Duration(cfg.MQTT.HeartbeatMs) * time.Millisecond,
		tick:       ticker.C,
		sig:        sigCh,
		log:        log,
	})
}

// renderer applies an accepted sample to the screen.
type renderer interface {
	Render(s sample.Sample, st coordinator.Status)
}

// transportStats is implemented by sources that count rejected lines.
type transportStats interface {
	Stats() (rejected, dropped int)
}

// loop holds the control loop's collaborators.
type loop struct {
	source     sample.Source
	coord      *coordinator.Coordinator
	render     renderer
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	clk        clock.Clock
	wallNow    func() time.Time
	heartbeat  time.Duration
	tick       <-chan time.Time
	sig        <-chan os.Signal
	log        zerolog.Logger
}

func runLoop(l *loop) error {
	lastHeartbeat := l.wallNow()

	for {
		select {
		case s := <-l.sig:
			l.log.Info().Str("signal", s.String()).Msg("shutting down")
			l.publishSystem("SHUTDOWN", signalName(s), l.wallNow())
			return nil

		case <-l.tick:
			now := l.clk.Now()
			wall := l.wallNow()

			s, ok := l.source.Poll()
			if ok {
				l.coord.ProcessSample(s.CPUTemp, s.CPULoad, now)
				l.render.Render(s, l.coord.Status(now))
				if l.tracker != nil {
					l.tracker.SetSample(s)
				}
			} else if err := l.source.Err(); err != nil {
				l.log.Error().Err(err).Msg("sample source stopped")
				l.publishSystem("SHUTDOWN", "SERIAL_LOST", wall)
				return fmt.Errorf("read serial: %w", err)
			}
			l.coord.TickMaintenance(now)

			if l.tracker != nil {
				l.tracker.Update(l.coord.Status(now))
				if ts, ok := l.source.(transportStats); ok {
					l.tracker.SetTransportStats(ts.Stats())
				}
				if l.mqttStatus != nil {
					l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
				}
			}

			if l.heartbeat > 0 && wall.Sub(lastHeartbeat) >= l.heartbeat {
				lastHeartbeat = wall
				st := l.coord.Status(now)
				l.log.Debug().Msg(st.String())
				if net := readNetworkInfo(); net != nil && l.tracker != nil {
					l.tracker.SetNetwork(net)
				}
				l.publishSystem("HEARTBEAT", "", wall)
			}
		}
	}
}

func (l *loop) publishSystem(event, reason string, ts time.Time) {
	ev := mqtt.SystemEvent{
		Timestamp: ts,
		Event:     event,
		Reason:    reason,
		Retained:  event != "HEARTBEAT",
	}
	if l.tracker != nil {
		if l.mqttStatus != nil {
			l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
		}
		ev.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), event, reason)
	}
	if err := l.publisher.PublishSystem(ev); err != nil {
		l.log.Warn().Err(err).Str("event", event).Msg("system event publish error")
	}
}

// printSample waits for one valid sample from src and prints it.
func printSample(src sample.Source, out io.Writer, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s, ok := src.Poll(); ok {
			fmt.Fprintf(out, "time: %s, cpu_temp: %d, cpu_load: %d\n", s.Time, s.CPUTemp, s.CPULoad)
			return nil
		}
		if err := src.Err(); err != nil {
			return fmt.Errorf("read serial: %w", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("no valid sample within %v", timeout)
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

func clientID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "gauge-display"
	}
	return "gauge-display-" + host
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
