// Command phasedrive-host drives a three-phase actuator board over a
// serial duty bridge, or simulates one locally with -simulate.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"time"

	"phasedrive/config"
	"phasedrive/core"
	"phasedrive/host/link"
	"phasedrive/host/serial"
)

var (
	device     = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud       = flag.Int("baud", 250000, "Baud rate (ignored for USB CDC)")
	configPath = flag.String("config", "", "JSON configuration file (optional)")
	strategy   = flag.String("strategy", "sine", "Waveform strategy when no config file is given: sine or table")
	interval   = flag.Duration("interval", 10*time.Millisecond, "Time between commutation ticks")
	cycles     = flag.Float64("cycles", 1.0, "Electrical cycles to run before reversing")
	simulate   = flag.Bool("simulate", false, "Print duty updates instead of opening a serial port")
	verbose    = flag.Bool("verbose", false, "Print position and duty every tick")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	channels, cleanup, err := openChannels()
	if err != nil {
		return err
	}
	defer cleanup()

	coreCfg, err := cfg.Build()
	if err != nil {
		return err
	}

	act, err := core.NewActuator(coreCfg, channels)
	if err != nil {
		return err
	}
	defer act.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Driving %s waveform, %.4g units/tick, %v/tick\n",
		cfg.Strategy, cfg.StepIncrement, *interval)

	reverseAfter := int(math.Round(act.StepsPerCycle() * *cycles))
	if reverseAfter < 1 {
		reverseAfter = 1
	}

	act.Start()
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nStopping, outputs off")
			return act.Stop()
		case <-ticker.C:
		}

		if err := act.Tick(); err != nil {
			return err
		}
		ticks++

		if *verbose {
			fmt.Printf("tick %d: direction %s, position %.4f\n",
				ticks, act.Direction(), act.Position())
		}

		if ticks%reverseAfter == 0 {
			next := act.Direction().Reversed()
			if err := act.SetDirection(next); err != nil {
				return err
			}
			fmt.Printf("Reversing: now %s\n", next)
		}
	}
}

func loadConfig() (*config.ActuatorConfig, error) {
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		return config.LoadConfig(data)
	}
	switch *strategy {
	case config.StrategyTable:
		return config.DefaultTableConfig(), nil
	case config.StrategySine:
		return config.DefaultSineConfig(), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownStrategy, *strategy)
	}
}

// openChannels returns the six output channels, either printing channels
// for simulation or bridge channels over a freshly opened serial port.
func openChannels() (core.PhaseChannels, func(), error) {
	if *simulate {
		return core.PhaseChannels{
			AHigh: &printChannel{name: "AH"},
			ALow:  &printChannel{name: "AL"},
			BHigh: &printChannel{name: "BH"},
			BLow:  &printChannel{name: "BL"},
			CHigh: &printChannel{name: "CH"},
			CLow:  &printChannel{name: "CL"},
		}, func() {}, nil
	}

	fmt.Printf("Connecting to actuator board on %s...\n", *device)
	portCfg := serial.DefaultConfig(*device)
	portCfg.Baud = *baud
	port, err := serial.Open(portCfg)
	if err != nil {
		return core.PhaseChannels{}, nil, err
	}

	bridge, err := link.NewBridge(port)
	if err != nil {
		port.Close()
		return core.PhaseChannels{}, nil, err
	}

	// Drain anything reported by the board so it does not back up the
	// OS buffer; this host only sends.
	drainDone := make(chan struct{})
	go func() {
		defer close(drainDone)
		buf := make([]byte, 256)
		for {
			if _, err := port.Read(buf); err != nil {
				return
			}
		}
	}()

	cleanup := func() {
		bridge.AllOff()
		port.Close()
		<-drainDone
	}
	return bridge.PhaseChannels(), cleanup, nil
}

// printChannel logs duty updates to stdout for -simulate runs.
type printChannel struct {
	name string
}

func (c *printChannel) SetDuty(fraction float64) error {
	if *verbose {
		fmt.Printf("  %s=%.4f\n", c.name, fraction)
	}
	return nil
}
