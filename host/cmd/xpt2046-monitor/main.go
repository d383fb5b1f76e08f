// Command xpt2046-monitor watches the raw touch stream coming from a
// sampling microcontroller, applies a calibration profile on the host
// and prints the resulting points. With -r the raw converter values
// are printed instead, which is what a calibration session wants.
//
// Configuration layers, highest priority first: command line flags,
// XPT2046_ environment variables, a JSON config file, built-in
// defaults.
package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/warthog618/config"
	"github.com/warthog618/config/blob"
	"github.com/warthog618/config/blob/decoder/json"
	"github.com/warthog618/config/dict"
	"github.com/warthog618/config/env"
	"github.com/warthog618/config/pflag"

	xpt2046 "github.com/skand7x/XPT2046"
	"github.com/skand7x/XPT2046/calib"
	"github.com/skand7x/XPT2046/host/serial"
	"github.com/skand7x/XPT2046/host/stream"
)

func main() {
	cfg := loadConfig()
	device := cfg.MustGet("device").String()
	raw := cfg.MustGet("raw").Bool()

	cal := xpt2046.DefaultCalibration()
	if profile := cfg.MustGet("profile").String(); profile != "" {
		var err error
		cal, err = calib.Load(profile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "xpt2046-monitor: %s\n", err)
			os.Exit(1)
		}
	}

	portCfg := serial.DefaultConfig(device)
	portCfg.Baud = int(cfg.MustGet("baud").Int())
	port, err := serial.Open(portCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xpt2046-monitor: %s\n", err)
		os.Exit(1)
	}

	r := stream.NewReader(port)
	defer r.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	fmt.Printf("listening on %s, ctrl-c to stop\n", device)
	for {
		select {
		case rep, ok := <-r.Reports():
			if !ok {
				fmt.Fprintln(os.Stderr, "xpt2046-monitor: stream closed")
				printStats(r)
				return
			}
			switch {
			case rep.Released():
				fmt.Println("release")
			case raw:
				fmt.Printf("raw x=%4d y=%4d z=%4d\n", rep.X, rep.Y, rep.Z)
			default:
				p := cal.Map(rep.X, rep.Y)
				fmt.Printf("touch x=%3d y=%3d\n", p.X, p.Y)
			}

		case <-interrupt:
			fmt.Println()
			printStats(r)
			return
		}
	}
}

func printStats(r *stream.Reader) {
	s := r.Stats()
	fmt.Printf("frames=%d crc_errors=%d resyncs=%d seq_gaps=%d\n",
		s.Frames, s.CRCErrors, s.Resyncs, s.SeqGaps)
}

func loadConfig() *config.Config {
	defaults := dict.New(dict.WithMap(map[string]interface{}{
		"device":  "/dev/ttyACM0",
		"baud":    115200,
		"profile": "",
		"raw":     false,
	}))
	flags := []pflag.Flag{
		{Short: 'c', Name: "config-file"},
		{Short: 'd', Name: "device"},
		{Short: 'p', Name: "profile"},
		{Short: 'r', Name: "raw"},
	}
	cfg := config.New(
		pflag.New(pflag.WithFlags(flags)),
		env.New(env.WithEnvPrefix("XPT2046_")),
		config.WithDefault(defaults))
	cfg.Append(
		blob.NewConfigFile(cfg, "config.file", "xpt2046.json", json.NewDecoder()))
	return cfg.GetConfig("", config.WithMust)
}
