package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/derktes/ir-remote/collector/collector"
	"github.com/derktes/ir-remote/config"
	"github.com/derktes/ir-remote/logging"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML or TOML configuration file")
	serialPort := flag.String("serial", "", "Specifies the serial port in the form /dev/xxx")
	baudRate := flag.Int("baud", 0, "Specifies the baud rate of the serial port")
	serverURL := flag.String("server", "", "Specifies the base URL of the server")
	cid := flag.String("collectorId", "", "Specifies the id of this instance of collector")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *serialPort != "" {
		cfg.Collector.Serial = *serialPort
	}
	if *baudRate != 0 {
		cfg.Collector.Baud = *baudRate
	}
	if *serverURL != "" {
		cfg.Collector.ServerURL = *serverURL
	}
	if *cid != "" {
		cfg.Collector.ID = *cid
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	logger.Info("press Ctrl-C to exit program")
	err = collector.Start(ctx, cfg.Collector, logger)
	stop()
	if err != nil {
		logger.Error("collector failed", "error", err)
		flag.Usage()
		os.Exit(1)
	}
}
