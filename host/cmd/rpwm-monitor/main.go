package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"rpwm/host/serial"
)

var (
	device     = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud       = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	filter     = flag.String("filter", "PWM", "Only show lines with this [TAG]; empty shows all")
	timestamps = flag.Bool("timestamps", false, "Prefix lines with the host time")
)

func main() {
	flag.Parse()

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	cfg.Filter = *filter

	fmt.Printf("Opening %s...\n", *device)
	mon, port, err := serial.OpenMonitor(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = mon.Run(ctx, func(l serial.Line) {
		if *timestamps {
			fmt.Printf("%s %s\n", time.Now().Format("15:04:05.000"), l)
			return
		}
		fmt.Println(l)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\n%d lines read\n", mon.Lines)
}
