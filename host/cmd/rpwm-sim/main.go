package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"

	"rpwm/config"
	"rpwm/host/shell"
	"rpwm/pwm"
	"rpwm/pwm/regsim"
)

var (
	configPath = flag.String("config", "", "Bench YAML applied at startup")
	script     = flag.String("script", "", "Run commands from a file and exit")
	prompt     = flag.String("prompt", "pwm> ", "Interactive prompt")
	debug      = flag.Bool("debug", false, "Enable debug output")
)

func main() {
	flag.Parse()

	p := regsim.New()
	pwm.SetBackend(p)
	pwm.SetDebugEnabled(*debug)

	if *script != "" {
		f, err := os.Open(*script)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := runScript(p, f, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          *prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	out := rl.Stdout()
	pwm.SetDebugWriter(func(s string) { fmt.Fprintln(out, s) })

	sh, err := newShell(p, out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer sh.Close()

	fmt.Fprintln(out, "Simulated RP2040 PWM (type 'help' for available commands, 'quit' to exit)")
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(out, "Exiting...")
			return
		}

		switch strings.TrimSpace(line) {
		case "quit", "exit", "q":
			return
		}
		if err := sh.Exec(line); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
}

// newShell builds a shell over p and applies the -config bench, if any.
func newShell(p *regsim.Peripheral, out io.Writer) (*shell.Shell, error) {
	sh := shell.New(p, out)
	if *configPath == "" {
		return sh, nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if *debug {
		cfg.Debug = true
	}
	bench, err := cfg.Apply(func(gpio uint8) pwm.Pin { return p.Pin(gpio) })
	if err != nil {
		return nil, err
	}
	sh.Adopt(bench)
	return sh, nil
}

// runScript executes r line by line, stopping at the first error.
func runScript(p *regsim.Peripheral, r io.Reader, out io.Writer) error {
	pwm.SetDebugWriter(func(s string) { fmt.Fprintln(out, s) })

	sh, err := newShell(p, out)
	if err != nil {
		return err
	}
	defer sh.Close()

	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		if err := sh.Exec(scanner.Text()); err != nil {
			return errors.Wrapf(err, "line %d", n)
		}
	}
	return scanner.Err()
}
