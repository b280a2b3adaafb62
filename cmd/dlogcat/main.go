// Command dlogcat reads lines from stdin and forwards them through a dlog
// interceptor, printing the classified entries to stdout. Stack traces
// ("Trace:" followed by "at" frames) are kept together as one entry.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/taknb2nch/dlog"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "dlogcat",
		Usage: "classify stdin lines and forward them to a dlog sink",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML or JSON config file",
			},
			&cli.StringFlag{
				Name:    "api-key",
				Aliases: []string{"k"},
				Usage:   "dlog API key",
				Sources: cli.EnvVars(dlog.EnvAPIKey),
			},
			&cli.StringFlag{
				Name:  "level",
				Usage: "minimum severity to forward (trace, debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "slot",
				Usage: "console slot the lines are printed through (error, warn, info, log, debug)",
				Value: string(dlog.SlotLog),
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "output format (json, text)",
				Value: dlog.FormatJSON,
			},
			&cli.BoolFlag{
				Name:  "preserve",
				Usage: "echo every line to the terminal as well",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := &dlog.Config{}

			if path := cmd.String("config"); path != "" {
				loaded, err := dlog.LoadConfig(path)
				if err != nil {
					return err
				}

				cfg = loaded
			}

			if v := cmd.String("api-key"); v != "" {
				cfg.APIKey = v
			}

			if v := cmd.String("level"); v != "" {
				cfg.Level = v
			}

			if cmd.IsSet("preserve") {
				cfg.PreserveOutput = cmd.Bool("preserve")
			}

			if cmd.IsSet("format") || cfg.Format == "" {
				cfg.Format = cmd.String("format")
			}

			return run(ctx, cfg, dlog.Slot(cmd.String("slot")), cmd.Root().Reader, cmd.Root().Writer)
		},
	}
}

func run(ctx context.Context, cfg *dlog.Config, slot dlog.Slot, in io.Reader, out io.Writer) error {
	if !slices.Contains(dlog.Slots, slot) {
		return fmt.Errorf("unknown slot %q", slot)
	}

	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	var formatter dlog.Formatter = dlog.NewJSONFormatter()
	if strings.EqualFold(cfg.Format, dlog.FormatText) {
		formatter = dlog.NewTextFormatter()
	}

	opts = append(opts, dlog.WithDriver(dlog.NewWriterDriver(out, dlog.WithWriterFormatter(formatter))))

	ic, err := dlog.New(cfg.APIKey, opts...)
	if err != nil {
		return err
	}

	defer func() { _ = ic.Close() }()

	printRecord := ic.Console().Func(slot)

	if err := scanRecords(in, func(record string) { printRecord(record) }); err != nil {
		return err
	}

	return ic.Flush(ctx)
}

// scanRecords emits one record per line, except that a "Trace:" line and the
// frame lines that follow it form a single record.
func scanRecords(in io.Reader, emit func(string)) error {
	scanner := bufio.NewScanner(in)

	var trace []string

	flushTrace := func() {
		if len(trace) > 0 {
			emit(strings.Join(trace, "\n"))
			trace = nil
		}
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "Trace:"):
			flushTrace()
			trace = []string{line}
		case len(trace) > 0 && strings.HasPrefix(strings.TrimSpace(line), "at"):
			trace = append(trace, line)
		default:
			flushTrace()
			emit(line)
		}
	}

	flushTrace()

	return scanner.Err()
}
