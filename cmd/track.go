package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/paytracker"
	"github.com/google/subcommands"
	"github.com/prometheus/client_golang/prometheus"
)

// trackCmd holds the flags for the 'track' subcommand.
type trackCmd struct {
	rates       rateFlags
	interval    time.Duration
	immediate   bool
	staleRates  bool
	idle        time.Duration
	metricsAddr string
}

func (*trackCmd) Name() string     { return "track" }
func (*trackCmd) Synopsis() string { return "track payments from the console and report net traffic periodically" }
func (*trackCmd) Usage() string {
	return `ptrack track [-interval 60s] [-ref USD] [-api-key <key>] [<file>]

Reads payments from the console, one per line, like:

  USD 1000
  HKD 100
  usd -100
  CNY 2000
  HKD 200

Every interval, the net amount per currency is printed, converted to the
reference currency when an exchange rate is available:

  ---
  HKD 300.00 (USD 38.66)
  USD 900.00

Lines that are not a recognized currency code followed by an amount are
ignored. Currencies whose net amount is zero are not printed.

Type 'quit' to print a final report and exit.

An optional <file> with the same format is loaded before reading the console.
`
}

func (c *trackCmd) SetFlags(f *flag.FlagSet) {
	c.rates.SetFlags(f)
	f.DurationVar(&c.interval, "interval", paytracker.DefaultInterval, "period between two reports")
	f.BoolVar(&c.immediate, "immediate", false, "print a first report right away instead of after one interval")
	f.BoolVar(&c.staleRates, "stale-rates", false, "when the rate fetch fails, convert with the last fetched rates")
	f.DurationVar(&c.idle, "idle", paytracker.DefaultIdle, "pause after an empty console read")
	f.StringVar(&c.metricsAddr, "metrics-addr", "", "if set, serve prometheus metrics on this address, e.g ':9090'")
}

func (c *trackCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "At most one input file is expected.")
		return subcommands.ExitUsageError
	}
	if err := c.rates.init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.interval <= 0 {
		fmt.Fprintf(os.Stderr, "Error: invalid interval %v\n", c.interval)
		return subcommands.ExitUsageError
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker := paytracker.NewTracker(paytracker.Config{
		Input:           os.Stdin,
		Output:          os.Stdout,
		Rates:           c.rates.gateway(),
		Reference:       c.rates.reference,
		Interval:        c.interval,
		Immediate:       c.immediate,
		FetchTimeout:    c.rates.timeout,
		ReuseStaleRates: c.staleRates,
		Idle:            c.idle,
		ExitMessage:     "Exiting...",
	})

	if f.NArg() == 1 {
		lines, err := paytracker.LoadFile(f.Arg(0))
		if err != nil {
			// Not fatal, tracking starts with no traffic.
			fmt.Fprintf(os.Stderr, "Error reading input file with payments: %v\n", err)
		} else {
			tracker.Load(lines)
		}
	}

	if c.metricsAddr != "" {
		srv, err := serveMetrics(c.metricsAddr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		defer srv.Close()
	}

	fmt.Println("Enter payments:")
	err := tracker.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return exitStatus(err)
}

// exitStatus maps the end of a tracking session to the process status.
//
// A failing input ends the session like 'quit' does, only a final report that
// could not be printed is a failure.
func exitStatus(err error) subcommands.ExitStatus {
	if errors.Is(err, paytracker.ErrReport) {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// serveMetrics registers the tracker metrics and serves them on addr.
//
// The address is bound before returning, so that a busy port is reported.
func serveMetrics(addr string) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics server: %w", err)
	}
	if err := paytracker.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
		ln.Close()
		return nil, fmt.Errorf("registering metrics: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", paytracker.MetricsHandler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server: %v", err)
		}
	}()
	log.Printf("serving metrics on %s/metrics", ln.Addr())
	return srv, nil
}
