// scanonce выполняет один проход сканера и печатает лучшие сигналы.
//
//	go run ./cmd/scanonce -b -retain -top 30
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"cs2arb/internal/application"
	"cs2arb/internal/config"
	arbsignal "cs2arb/internal/domain/service/signal"
	"cs2arb/pkg/contextx"
	"cs2arb/pkg/logx"
)

func main() {
	directionB := flag.Bool("b", false, "also check the watchlist (direction B)")
	retain := flag.Bool("retain", false, "mark listings missing from this pass inactive")
	top := flag.Int("top", 20, "number of signals to print")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load", logx.Error(err))
		os.Exit(1)
	}

	log := application.NewLogger(cfg.App)
	ctx = contextx.WithLogger(ctx, log)

	report, err := application.ScanOnce(ctx, cfg, application.ScanOnceOptions{
		DirectionB: *directionB,
		Retain:     *retain,
		TopLimit:   *top,
	})
	if err != nil {
		log.Error("scan failed", logx.Error(err))
		os.Exit(1) //nolint:gocritic
	}

	printReport(report)
}

func printReport(r application.ScanReport) {
	fmt.Printf("buff:    fetched=%d saved=%d dropped=%d filtered=%d\n",
		r.Buff.Fetched, r.Buff.Saved, r.Buff.Dropped, r.Buff.Filtered)
	fmt.Printf("csfloat: fetched=%d saved=%d dropped=%d duplicates=%d retired=%d\n",
		r.CSFloat.Fetched, r.CSFloat.Saved, r.CSFloat.Dropped, r.CSFloat.Duplicates, r.Retired)
	printSummary("direction A", r.DirectionA)
	if r.DirectionB != nil {
		printSummary("direction B", *r.DirectionB)
	}

	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDIR\tITEM\tBUY $\tSELL $\tROI")
	for _, s := range r.Top {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%.2f\t%.1f%%\n",
			s.ID, s.Direction.Short(), s.MarketHashName, s.BuyPriceUSD(), s.SellPriceUSD(), s.ROI*100)
	}
	_ = w.Flush()
}

func printSummary(title string, s arbsignal.Summary) {
	fmt.Printf("%s: evaluated=%d found=%d created=%d updated=%d transient=%d\n",
		title, s.Evaluated, s.Found, s.Created, s.Updated, s.Transient)
}
