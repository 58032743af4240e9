package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/unitematch/unitematch-api/internal/traininglog"
)

// Prints the most recent training runs. Reads ClickHouse when
// CLICKHOUSE_URL is set, the CSV log otherwise.
func main() {
	path := flag.String("log", "models/training_log.csv", "CSV training log")
	n := flag.Int("n", 10, "number of runs to show")
	flag.Parse()

	ctx := context.Background()

	var reader traininglog.Reader = traininglog.NewCSVLog(*path)
	if chURL := os.Getenv("CLICKHOUSE_URL"); chURL != "" {
		opts, err := clickhouse.ParseDSN(chURL)
		if err != nil {
			log.Fatalf("Failed to parse DSN: %v", err)
		}
		conn, err := clickhouse.Open(opts)
		if err != nil {
			log.Fatalf("Failed to open connection: %v", err)
		}
		defer conn.Close()
		reader = traininglog.NewClickHouseLog(conn)
	}

	entries, err := reader.Recent(ctx, *n)
	if err != nil {
		log.Fatalf("Failed to read training log: %v", err)
	}
	if len(entries) == 0 {
		fmt.Println("No training runs recorded")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tVERSION\tALGORITHM\tTUNED\tACCURACY\tF1\tCV\tTRAIN/TEST\tSYNERGY R2\tDURATION")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%.4f\t%.4f\t%.4f\t%d/%d\t%.4f\t%dms\n",
			e.Timestamp.Format("2006-01-02 15:04:05"), e.ModelVersion, e.Algorithm, e.Tuned,
			e.Accuracy, e.F1Weighted, e.CVScore, e.TrainSize, e.TestSize, e.SynergyR2, e.DurationMS)
	}
	w.Flush()
}
