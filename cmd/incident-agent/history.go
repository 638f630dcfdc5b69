package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/guardline/incident-agent/internal/config"
	"github.com/guardline/incident-agent/internal/store"
)

var (
	historyMonth  string
	historyDBPath string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored incidents by month",
	Long: `List incidents from the local database, grouped by monthly partition.

Example:
  incident-agent history
  incident-agent history --month 2026-01`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if historyDBPath != "" {
			cfg.DBPath = historyDBPath
		}

		db, err := store.Open(cfg.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		ctx := context.Background()
		partitions, err := loadPartitions(ctx, db)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printHistory(partitions)
	},
}

func loadPartitions(ctx context.Context, db *store.SQLiteStore) ([]*store.Partition, error) {
	if historyMonth != "" {
		p, err := db.GetPartition(ctx, historyMonth)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, nil
		}
		return []*store.Partition{p}, nil
	}
	return db.ListPartitions(ctx)
}

func printHistory(partitions []*store.Partition) {
	if len(partitions) == 0 {
		fmt.Println("No incidents stored.")
		return
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	total := 0
	for _, p := range partitions {
		fmt.Printf("\n%s (%d incidents)\n", cyan(p.YearMonth), len(p.Incidents))
		for _, e := range p.Incidents {
			fmt.Printf("  %s  %-18s %-20s %s\n",
				e.CreatedAt, e.Crime, e.Location, gray(e.IncidentID[:12]))
		}
		total += len(p.Incidents)
	}
	fmt.Printf("\n%d incidents in %d partitions\n", total, len(partitions))
}

func init() {
	historyCmd.Flags().StringVar(&historyMonth, "month", "",
		"Only show the given month partition (YYYY-MM)")
	historyCmd.Flags().StringVar(&historyDBPath, "db", "",
		"Path to the incident database (default from config)")
	rootCmd.AddCommand(historyCmd)
}
