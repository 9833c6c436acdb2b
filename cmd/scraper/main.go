package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"trustharvest/internal/adapters/observability"
	"trustharvest/internal/domain"
	"trustharvest/internal/shared"
)

type flags struct {
	stars     []int
	date      string
	search    string
	languages string
	verified  bool
	replies   bool

	sortBy    string
	sortOrder string

	output    string
	retry     bool
	analyze   bool
	visualize bool
	dynamic   bool
	store     bool
	cache     bool
	workers   int
}

func (f flags) queryOptions() domain.QueryOptions {
	return domain.QueryOptions{
		Stars:        f.stars,
		DateWindow:   f.date,
		Search:       f.search,
		Languages:    f.languages,
		VerifiedOnly: f.verified,
		RepliesOnly:  f.replies,
	}
}

func (f flags) sortSpec() domain.SortSpec {
	return domain.SortSpec{Key: f.sortBy, Desc: f.sortOrder != "asc"}
}

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.Serve()

	var fl flags

	rootCmd := &cobra.Command{
		Use:   "scraper <domain> [domain...]",
		Short: "Harvests consumer reviews for one or more site domains.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch fl.output {
			case "csv", "json", "both":
			default:
				return fmt.Errorf("invalid --output %q: want csv, json or both", fl.output)
			}
			switch fl.sortOrder {
			case "asc", "desc":
			default:
				return fmt.Errorf("invalid --sort-order %q: want asc or desc", fl.sortOrder)
			}
			if fl.workers <= 0 {
				fl.workers = cfg.Workers
			}
			cmd.SilenceUsage = true
			return run(cmd.Context(), cfg, fl, args)
		},
	}

	rootCmd.Flags().IntSliceVar(&fl.stars, "stars", nil, "Filter by star rating, repeatable (e.g. --stars 1 --stars 2).")
	rootCmd.Flags().StringVar(&fl.date, "date", "", "Filter by recency window (e.g. last30days).")
	rootCmd.Flags().StringVar(&fl.search, "search", "", "Filter by free-text search.")
	rootCmd.Flags().StringVar(&fl.languages, "languages", "all", "Filter by review language.")
	rootCmd.Flags().BoolVar(&fl.verified, "verified", false, "Only reviews from verified consumers.")
	rootCmd.Flags().BoolVar(&fl.replies, "replies", false, "Only reviews with a company reply.")
	rootCmd.Flags().StringVar(&fl.sortBy, "sort-by", "", "Sort reviews by field (e.g. published_date, rating, likes).")
	rootCmd.Flags().StringVar(&fl.sortOrder, "sort-order", "desc", "Sort direction: asc or desc.")
	rootCmd.Flags().StringVar(&fl.output, "output", "csv", "Output format: csv, json or both.")
	rootCmd.Flags().BoolVar(&fl.retry, "retry", false, "Retry failed page fetches up to three times.")
	rootCmd.Flags().BoolVar(&fl.analyze, "analyze", false, "Run keyword and correlation analysis over harvested reviews.")
	rootCmd.Flags().BoolVar(&fl.visualize, "visualize", false, "Write bar charts of reviews and ratings by location.")
	rootCmd.Flags().BoolVar(&fl.dynamic, "dynamic", false, "Render pages in a headless browser instead of plain HTTP.")
	rootCmd.Flags().BoolVar(&fl.store, "store", false, "Persist harvested reviews and the run summary to MySQL.")
	rootCmd.Flags().BoolVar(&fl.cache, "cache", false, "Serve unchanged pages from the Redis page cache.")
	rootCmd.Flags().IntVar(&fl.workers, "workers", 0, "Concurrent domain harvests (default from WORKERS env).")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
