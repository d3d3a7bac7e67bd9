package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"qrmenu/internal/events"
	"qrmenu/internal/storage"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Run the menu event consumer that feeds edit stats",
	Long: `stats consumes menu events from Kafka and folds them into the
per-restaurant edit aggregates in Redis. It runs until interrupted.
The serve command starts the same consumer in-process; run this one
when the server is deployed with publishing only.`,
	Run: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) {
	cfg := loadConfigOrExit()

	rdb := cfg.MustInitRedis()
	defer rdb.Close()

	reader := cfg.NewKafkaReader()
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events.NewStatsConsumer(reader, storage.NewStatsStore(rdb)).Start(ctx)
	log.Println("Stats consumer stopped")
}
