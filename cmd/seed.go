package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"qrmenu/internal/seed"
	"qrmenu/internal/storage"
)

var (
	seedCount    int
	seedValue    int64
	seedPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the store with demo restaurants and owner logins",
	Run:   runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 5, "number of restaurants to create")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 42, "random seed, the same seed gives the same data")
	seedCmd.Flags().StringVar(&seedPassword, "password", "", "demo owner password (default demo1234)")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) {
	cfg := loadConfigOrExit()

	db := cfg.MustInitPostgres()
	defer db.Close()

	store := storage.NewMenuStore(db)
	if err := store.EnsureSchema(); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	result, err := seed.NewSeeder(store, seedValue, seedPassword).Run(seedCount)
	if err != nil {
		log.Fatal("Seeding failed:", err)
	}

	fmt.Printf("Seeded %d restaurants, %d categories, %d items\n",
		result.Restaurants, result.Categories, result.Items)
	fmt.Println("Demo owner logins:")
	for _, owner := range result.Owners {
		fmt.Printf("  %-24s %s / %s\n", owner.RestaurantID, owner.Email, owner.Password)
	}
}
