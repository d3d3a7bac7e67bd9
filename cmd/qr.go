package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"qrmenu/internal/service"
)

var (
	qrTable   string
	qrOut     string
	qrBaseURL string
)

var qrCmd = &cobra.Command{
	Use:   "qr <restaurant-id>",
	Short: "Write a menu QR code PNG for a restaurant",
	Args:  cobra.ExactArgs(1),
	Run:   runQR,
}

func init() {
	qrCmd.Flags().StringVar(&qrTable, "table", "", "table number baked into the code")
	qrCmd.Flags().StringVar(&qrOut, "out", "", "output file (default <restaurant-id>.png)")
	qrCmd.Flags().StringVar(&qrBaseURL, "base-url", "", "public base URL (default from config)")
	rootCmd.AddCommand(qrCmd)
}

func runQR(cmd *cobra.Command, args []string) {
	cfg := loadConfigOrExit()

	baseURL := qrBaseURL
	if baseURL == "" {
		baseURL = cfg.BaseURL
	}

	restaurantID := args[0]
	out := qrOut
	if out == "" {
		out = restaurantID + ".png"
		if qrTable != "" {
			out = fmt.Sprintf("%s-table-%s.png", restaurantID, qrTable)
		}
	}

	gen := service.NewQRGenerator(baseURL)
	png, err := gen.Generate(restaurantID, qrTable)
	if err != nil {
		log.Fatal("QR generation failed:", err)
	}
	if err := os.WriteFile(out, png, 0o644); err != nil {
		log.Fatal("Write failed:", err)
	}
	fmt.Printf("Wrote %s -> %s\n", out, gen.MenuURL(restaurantID, qrTable))
}
