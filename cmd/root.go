package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"qrmenu/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "qrmenu",
	Short: "QR code menus for restaurants",
	Long: `qrmenu serves restaurant menus to diners over QR codes and gives
owners a live dashboard to edit them. Menus resolve from Postgres, a
static menu.json directory or a built-in sample, in that order.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (settings also come from environment variables)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfigOrExit() *config.Config {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
