package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	catalogPath string
	port        int
)

// rootCmd runs the dashboard when no subcommand is given
var rootCmd = &cobra.Command{
	Use:   "minebot",
	Short: "AI driven Minecraft bot with a web dashboard",
	Long: `minebot periodically asks a language model which gameplay action to take
next and records the answers in an activity log served on a web dashboard.

Without an API key the bot picks from a fixed fallback menu.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "YAML catalog with situations and fallback actions (or set BOT_CATALOG_PATH)")

	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Dashboard port (or set PORT)")
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	decideCmd.Flags().StringVar(&situation, "situation", "", "Situation to decide on (default: random from the catalog)")
	decideCmd.Flags().StringVar(&goal, "goal", "", "Goal to pursue (default: BOT_GOAL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(decideCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
