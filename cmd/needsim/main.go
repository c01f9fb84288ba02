// Command needsim runs the needs-driven agent simulation and inspects its
// journal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "needsim",
	Short: "Needs-driven agent simulation",
	Long: `needsim simulates a population whose needs decay over time. Each tick
every agent proposes goals, the arbiter ranks them and the top goal runs.
Events and decisions are journaled to SQLite.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "needsim.yaml", "path to the YAML config")
	rootCmd.AddCommand(runCmd, configCmd, journalCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
