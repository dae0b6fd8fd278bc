// Command cnpjetl downloads and ingests the Receita Federal's CNPJ
// open-data archives into a SQLite or Postgres database (spec.md §1, §6).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/msantosjader/rfb-cnpj-etl/internal/config"
	"github.com/msantosjader/rfb-cnpj-etl/internal/logx"

	_ "github.com/msantosjader/rfb-cnpj-etl/internal/store/postgres"
	_ "github.com/msantosjader/rfb-cnpj-etl/internal/store/sqlite"
)

var (
	cfg     *config.Config
	debug   bool
	quiet   bool
	rootCmd = &cobra.Command{
		Use:           "cnpjetl",
		Short:         "Fetch and load Receita Federal CNPJ open-data archives",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.Load()
			if debug {
				cfg.Debug = true
			}
			logx.SetDebug(cfg.Debug)
			logx.SetQuiet(quiet)
		},
	}
)

func main() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose debug logging")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress informational output")

	rootCmd.AddCommand(getAvailablesCmd, getLatestCmd, getURLsCmd, downloadCmd, dbCmd, completionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "erro:", err)
		os.Exit(1)
	}
}
