package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/msantosjader/rfb-cnpj-etl/internal/config"
	"github.com/msantosjader/rfb-cnpj-etl/internal/download"
)

func newDiscoverer() *download.Discoverer {
	client := &http.Client{Timeout: 30 * time.Second}
	ua := download.NewRotatingUserAgent(config.BrowserAgents)
	return download.NewDiscoverer(cfg.DataURL, client, ua.Next)
}

var getAvailablesCmd = &cobra.Command{
	Use:   "get-availables",
	Short: "List the months published by the Receita Federal",
	RunE: func(cmd *cobra.Command, args []string) error {
		months, err := newDiscoverer().AvailableMonths(cmd.Context())
		if err != nil {
			return err
		}
		for _, m := range months {
			fmt.Println(m)
		}
		return nil
	},
}

var getLatestCmd = &cobra.Command{
	Use:   "get-latest",
	Short: "Print the most recently published month",
	RunE: func(cmd *cobra.Command, args []string) error {
		latest, err := newDiscoverer().LatestMonth(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(latest)
		return nil
	},
}

var getURLsCmd = &cobra.Command{
	Use:   "get-urls MM/YYYY",
	Short: "List archive URLs published for a given month",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		urls, err := newDiscoverer().URLsForMonth(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, u := range urls {
			fmt.Println(u)
		}
		return nil
	},
}

var (
	downloadClean       bool
	downloadWorkers     int
	downloadDirOverride string
)

var downloadCmd = &cobra.Command{
	Use:   "download [MM/YYYY]",
	Short: "Download a month's archives (defaults to the latest month)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		disc := newDiscoverer()

		month := ""
		if len(args) == 1 {
			month = args[0]
		} else {
			latest, err := disc.LatestMonth(ctx)
			if err != nil {
				return err
			}
			month = latest
		}

		urls, err := disc.URLsForMonth(ctx, month)
		if err != nil {
			return err
		}

		destDir := cfg.DownloadDir
		if downloadDirOverride != "" {
			destDir = downloadDirOverride
		}
		if downloadClean {
			if err := os.RemoveAll(destDir); err != nil {
				return fmt.Errorf("limpando %s: %w", destDir, err)
			}
		}
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return fmt.Errorf("criando %s: %w", destDir, err)
		}

		workers := cfg.DownloadWorkers
		if downloadWorkers > 0 {
			workers = downloadWorkers
		}

		client := &http.Client{Timeout: 0} // chunked reads enforce their own timeout
		ua := download.NewRotatingUserAgent(config.BrowserAgents)
		mgr := download.NewManager(client, ua, workers, destDir)
		mgr.ChunkBytes = cfg.DownloadChunkBytes
		mgr.ChunkTimeout = time.Duration(cfg.DownloadChunkTimeout) * time.Second
		mgr.MaxRetries = cfg.DownloadMaxRetries

		return mgr.DownloadAll(context.Background(), urls)
	},
}

func init() {
	downloadCmd.Flags().BoolVar(&downloadClean, "clean", false, "remove the download directory before fetching")
	downloadCmd.Flags().IntVar(&downloadWorkers, "workers", 0, "override the number of concurrent download workers")
	downloadCmd.Flags().StringVar(&downloadDirOverride, "download-dir", "", "override the download destination directory")
}
