package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msantosjader/rfb-cnpj-etl/internal/catalog"
	"github.com/msantosjader/rfb-cnpj-etl/internal/download"
	"github.com/msantosjader/rfb-cnpj-etl/internal/logx"
	"github.com/msantosjader/rfb-cnpj-etl/internal/metrics"
	"github.com/msantosjader/rfb-cnpj-etl/internal/pipeline"
	"github.com/msantosjader/rfb-cnpj-etl/internal/store"
	"github.com/msantosjader/rfb-cnpj-etl/internal/store/factory"
)

var (
	dbEngine          string
	dbMonth           string
	dbDownloadDir     string
	dbSkipIndex       bool
	dbSkipValidation  bool
	dbLowMemory       bool
	dbParallel        bool
	dbSQLitePathFlag  string
	dbPostgresNameFlg string
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the target database: schema init, bulk load, and indexing",
}

func init() {
	for _, c := range []*cobra.Command{dbInitCmd, dbLoadCmd, dbIndexCmd} {
		c.Flags().StringVar(&dbEngine, "engine", "sqlite", "storage backend: sqlite or postgres")
		c.Flags().StringVar(&dbSQLitePathFlag, "db-path", "", "override the SQLite database file path")
		c.Flags().StringVar(&dbPostgresNameFlg, "db-name", "", "override the Postgres database name")
	}
	dbLoadCmd.Flags().StringVar(&dbMonth, "month", "", "month (MM/YYYY) whose published archive set the local files are validated against; defaults to the latest published month")
	dbLoadCmd.Flags().StringVar(&dbDownloadDir, "download-dir", "", "directory containing downloaded archives")
	dbLoadCmd.Flags().BoolVar(&dbSkipIndex, "skip-index", false, "skip index creation after load")
	dbLoadCmd.Flags().BoolVar(&dbSkipValidation, "skip-validation", false, "skip local/remote archive-set validation before loading")
	dbLoadCmd.Flags().BoolVar(&dbLowMemory, "low-memory", false, "passed to the backend's Consume; neither backend changes its loading behavior for it")
	dbLoadCmd.Flags().BoolVar(&dbParallel, "parallel", false, "enable the multi-writer loading path (postgres only)")

	dbCmd.AddCommand(dbInitCmd, dbLoadCmd, dbIndexCmd)
}

func openBackend(ctx context.Context) (store.Backend, error) {
	opts := factory.Options{
		SQLitePath:       cfg.SQLitePath,
		PostgresHost:     cfg.PostgresHost,
		PostgresPort:     cfg.PostgresPort,
		PostgresDatabase: cfg.PostgresDatabase,
		PostgresUser:     cfg.PostgresUser,
		PostgresPassword: cfg.PostgresPassword,
		WorkerThreads:    cfg.WorkerThreads,
	}
	if dbSQLitePathFlag != "" {
		opts.SQLitePath = dbSQLitePathFlag
	}
	if dbPostgresNameFlg != "" {
		opts.PostgresDatabase = dbPostgresNameFlg
	}
	return factory.New(ctx, dbEngine, catalog.New(), opts)
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the target database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = backend.Close() }()
		return backend.InitializeSchema(cmd.Context())
	},
}

var dbIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Add deferred primary/foreign keys and secondary indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = backend.Close() }()
		ctx := cmd.Context()
		if err := backend.EnableForeignKeys(ctx); err != nil {
			return err
		}
		return backend.CreateIndexes(ctx)
	},
}

var dbLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Walk downloaded archives, load them, repair data, and (unless skipped) index",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		shutdownMetrics, err := metrics.Setup(ctx)
		if err != nil {
			return fmt.Errorf("configurando metrics: %w", err)
		}
		defer func() { _ = shutdownMetrics(context.Background()) }()

		downloadDir := cfg.DownloadDir
		if dbDownloadDir != "" {
			downloadDir = dbDownloadDir
		}

		if !dbSkipValidation {
			if err := validateLocalArchives(ctx, downloadDir); err != nil {
				return err
			}
		}

		backend, err := openBackend(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = backend.Close() }()

		if err := backend.InitializeSchema(ctx); err != nil {
			return err
		}

		cat := catalog.New()
		queue := pipeline.NewQueue(cfg.QueueSize)

		// The sentinel count Producer.Run pushes must match the number
		// of consumer goroutines actually draining the queue, or the
		// extra workers block on Pop forever and Consume never returns
		// (spec.md §4.C step 7, §5, §9). sqlite always runs one
		// consumer; postgres runs WorkerThreads consumers, but only in
		// --parallel mode.
		consumers := 1
		if dbEngine == "postgres" && dbParallel {
			consumers = cfg.WorkerThreads
		}
		producer := pipeline.NewProducer(cat, queue, cfg.BatchSizeFor, consumers)

		reporter := pipeline.NewReporter(0, logx.Enabled(), metrics.RowsCounter())
		defer reporter.Close()

		errs := make(chan error, 2)
		go func() { errs <- producer.Run(downloadDir, dbParallel) }()
		go func() {
			errs <- backend.Consume(ctx, queue, store.ConsumeOptions{
				LowMemory: dbLowMemory,
				Parallel:  dbParallel,
				Reporter:  reporter,
			})
		}()

		for i := 0; i < 2; i++ {
			if err := <-errs; err != nil {
				return err
			}
		}

		if err := backend.PatchData(ctx); err != nil {
			return err
		}

		if dbSkipIndex {
			return nil
		}
		if err := backend.EnableForeignKeys(ctx); err != nil {
			return err
		}
		return backend.CreateIndexes(ctx)
	},
}

// validateLocalArchives compares the downloaded archives against the
// remote month's published set, failing the load early if the local
// directory is incomplete (spec.md §4.B, §8).
func validateLocalArchives(ctx context.Context, downloadDir string) error {
	disc := newDiscoverer()
	month := dbMonth
	if month == "" {
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

	statuses, err := download.Validate(ctx, disc.HTTPClient, disc.UserAgent, urls, downloadDir)
	if err != nil {
		return err
	}
	if missing := download.Missing(statuses); len(missing) > 0 {
		return fmt.Errorf("%d arquivo(s) ausente(s) ou incompleto(s) em %s; execute 'cnpjetl download' primeiro", len(missing), downloadDir)
	}
	return nil
}
