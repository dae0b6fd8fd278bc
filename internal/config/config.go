// Package config is the single constants module for the ingestion
// pipeline: base URL, directory layout, batch sizing, worker/queue
// sizes, and backend credentials. Defaults are compiled in; a
// .cnpjetl.yaml in the working directory (or $HOME) and CNPJ_*
// environment variables override them, following the same
// config-file-plus-env-override shape as the teacher's
// internal/config/local_config.go.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DataURL is the base directory listing for the Receita Federal's
// published CNPJ dataset.
const DataURL = "https://arquivos.receitafederal.gov.br/dados/cnpj/dados_abertos_cnpj/"

// BatchRatios scales BatchSize per target table. Establishments rows are
// the widest on the wire, so their buffers are capped at 0.4x to bound
// memory.
var BatchRatios = map[string]float64{
	"estabelecimento": 0.4,
}

// BrowserAgents rotates across requests to avoid a single static
// fingerprint on repeated downloads.
var BrowserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/124.0.0.0 Safari/537.36",
}

// Config is the resolved, effective configuration for one run.
type Config struct {
	DataURL string `yaml:"data_url"`

	DownloadDir string `yaml:"download_dir"`
	SQLitePath  string `yaml:"sqlite_path"`

	BatchSize      int `yaml:"batch_size"`
	WorkerThreads  int `yaml:"worker_threads"`
	QueueSize      int `yaml:"-"` // derived, never persisted
	DownloadWorkers int `yaml:"download_workers"`

	DownloadChunkBytes   int `yaml:"download_chunk_bytes"`
	DownloadChunkTimeout int `yaml:"download_chunk_timeout_seconds"`
	DownloadMaxRetries   int `yaml:"download_max_retries"`

	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     int    `yaml:"postgres_port"`
	PostgresDatabase string `yaml:"postgres_database"`
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`

	Debug bool `yaml:"debug"`
}

// Default returns the compiled-in configuration before any file or
// environment overrides are applied.
func Default() *Config {
	workers := runtime.NumCPU() - 1
	if workers < 1 {
		workers = 1
	}
	queue := 2 * workers
	if queue < 2 {
		queue = 2
	}
	queue -= 5
	if queue < 2 {
		queue = 2
	}

	return &Config{
		DataURL:     DataURL,
		DownloadDir: filepath.Join("data", "downloads"),
		SQLitePath:  filepath.Join("data", "dados_cnpj.db"),

		BatchSize:       250_000,
		WorkerThreads:   workers,
		QueueSize:       queue,
		DownloadWorkers: 10,

		DownloadChunkBytes:   8 * 1024,
		DownloadChunkTimeout: 60,
		DownloadMaxRetries:   100,

		PostgresHost:     "localhost",
		PostgresPort:     5432,
		PostgresDatabase: "dados_cnpj",
		PostgresUser:     "cnpj",
		PostgresPassword: "",

		Debug: os.Getenv("CNPJ_DEBUG") != "",
	}
}

// fileConfig is the subset of Config fields that may appear in
// .cnpjetl.yaml; kept separate from Config so that derived fields
// (QueueSize) can never be set from a stale file.
type fileConfig struct {
	DataURL              string `yaml:"data_url"`
	DownloadDir          string `yaml:"download_dir"`
	SQLitePath           string `yaml:"sqlite_path"`
	BatchSize            int    `yaml:"batch_size"`
	WorkerThreads        int    `yaml:"worker_threads"`
	DownloadWorkers      int    `yaml:"download_workers"`
	DownloadChunkBytes   int    `yaml:"download_chunk_bytes"`
	DownloadChunkTimeout int    `yaml:"download_chunk_timeout_seconds"`
	DownloadMaxRetries   int    `yaml:"download_max_retries"`
	PostgresHost         string `yaml:"postgres_host"`
	PostgresPort         int    `yaml:"postgres_port"`
	PostgresDatabase     string `yaml:"postgres_database"`
	PostgresUser         string `yaml:"postgres_user"`
	PostgresPassword     string `yaml:"postgres_password"`
	Debug                bool   `yaml:"debug"`
}

// Load resolves the effective config: compiled-in defaults, overridden
// by .cnpjetl.yaml (searched in the working directory, then $HOME),
// overridden by CNPJ_* environment variables. It never fails on a
// missing file — an absent .cnpjetl.yaml is normal for a fresh checkout.
func Load() *Config {
	cfg := Default()

	for _, dir := range configSearchDirs() {
		path := filepath.Join(dir, ".cnpjetl.yaml")
		data, err := os.ReadFile(path) // #nosec G304 - fixed filename, trusted search dirs
		if err != nil {
			continue
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			continue
		}
		applyFile(cfg, &fc)
		break
	}

	applyEnv(cfg)
	recomputeQueueSize(cfg)
	return cfg
}

func configSearchDirs() []string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	return dirs
}

func applyFile(cfg *Config, fc *fileConfig) {
	if fc.DataURL != "" {
		cfg.DataURL = fc.DataURL
	}
	if fc.DownloadDir != "" {
		cfg.DownloadDir = fc.DownloadDir
	}
	if fc.SQLitePath != "" {
		cfg.SQLitePath = fc.SQLitePath
	}
	if fc.BatchSize > 0 {
		cfg.BatchSize = fc.BatchSize
	}
	if fc.WorkerThreads > 0 {
		cfg.WorkerThreads = fc.WorkerThreads
	}
	if fc.DownloadWorkers > 0 {
		cfg.DownloadWorkers = fc.DownloadWorkers
	}
	if fc.DownloadChunkBytes > 0 {
		cfg.DownloadChunkBytes = fc.DownloadChunkBytes
	}
	if fc.DownloadChunkTimeout > 0 {
		cfg.DownloadChunkTimeout = fc.DownloadChunkTimeout
	}
	if fc.DownloadMaxRetries > 0 {
		cfg.DownloadMaxRetries = fc.DownloadMaxRetries
	}
	if fc.PostgresHost != "" {
		cfg.PostgresHost = fc.PostgresHost
	}
	if fc.PostgresPort > 0 {
		cfg.PostgresPort = fc.PostgresPort
	}
	if fc.PostgresDatabase != "" {
		cfg.PostgresDatabase = fc.PostgresDatabase
	}
	if fc.PostgresUser != "" {
		cfg.PostgresUser = fc.PostgresUser
	}
	if fc.PostgresPassword != "" {
		cfg.PostgresPassword = fc.PostgresPassword
	}
	if fc.Debug {
		cfg.Debug = true
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CNPJ_DATA_URL"); v != "" {
		cfg.DataURL = v
	}
	if v := os.Getenv("CNPJ_DOWNLOAD_DIR"); v != "" {
		cfg.DownloadDir = v
	}
	if v := os.Getenv("CNPJ_SQLITE_PATH"); v != "" {
		cfg.SQLitePath = v
	}
	if v := envInt("CNPJ_BATCH_SIZE"); v > 0 {
		cfg.BatchSize = v
	}
	if v := envInt("CNPJ_WORKER_THREADS"); v > 0 {
		cfg.WorkerThreads = v
	}
	if v := envInt("CNPJ_DOWNLOAD_WORKERS"); v > 0 {
		cfg.DownloadWorkers = v
	}
	if v := os.Getenv("CNPJ_POSTGRES_HOST"); v != "" {
		cfg.PostgresHost = v
	}
	if v := envInt("CNPJ_POSTGRES_PORT"); v > 0 {
		cfg.PostgresPort = v
	}
	if v := os.Getenv("CNPJ_POSTGRES_DATABASE"); v != "" {
		cfg.PostgresDatabase = v
	}
	if v := os.Getenv("CNPJ_POSTGRES_USER"); v != "" {
		cfg.PostgresUser = v
	}
	if v := os.Getenv("CNPJ_POSTGRES_PASSWORD"); v != "" {
		cfg.PostgresPassword = v
	}
	if os.Getenv("CNPJ_DEBUG") != "" {
		cfg.Debug = true
	}
}

func envInt(name string) int {
	v, err := strconv.Atoi(os.Getenv(name))
	if err != nil {
		return 0
	}
	return v
}

// recomputeQueueSize re-derives QueueSize from WorkerThreads per
// spec.md §5: max(2, 2*workers) - 5, floored at 2.
func recomputeQueueSize(cfg *Config) {
	q := 2 * cfg.WorkerThreads
	if q < 2 {
		q = 2
	}
	q -= 5
	if q < 2 {
		q = 2
	}
	cfg.QueueSize = q
}

// BatchSizeFor returns the effective batch threshold for table, applying
// BatchRatios.
func (c *Config) BatchSizeFor(table string) int {
	ratio, ok := BatchRatios[table]
	if !ok {
		ratio = 1.0
	}
	return int(float64(c.BatchSize) * ratio)
}
