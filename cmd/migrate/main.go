package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"farm-platform/internal/infrastructure/config"
	"farm-platform/internal/infrastructure/logging"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

var (
	cfgPath        string
	migrationsPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations to the farm database",
		RunE:  runMigrations,
	}
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "config.yaml", "path to config file")
	rootCmd.Flags().StringVarP(&migrationsPath, "dir", "d", "db/migrations", "path to migrations directory")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// migrationFiles 依檔名排序列出目錄下的 .sql 檔。
func migrationFiles(dir string) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve migrations path: %w", err)
	}
	if _, err := os.Stat(absDir); err != nil {
		return nil, fmt.Errorf("migrations directory: %w", err)
	}
	files, err := filepath.Glob(filepath.Join(absDir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .sql migration files in %s", absDir)
	}
	sort.Strings(files)
	return files, nil
}

func runMigrations(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFromFile(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Pretty)

	if cfg.DB.DSN == "" {
		return fmt.Errorf("db.dsn is not set")
	}
	files, err := migrationFiles(migrationsPath)
	if err != nil {
		return err
	}

	db, err := sql.Open("postgres", cfg.DB.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	for _, f := range files {
		body, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		logger.Info("applying migration", "file", filepath.Base(f))
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("apply %s: %w", filepath.Base(f), err)
		}
	}
	logger.Info("migrations complete", "count", len(files))
	return nil
}
