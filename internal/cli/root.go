// Package cli implements portfolioctl, the maintenance command line for the
// portfolio backend.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/kamruz-zzaman/portfolio-v2/internal/config"
	"github.com/kamruz-zzaman/portfolio-v2/internal/database"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RootOptions holds global flags and the database opener shared by every
// command.
type RootOptions struct {
	Format string // "json" | "text"

	// OpenDB connects to the database and returns the matching release
	// func. Tests replace it.
	OpenDB func() (*gorm.DB, func(), error)

	// OpenCache returns the Redis client whose caches a command must
	// invalidate, or nil when there is none.
	OpenCache func() *util.RedisClient
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(&RootOptions{OpenDB: openConfiguredDB, OpenCache: openConfiguredCache})
}

// NewRootCommandWith builds the command tree around opts.
func NewRootCommandWith(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "portfolioctl",
		Short:         "Portfolio backend maintenance",
		Long:          "Schema migration, demo data seeding and counter repair for the portfolio backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewRecountCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func openConfiguredDB() (*gorm.DB, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { database.Close(db) }, nil
}

func openConfiguredCache() *util.RedisClient {
	cfg, err := config.Load()
	if err != nil || cfg.RedisHost == "" {
		return nil
	}
	client, err := util.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Warning: Redis unavailable, caches expire on their own: %v", err)
		return nil
	}
	return client
}

// withCache hands fn the configured Redis client, which may be nil.
func withCache(opts *RootOptions, fn func(redis *util.RedisClient) error) error {
	var client *util.RedisClient
	if opts.OpenCache != nil {
		client = opts.OpenCache()
	}
	if client != nil {
		defer client.Close()
	}
	return fn(client)
}

// withDB opens the database, runs fn and closes the connection.
func withDB(opts *RootOptions, fn func(db *gorm.DB) error) error {
	db, release, err := opts.OpenDB()
	if err != nil {
		return err
	}
	defer release()
	return fn(db)
}

// writeResult prints data as JSON or as the given text line.
func writeResult(w io.Writer, format string, data interface{}, text string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
