package cli

import (
	"github.com/kamruz-zzaman/portfolio-v2/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(opts, func(db *gorm.DB) error {
				if err := database.Migrate(db); err != nil {
					return err
				}
				return writeResult(cmd.OutOrStdout(), opts.Format,
					map[string]interface{}{"migrated": len(database.Models)},
					"schema is up to date")
			})
		},
	}
}
