package cli

import (
	"fmt"

	"github.com/kamruz-zzaman/portfolio-v2/internal/database"
	"github.com/kamruz-zzaman/portfolio-v2/internal/service"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type SeedOptions struct {
	File string
}

func NewSeedCommand(root *RootOptions) *cobra.Command {
	opts := &SeedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo users, projects and posts",
		Long:  "Load seed data from --file, or the built-in demo data. Nothing is written when an admin already exists.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadSeed(opts.File)
			if err != nil {
				return err
			}

			return withDB(root, func(db *gorm.DB) error {
				if err := database.Migrate(db); err != nil {
					return err
				}
				result, err := service.NewSeedService(db).Seed(cmd.Context(), data)
				if err != nil {
					return err
				}

				text := fmt.Sprintf("seeded %d users, %d projects, %d posts, %d comments",
					result.Users, result.Projects, result.Posts, result.Comments)
				if result.Skipped {
					text = "database already seeded"
				}
				return writeResult(cmd.OutOrStdout(), root.Format, result, text)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "YAML seed file (defaults to built-in demo data)")

	return cmd
}

func loadSeed(path string) (*service.SeedData, error) {
	if path == "" {
		return service.DefaultSeedData()
	}
	return service.LoadSeedFile(path)
}
