package cli

import (
	"fmt"

	"github.com/kamruz-zzaman/portfolio-v2/internal/repository"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// NewRecountCommand rebuilds every post and comment counter from the
// interactions ledger and drops the caches that embed them.
func NewRecountCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recount",
		Short: "Recompute engagement counters from the interactions ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(opts, func(db *gorm.DB) error {
				return withCache(opts, func(redis *util.RedisClient) error {
					result, err := repository.NewInteractionRepository(db, redis).Recount(cmd.Context())
					if err != nil {
						return err
					}
					return writeResult(cmd.OutOrStdout(), opts.Format, result,
						fmt.Sprintf("recounted %d posts and %d comments", result.Posts, result.Comments))
				})
			})
		},
	}
}
