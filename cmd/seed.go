package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neetwise/listing/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add sample documents to the selected listing",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		logger, config := setup()

		listingCfg, err := config.listingConfig()
		if err != nil {
			logger.Fatal("resolving the listing", zap.Error(err))
		}

		source, closeStore, err := openStore(ctx, config, logger)
		if err != nil {
			logger.Fatal("opening the document store", zap.Error(err))
		}
		defer closeStore()

		seedFn := seed.IfEmpty
		if force, _ := cmd.Flags().GetBool("force"); force {
			seedFn = seed.All
		}

		added, err := seedFn(ctx, source, listingCfg.Listing, logger)
		if err != nil {
			logger.Error("seeding sample documents", zap.Error(err))
			return
		}

		logger.Info("seeding finished",
			zap.String("collection", listingCfg.Listing.Collection),
			zap.Int("added", added),
		)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().BoolP("force", "f", false, "add samples even when the listing already has documents")
}
