package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/neetwise/listing/internal/catalog"
	"github.com/neetwise/listing/internal/filtering"
	"github.com/neetwise/listing/internal/listing"
	"github.com/neetwise/listing/internal/matching"
	"github.com/neetwise/listing/internal/paginator"
	"github.com/neetwise/listing/internal/profile"
	"github.com/neetwise/listing/internal/seed"
	"github.com/neetwise/listing/internal/utils"
)

const (
	PromptLoadMore       = "Load more"
	PromptFilterType     = "Filter by type"
	PromptSort           = "Change sort order"
	PromptRefreshProfile = "Refresh profile"
	PromptFilters        = "Show filters"
	PromptDismiss        = "Dismiss notification"
	PromptExit           = "Exit"

	maxNameLength = 48
)

var errExit = errors.New("exit requested")

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Browse a listing page by page",
	Run: func(cmd *cobra.Command, _ []string) {
		list(cmd)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	addListFlags(listCmd)
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("type", "t", catalog.AllTypes, "type or category to show")
	cmd.Flags().StringP("sort", "s", "none", "order by the listing sort field (price or fees): none, asc or desc")
	cmd.Flags().Bool("seed-if-empty", false, "add sample documents when the listing is empty")
	cmd.Flags().Bool("ignore-profile", false, "show candidates outside the expected score range")
	cmd.Flags().BoolP("no-interactive", "n", false, "print the first page and exit")
}

// list is the interactive listing command.
func list(cmd *cobra.Command) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	logger, config := setup()

	if err := runList(ctx, cmd, logger, config); err != nil && !errors.Is(err, errExit) {
		logger.Fatal("exiting", zap.Error(err))
	}
}

// runList returns instead of exiting so the store and the controller are
// released before the process stops.
func runList(ctx context.Context, cmd *cobra.Command, logger *zap.Logger, config *Config) error {
	listingCfg, err := config.listingConfig()
	if err != nil {
		return fmt.Errorf("resolving the listing: %w", err)
	}

	listingCfg.TypeFilter, _ = cmd.Flags().GetString("type")

	sortFlag, _ := cmd.Flags().GetString("sort")
	order, err := listing.ParseSortOrder(sortFlag)
	if err != nil {
		return fmt.Errorf("parsing sort order: %w", err)
	}

	source, closeStore, err := openStore(ctx, config, logger)
	if err != nil {
		return fmt.Errorf("opening the document store: %w", err)
	}
	defer closeStore()

	seedIfEmpty, _ := cmd.Flags().GetBool("seed-if-empty")
	if seedIfEmpty || strings.EqualFold(config.Store.Driver, driverMemory) {
		added, err := seed.IfEmpty(ctx, source, listingCfg.Listing, logger)
		if err != nil {
			return fmt.Errorf("seeding sample documents: %w", err)
		}
		if added > 0 {
			logger.Info("sample documents added", zap.Int("count", added))
		}
	}

	pages, err := paginator.New(source, listingCfg.Listing,
		paginator.WithFilteredPageSize(config.Listing.FilteredPageSize),
		paginator.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("creating the paginator: %w", err)
	}

	filters := []filtering.Filter{filtering.NewEligibility()}
	if ignore, _ := cmd.Flags().GetBool("ignore-profile"); ignore {
		filtering.DisableByName(filters, filtering.EligibilityName, "skip requested via flag")
	}

	notifications := make(chan listing.Notification, 8)
	controller, err := listing.New(listingCfg, listing.Deps{
		Pages:    pages,
		Profiles: profile.NewStore(source, logger),
		Arrivals: source,
		Filters:  filters,
		Logger:   logger,
		OnNotify: func(n listing.Notification) {
			select {
			case notifications <- n:
			default:
			}
		},
	})
	if err != nil {
		return fmt.Errorf("creating the listing: %w", err)
	}
	defer controller.Close()

	logger.Info("starting the listing", zap.String("listing", listingCfg.Listing.Name), zap.String("version", version))

	controller.SetSortOrder(order)
	controller.Init(ctx)

	printView(controller)

	if noInteractive, _ := cmd.Flags().GetBool("no-interactive"); noInteractive {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return browse(gctx, controller, logger)
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case n := <-notifications:
				logger.Info(n.Message, zap.String("title", n.Title), zap.String("value", n.Value))
			}
		}
	})

	return g.Wait()
}

func browse(ctx context.Context, controller *listing.Controller, logger *zap.Logger) error {
	for {
		state := controller.State()

		items := make([]string, 0, 7)
		if state.HasMore {
			items = append(items, PromptLoadMore)
		}
		items = append(items, PromptFilterType, PromptSort, PromptRefreshProfile, PromptFilters)
		if state.Notification != nil {
			items = append(items, PromptDismiss)
		}
		items = append(items, PromptExit)

		prompt := promptui.Select{
			Label: fmt.Sprintf("%s: type %s, sort %s", controller.Listing().Name, state.TypeFilter, state.SortOrder),
			Items: items,
		}

		_, action, err := prompt.Run()
		if err != nil {
			return err
		}

		if err := handleAction(ctx, action, controller, logger); err != nil {
			return err
		}
	}
}

func handleAction(ctx context.Context, action string, controller *listing.Controller, logger *zap.Logger) error {
	switch action {
	case PromptLoadMore:
		if !controller.LoadMore(ctx) {
			logger.Info("nothing more to load")
			return nil
		}
		printView(controller)
		return nil
	case PromptFilterType:
		typePrompt := promptui.Select{
			Label: "Choose a type and press ENTER",
			Items: controller.Listing().TypeOptions,
		}
		_, selected, err := typePrompt.Run()
		if err != nil {
			return err
		}
		controller.SetTypeFilter(ctx, selected)
		printView(controller)
		return nil
	case PromptSort:
		sortPrompt := promptui.Select{
			Label: "Sort by price",
			Items: []string{listing.SortNone.String(), listing.SortAscending.String(), listing.SortDescending.String()},
		}
		_, selected, err := sortPrompt.Run()
		if err != nil {
			return err
		}
		order, err := listing.ParseSortOrder(selected)
		if err != nil {
			return err
		}
		controller.SetSortOrder(order)
		printView(controller)
		return nil
	case PromptRefreshProfile:
		if !controller.RefreshProfile(ctx) {
			logger.Info("profile unchanged")
			return nil
		}
		printView(controller)
		return nil
	case PromptFilters:
		for _, status := range filtering.Describe(controller.Filters()) {
			logger.Info("filter",
				zap.String("name", status.Name),
				zap.Bool("enabled", status.Enabled),
				zap.String("reason", status.Reason),
				zap.Any("details", status.Details),
			)
		}
		return nil
	case PromptDismiss:
		controller.DismissNotification()
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// sortLabel names the field the listing sorts on.
func sortLabel(l catalog.Listing) string {
	return fmt.Sprintf("Sort by %s", l.SortField)
}

// printView writes the current view with the match percentage of every
// candidate.
func printView(controller *listing.Controller) {
	state := controller.State()
	view := controller.View()
	l := controller.Listing()

	for i, c := range view {
		match := "-"
		if pct, ok := matching.MatchPercentage(state.Profile, c); ok {
			match = fmt.Sprintf("%d%%", pct)
		}

		value := "-"
		if v, ok := l.SortValue(c); ok {
			value = catalog.NumberOf(v).String()
		}

		fmt.Printf("%3d. %-48s %-20s %10s  match %s\n",
			i+1, utils.ShortName(c.DisplayName(), maxNameLength), l.TypeOf(c), value, match)
	}

	fmt.Printf("%d shown, %d loaded, more available: %t\n", len(view), len(state.Items), state.HasMore)

	if n := state.Notification; n != nil {
		fmt.Printf("* %s %s %s\n", n.Message, n.Title, n.Value)
	}
}
