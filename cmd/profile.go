package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neetwise/listing/internal/catalog"
	"github.com/neetwise/listing/internal/profile"
)

var categories = []string{"General", "OBC", "SC", "ST"}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update the signed-in user's profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored profile",
	Run: func(_ *cobra.Command, _ []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		logger, config := setup()

		source, closeStore, err := openStore(ctx, config, logger)
		if err != nil {
			logger.Fatal("opening the document store", zap.Error(err))
		}
		defer closeStore()

		p, err := profile.NewStore(source, logger).Fetch(ctx)
		if err != nil {
			logger.Error("fetching the profile", zap.Error(err))
			return
		}
		if p == nil {
			logger.Info("no profile stored", zap.String("user_id", config.UserID))
			return
		}

		printProfile(p)
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update the stored profile from flags or prompts",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		logger, config := setup()

		if err := setProfile(ctx, cmd, logger, config); err != nil {
			logger.Fatal("updating the profile", zap.Error(err))
		}
	},
}

func setProfile(ctx context.Context, cmd *cobra.Command, logger *zap.Logger, config *Config) error {
	source, closeStore, err := openStore(ctx, config, logger)
	if err != nil {
		return fmt.Errorf("opening the document store: %w", err)
	}
	defer closeStore()

	store := profile.NewStore(source, logger)

	current, err := store.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetching the profile: %w", err)
	}
	if current == nil {
		current = &catalog.UserProfile{NotifyAdditions: true, NotifyUpdates: true}
	}

	updated, err := applyProfileFlags(cmd, *current)
	if err != nil {
		return fmt.Errorf("reading profile flags: %w", err)
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		if err := promptMissing(&updated); err != nil {
			return fmt.Errorf("prompting for profile fields: %w", err)
		}
	}

	saved, err := store.Save(ctx, &updated)
	if errors.Is(err, profile.ErrNotSignedIn) {
		return errors.New("set user-id or NEETWISE_USER_ID to save a profile")
	}
	if err != nil {
		return fmt.Errorf("saving the profile: %w", err)
	}

	printProfile(saved)
	return nil
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd, profileSetCmd)

	addProfileFlags(profileSetCmd)
}

func addProfileFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("full-name", "", "full name")
	flags.String("email", "", "email address")
	flags.String("batch", "", "batch name")
	flags.String("domicile", "", "state of domicile")
	flags.String("category", "", "reservation category: "+strings.Join(categories, ", "))
	flags.Int("score-from", 0, "lower bound of the expected NEET score")
	flags.Int("score-to", 0, "upper bound of the expected NEET score")
	flags.Bool("repeater", false, "taking NEET again")
	flags.String("distance", "", "preferred distance from home")
	flags.Bool("notify-additions", true, "notify about new colleges")
	flags.Bool("notify-updates", true, "notify about college updates")
	flags.Bool("notify-admission", false, "notify about admission dates")
	flags.BoolP("interactive", "i", false, "prompt for required fields that are still empty")
}

// applyProfileFlags copies every flag the user set onto p.
func applyProfileFlags(cmd *cobra.Command, p catalog.UserProfile) (catalog.UserProfile, error) {
	flags := cmd.Flags()

	strs := map[string]*string{
		"full-name": &p.FullName,
		"email":     &p.Email,
		"batch":     &p.BatchName,
		"domicile":  &p.Domicile,
		"category":  &p.Category,
		"distance":  &p.PreferredDistance,
	}
	for name, target := range strs {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return p, err
		}
		*target = strings.TrimSpace(v)
	}

	scores := map[string]*catalog.Number{
		"score-from": &p.ExpectedScoreFrom,
		"score-to":   &p.ExpectedScoreTo,
	}
	for name, target := range scores {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetInt(name)
		if err != nil {
			return p, err
		}
		*target = catalog.NumberOf(v)
	}

	bools := map[string]*bool{
		"repeater":         &p.IsNEETRepeater,
		"notify-additions": &p.NotifyAdditions,
		"notify-updates":   &p.NotifyUpdates,
		"notify-admission": &p.NotifyAdmission,
	}
	for name, target := range bools {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetBool(name)
		if err != nil {
			return p, err
		}
		*target = v
	}

	return p, nil
}

func promptMissing(p *catalog.UserProfile) error {
	for _, field := range profile.Missing(p) {
		switch field {
		case "category":
			prompt := promptui.Select{Label: "Category", Items: categories}
			_, v, err := prompt.Run()
			if err != nil {
				return err
			}
			p.Category = v
		case "expectedScoreFrom", "expectedScoreTo":
			prompt := promptui.Prompt{Label: field, Validate: validateScore}
			v, err := prompt.Run()
			if err != nil {
				return err
			}
			n, _ := strconv.Atoi(strings.TrimSpace(v))
			if field == "expectedScoreFrom" {
				p.ExpectedScoreFrom = catalog.NumberOf(n)
			} else {
				p.ExpectedScoreTo = catalog.NumberOf(n)
			}
		default:
			prompt := promptui.Prompt{Label: field, Validate: validateRequired}
			v, err := prompt.Run()
			if err != nil {
				return err
			}
			v = strings.TrimSpace(v)
			switch field {
			case "fullName":
				p.FullName = v
			case "batchName":
				p.BatchName = v
			case "domicile":
				p.Domicile = v
			}
		}
	}

	return nil
}

func validateRequired(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("value is required")
	}
	return nil
}

func validateScore(input string) error {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return errors.New("score must be a whole number")
	}
	if n <= 0 || n > 720 {
		return errors.New("score must be between 1 and 720")
	}
	return nil
}

func printProfile(p *catalog.UserProfile) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		fmt.Printf("%+v\n", *p)
	} else {
		fmt.Println(string(data))
	}

	if missing := profile.Missing(p); len(missing) > 0 {
		fmt.Printf("missing: %s\n", strings.Join(missing, ", "))
	}
}
