package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/neetwise/listing/internal/catalog"
	"github.com/neetwise/listing/internal/listing"
	"github.com/neetwise/listing/internal/logger"
	"github.com/neetwise/listing/internal/paginator"
)

const (
	app = "neetwise"
)

type Config struct {
	UserID  string         `mapstructure:"user-id"`
	Store   *StoreConfig   `mapstructure:"store"`
	Listing *ListingConfig `mapstructure:"listing"`
}

type StoreConfig struct {
	Driver          string `mapstructure:"driver"`
	SQLitePath      string `mapstructure:"sqlite-path"`
	PostgresURLFile string `mapstructure:"postgres-url-file"`
	RedisURLFile    string `mapstructure:"redis-url-file"`
}

type ListingConfig struct {
	Kind             string        `mapstructure:"kind"`
	PageSize         int           `mapstructure:"page-size"`
	FilteredPageSize int           `mapstructure:"filtered-page-size"`
	LoadMoreDelay    time.Duration `mapstructure:"load-more-delay"`
	NotificationTTL  time.Duration `mapstructure:"notification-ttl"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "neetwise browses NEET college and product listings with profile based eligibility",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"user-id":                 "NEETWISE_USER_ID",
		"store.driver":            "NEETWISE_STORE",
		"store.postgres-url-file": "NEETWISE_POSTGRES_URL_FILE",
		"store.redis-url-file":    "NEETWISE_REDIS_URL_FILE",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is neetwise.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("listing", "l", "", "listing to browse: colleges or products")
	rootCmd.PersistentFlags().String("store", "", "document store: memory, sqlite or postgres")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("listing.kind", rootCmd.PersistentFlags().Lookup("listing"))
	viper.BindPFlag("store.driver", rootCmd.PersistentFlags().Lookup("store"))
}

func setDefaults() {
	viper.SetDefault("store.driver", "sqlite")
	viper.SetDefault("store.sqlite-path", app+".db")
	viper.SetDefault("listing.kind", catalog.Colleges.Name)
	viper.SetDefault("listing.page-size", listing.DefaultPageSize)
	viper.SetDefault("listing.filtered-page-size", paginator.DefaultFilteredPageSize)
	viper.SetDefault("listing.load-more-delay", listing.DefaultLoadMoreDelay)
	viper.SetDefault("listing.notification-ttl", listing.DefaultNotificationTTL)
}

func initConfig() {
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// An explicit config file must parse; the default one is optional.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

// setup builds the logger and reads the config shared by every command.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), zap.String("app", app))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	return logger, config
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Store == nil {
		config.Store = &StoreConfig{}
	}
	if config.Listing == nil {
		config.Listing = &ListingConfig{}
	}

	return config, nil
}

// listingConfig resolves the listing preset and controller tunables.
func (c *Config) listingConfig() (listing.Config, error) {
	preset, err := catalog.ListingByName(c.Listing.Kind)
	if err != nil {
		return listing.Config{}, err
	}

	cfg := listing.DefaultConfig(preset)
	if c.Listing.PageSize > 0 {
		cfg.PageSize = c.Listing.PageSize
	}
	if c.Listing.LoadMoreDelay >= 0 {
		cfg.LoadMoreDelay = c.Listing.LoadMoreDelay
	}
	if c.Listing.NotificationTTL > 0 {
		cfg.NotificationTTL = c.Listing.NotificationTTL
	}

	return cfg, nil
}
