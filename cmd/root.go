package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DefiantLabs/pricefeeds-indexer/config"
	"github.com/DefiantLabs/pricefeeds-indexer/db"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

const envPrefix = "PRICEFEEDS"

var (
	cfgFile string // config file location to load
	rootCmd = &cobra.Command{
		Use:   "pricefeeds-indexer",
		Short: "A CLI tool for the PriceFeeds contract messages and their on-chain history",
		Long: `pricefeeds-indexer encodes, decodes and validates the messages of the PriceFeeds CosmWasm
		contract, and indexes the contract's execute messages from the chain into a database for querying.`,
	}
	viperConf = viper.New()
)

func GetRootCmd() *cobra.Command {
	return rootCmd
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(getViperConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file location (default is <CWD>/config.toml)")
}

// getViperConfig loads config.toml from --config, the working dir or ~/.pricefeeds-indexer.
// PRICEFEEDS_<SECTION>_<KEY> environment variables override the file, e.g. PRICEFEEDS_DATABASE_PASSWORD.
func getViperConfig() {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		v.SetConfigType("toml")
	} else {
		pwd, err := os.Getwd()
		if err != nil {
			log.Fatalf("Could not determine current working dir. Err: %v", err)
		}
		if _, err := os.Stat(filepath.Join(pwd, "config.toml")); err == nil {
			cfgFile = pwd
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				log.Fatalf("Failed to find user home dir. Err: %v", err)
			}
			cfgFile = filepath.Join(home, ".pricefeeds-indexer")
		}
		v.AddConfigPath(cfgFile)
		v.SetConfigType("toml")
		v.SetConfigName("config")
	}

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		log.Println("CFG successfully read from: ", v.ConfigFileUsed())
	case errors.As(err, &notFound):
		// flags and environment only
	case strings.Contains(err.Error(), "incomplete number"):
		log.Fatalf("Failed to read config file %v. This usually means you forgot to wrap a string in quotes.", err)
	default:
		log.Fatalf("Failed to read config file. Err: %v", err)
	}

	viperConf = v
}

// bindFlags sets every flag not given on the command line from the config file or environment.
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.IsSet(f.Name) {
			return
		}

		val := v.Get(f.Name)
		if list, ok := val.([]interface{}); ok {
			for _, item := range list {
				if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", item)); err != nil {
					log.Fatalf("Failed to bind config file value %v. Err: %v", f.Name, err)
				}
			}
			return
		}

		if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
			log.Fatalf("Failed to bind config file value %v. Err: %v", f.Name, err)
		}
	})
}

func setupLogger(logLevel string, logPath string, prettyLogging bool) {
	err := config.DoConfigureLogger(logPath, logLevel, prettyLogging)
	if err != nil {
		log.Fatalf("Failed to configure the logger. Err: %v", err)
	}
}

func connectToDBAndMigrate(dbConfig config.Database) (*gorm.DB, error) {
	database, err := db.PostgresDbConnect(dbConfig.Host, dbConfig.Port, dbConfig.Database, dbConfig.User, dbConfig.Password, strings.ToLower(dbConfig.LogLevel))
	if err != nil {
		return nil, err
	}

	sqldb, err := database.DB()
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxIdleConns(10)
	sqldb.SetMaxOpenConns(100)
	sqldb.SetConnMaxLifetime(time.Hour)

	if err := db.MigrateModels(database); err != nil {
		config.Log.Error("Error running DB migrations", err)
		return nil, err
	}

	return database, nil
}
