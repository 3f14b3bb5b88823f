package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strings"

	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/wasm"
	"github.com/DefiantLabs/pricefeeds-indexer/util"
	"github.com/spf13/cobra"
)

// These configs are used across multiple commands, and are not specific to a single command
type log struct {
	Level  string
	Path   string
	Pretty bool
}

type Database struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
	LogLevel string `mapstructure:"log-level"`
}

// DSN is the connection string for clients that do not go through gorm.
func (d Database) DSN() string {
	dsn := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Database,
		RawQuery: "sslmode=disable",
	}
	return dsn.String()
}

// LCD is the REST endpoint of the chain and the PriceFeeds contract deployed on it.
type LCD struct {
	API           string
	Contract      string
	AccountPrefix string `mapstructure:"account-prefix"`
}

// Redis is optional, an empty address disables the latest price cache.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

type throttlingBase struct {
	Throttling float64 `mapstructure:"throttling"`
}

type retryBase struct {
	RequestRetryAttempts uint64 `mapstructure:"request-retry-attempts"`
	RequestRetryMaxWait  uint64 `mapstructure:"request-retry-max-wait"`
}

func SetupLogFlags(logConf *log, cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&logConf.Level, "log.level", "info", "log level")
	cmd.PersistentFlags().BoolVar(&logConf.Pretty, "log.pretty", false, "pretty logs")
	cmd.PersistentFlags().StringVar(&logConf.Path, "log.path", "", "log path (default is $HOME/.pricefeeds-indexer/logs.txt")
}

func SetupDatabaseFlags(databaseConf *Database, cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&databaseConf.Host, "database.host", "", "database host")
	cmd.PersistentFlags().StringVar(&databaseConf.Port, "database.port", "5432", "database port")
	cmd.PersistentFlags().StringVar(&databaseConf.Database, "database.database", "", "database name")
	cmd.PersistentFlags().StringVar(&databaseConf.User, "database.user", "", "database user")
	cmd.PersistentFlags().StringVar(&databaseConf.Password, "database.password", "", "database password")
	cmd.PersistentFlags().StringVar(&databaseConf.LogLevel, "database.log-level", "", "database loglevel")
}

func SetupLCDFlags(lcdConf *LCD, cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&lcdConf.API, "lcd.api", "", "node LCD (REST) endpoint")
	cmd.PersistentFlags().StringVar(&lcdConf.Contract, "lcd.contract", "", "address of the PriceFeeds contract")
	cmd.PersistentFlags().StringVar(&lcdConf.AccountPrefix, "lcd.account-prefix", "", "bech32 prefix of the chain's addresses")
}

func SetupRedisFlags(redisConf *Redis, cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&redisConf.Addr, "redis.addr", "", "redis address, leave empty to disable caching")
	cmd.PersistentFlags().StringVar(&redisConf.Password, "redis.password", "", "redis password")
	cmd.PersistentFlags().IntVar(&redisConf.DB, "redis.db", 0, "redis database")
}

func SetupThrottlingFlag(throttlingValue *float64, cmd *cobra.Command) {
	cmd.PersistentFlags().Float64Var(throttlingValue, "base.throttling", 0.5, "throttle delay")
}

func SetupRetryFlags(retryConf *retryBase, cmd *cobra.Command) {
	cmd.PersistentFlags().Uint64Var(&retryConf.RequestRetryAttempts, "base.request-retry-attempts", 0, "number of LCD query retries to make")
	cmd.PersistentFlags().Uint64Var(&retryConf.RequestRetryMaxWait, "base.request-retry-max-wait", 30, "max retry incremental backoff wait time in seconds")
}

func validateDatabaseConf(dbConf Database) error {
	if util.StrNotSet(dbConf.Host) {
		return errors.New("database host must be set")
	}
	if util.StrNotSet(dbConf.Port) {
		return errors.New("database port must be set")
	}
	if util.StrNotSet(dbConf.Database) {
		return errors.New("database name (i.e. database) must be set")
	}
	if util.StrNotSet(dbConf.User) {
		return errors.New("database user must be set")
	}
	if util.StrNotSet(dbConf.Password) {
		return errors.New("database password must be set")
	}

	return nil
}

func validateLCDConf(lcdConf LCD) (LCD, error) {
	if util.StrNotSet(lcdConf.API) {
		return lcdConf, errors.New("lcd api must be set")
	}
	lcdConf.API = strings.TrimSuffix(lcdConf.API, "/")

	// add port if not set
	if strings.Count(lcdConf.API, ":") != 2 {
		if strings.HasPrefix(lcdConf.API, "https:") {
			lcdConf.API = fmt.Sprintf("%s:443", lcdConf.API)
		} else if strings.HasPrefix(lcdConf.API, "http:") {
			lcdConf.API = fmt.Sprintf("%s:80", lcdConf.API)
		}
	}

	if util.StrNotSet(lcdConf.Contract) {
		return lcdConf, errors.New("lcd contract must be set")
	}
	if err := wasm.ValidateAddress(lcdConf.Contract, lcdConf.AccountPrefix); err != nil {
		return lcdConf, fmt.Errorf("lcd contract: %w", err)
	}

	return lcdConf, nil
}

func validateRedisConf(redisConf Redis) error {
	if redisConf.DB < 0 {
		return errors.New("redis db must be 0 or greater")
	}
	return nil
}

func validateThrottlingConf(throttlingConf throttlingBase) error {
	if throttlingConf.Throttling < 0 {
		return errors.New("throttling must be a positive number or 0")
	}
	return nil
}

// Reads the Viper mapstructure tag to get the valid keys for a given config struct
func getValidConfigKeys(section any, baseName string) (keys []string) {
	v := reflect.ValueOf(section)
	typeOfS := v.Type()

	if baseName == "" {
		baseName = strings.ToLower(typeOfS.Name())
	}

	for i := 0; i < v.NumField(); i++ {
		field := typeOfS.Field(i)

		// Embedded config structs are expanded by their own getValidConfigKeys call
		if !strings.HasPrefix(field.Type.String(), "config.") {
			name := field.Tag.Get("mapstructure")
			if name == "" {
				name = field.Name
			}

			key := fmt.Sprintf("%v.%v", baseName, strings.ReplaceAll(strings.ToLower(name), " ", ""))
			keys = append(keys, key)
		}
	}
	return
}

func addConfigKeys(validKeys map[string]struct{}, section any, baseName string) {
	for _, key := range getValidConfigKeys(section, baseName) {
		validKeys[key] = struct{}{}
	}
}

func addDatabaseConfigKeys(validKeys map[string]struct{}) {
	addConfigKeys(validKeys, Database{}, "")
}

func addLogConfigKeys(validKeys map[string]struct{}) {
	addConfigKeys(validKeys, log{}, "")
}

func addLCDConfigKeys(validKeys map[string]struct{}) {
	addConfigKeys(validKeys, LCD{}, "")
}

func addRedisConfigKeys(validKeys map[string]struct{}) {
	addConfigKeys(validKeys, Redis{}, "")
}

func ignoredKeys(keys []string, validKeys map[string]struct{}) []string {
	ignored := make([]string, 0)
	for _, key := range keys {
		if _, ok := validKeys[key]; !ok {
			ignored = append(ignored, key)
		}
	}
	return ignored
}
