package config

import (
	"fmt"
	"strings"

	"github.com/DefiantLabs/pricefeeds-indexer/util"
	"github.com/spf13/cobra"
)

const (
	SourceDB    = "db"
	SourceChain = "chain"
)

var (
	ValidFormats = []string{"json", "csv"}
	validSources = []string{SourceDB, SourceChain}
)

type QueryConfig struct {
	Database Database
	Log      log
	LCD      LCD
	Redis    Redis
	Base     queryBase
}

type queryBase struct {
	retryBase
	Format  string   `mapstructure:"format"`
	Source  string   `mapstructure:"source"`
	Symbols []string `mapstructure:"symbols"`
	Output  string   `mapstructure:"output"`
	Limit   int64    `mapstructure:"limit"`
}

func SetupQuerySpecificFlags(conf *QueryConfig, cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&conf.Base.Format, "format", ValidFormats[0], fmt.Sprintf("The format to output (%s)", strings.Join(ValidFormats, ", ")))
	cmd.PersistentFlags().StringVar(&conf.Base.Source, "source", SourceDB, "Where to answer from: the index (db) or a smart query against the contract (chain)")
	cmd.PersistentFlags().StringSliceVar(&conf.Base.Symbols, "symbol", nil, "A comma separated list of the symbol(s) to export. (Both '--symbol BTC/USD,ETH/USD' and '--symbol BTC/USD --symbol ETH/USD' are valid)")
	cmd.PersistentFlags().StringVar(&conf.Base.Output, "output", "", "File to write to (default is stdout)")
	cmd.PersistentFlags().Int64Var(&conf.Base.Limit, "limit", 100, "Max rows returned by the history and requests queries")
	SetupRetryFlags(&conf.Base.retryBase, cmd)
}

func (conf *QueryConfig) Validate() error {
	if !contains(ValidFormats, conf.Base.Format) {
		return fmt.Errorf("invalid format %s, valid formats are %s", conf.Base.Format, ValidFormats)
	}

	if !contains(validSources, conf.Base.Source) {
		return fmt.Errorf("invalid source %s, valid sources are %s", conf.Base.Source, validSources)
	}

	switch conf.Base.Source {
	case SourceDB:
		if err := validateDatabaseConf(conf.Database); err != nil {
			return err
		}
		if conf.LCD.Contract == "" {
			return fmt.Errorf("lcd contract must be set to pick the contract in the index")
		}
	case SourceChain:
		lcdConf, err := validateLCDConf(conf.LCD)
		if err != nil {
			return err
		}
		conf.LCD = lcdConf
	}

	if conf.Base.Limit <= 0 {
		return fmt.Errorf("invalid limit %d, limit must be greater than 0", conf.Base.Limit)
	}

	if err := validateRedisConf(conf.Redis); err != nil {
		return err
	}

	for _, symbol := range conf.Base.Symbols {
		if strings.Contains(symbol, ",") {
			return fmt.Errorf("invalid symbol %s, symbols cannot contain commas", symbol)
		} else if strings.TrimSpace(symbol) == "" {
			return fmt.Errorf("invalid symbol '%v', symbols cannot be blank", symbol)
		}
	}
	conf.Base.Symbols = util.RemoveDuplicatesFromStringSlice(conf.Base.Symbols)

	return nil
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func CheckSuperfluousQueryKeys(keys []string) []string {
	validKeys := make(map[string]struct{})

	addDatabaseConfigKeys(validKeys)
	addLogConfigKeys(validKeys)
	addLCDConfigKeys(validKeys)
	addRedisConfigKeys(validKeys)

	// add base keys
	addConfigKeys(validKeys, queryBase{}, "base")
	addConfigKeys(validKeys, retryBase{}, "base")

	return ignoredKeys(keys, validKeys)
}
