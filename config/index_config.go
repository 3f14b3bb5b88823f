package config

import (
	"errors"

	"github.com/spf13/cobra"
)

// Max page size the LCD tx search accepts.
const MaxPageLimit = 100

type IndexConfig struct {
	Database           Database
	ConfigFileLocation string
	Base               indexBase
	Log                log
	LCD                LCD
	Redis              Redis
}

type indexBase struct {
	throttlingBase
	retryBase
	StartOffset      int64  `mapstructure:"start-offset"`
	PageLimit        uint64 `mapstructure:"page-limit"`
	FilterFile       string `mapstructure:"filter-file"`
	FeeDenom         string `mapstructure:"fee-denom"`
	Dry              bool   `mapstructure:"dry"`
	ExitWhenCaughtUp bool   `mapstructure:"exit-when-caught-up"`
	PollInterval     int64  `mapstructure:"poll-interval"`
}

func SetupIndexSpecificFlags(conf *IndexConfig, cmd *cobra.Command) {
	cmd.PersistentFlags().Int64Var(&conf.Base.StartOffset, "base.start-offset", -1, "tx search offset to start indexing at (use -1 to resume from the highest offset indexed)")
	cmd.PersistentFlags().Uint64Var(&conf.Base.PageLimit, "base.page-limit", 50, "txs fetched per LCD request")
	cmd.PersistentFlags().StringVar(&conf.Base.FilterFile, "base.filter-file", "", "path to a JSON file of execute tag filters")
	cmd.PersistentFlags().StringVar(&conf.Base.FeeDenom, "base.fee-denom", "", "denom the contract was instantiated with, request fees are read in it (empty takes the single coin attached)")
	cmd.PersistentFlags().BoolVar(&conf.Base.Dry, "base.dry", false, "decode the contract txs but don't insert data in the DB.")
	cmd.PersistentFlags().BoolVar(&conf.Base.ExitWhenCaughtUp, "base.exit-when-caught-up", true, "exit once every tx found by the search is indexed")
	cmd.PersistentFlags().Int64Var(&conf.Base.PollInterval, "base.poll-interval", 6, "seconds to wait for new txs when caught up")
	SetupRetryFlags(&conf.Base.retryBase, cmd)
}

func (conf *IndexConfig) Validate() error {
	if !conf.Base.Dry {
		err := validateDatabaseConf(conf.Database)
		if err != nil {
			return err
		}
	}

	lcdConf, err := validateLCDConf(conf.LCD)
	if err != nil {
		return err
	}
	conf.LCD = lcdConf

	err = validateRedisConf(conf.Redis)
	if err != nil {
		return err
	}

	err = validateThrottlingConf(conf.Base.throttlingBase)
	if err != nil {
		return err
	}

	if conf.Base.StartOffset < -1 {
		return errors.New("base.start-offset must be 0 or greater, or -1 to resume")
	}

	if conf.Base.PageLimit == 0 || conf.Base.PageLimit > MaxPageLimit {
		return errors.New("base.page-limit must be between 1 and 100")
	}

	if !conf.Base.ExitWhenCaughtUp && conf.Base.PollInterval <= 0 {
		return errors.New("base.poll-interval must be greater than 0 when exit-when-caught-up is disabled")
	}

	return nil
}

func CheckSuperfluousIndexKeys(keys []string) []string {
	validKeys := make(map[string]struct{})

	addDatabaseConfigKeys(validKeys)
	addLogConfigKeys(validKeys)
	addLCDConfigKeys(validKeys)
	addRedisConfigKeys(validKeys)

	// add base keys
	addConfigKeys(validKeys, indexBase{}, "base")
	addConfigKeys(validKeys, throttlingBase{}, "base")
	addConfigKeys(validKeys, retryBase{}, "base")

	return ignoredKeys(keys, validKeys)
}
