package config

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type IndexConfigTestSuite struct {
	suite.Suite
}

func (suite *IndexConfigTestSuite) validConfig() IndexConfig {
	return IndexConfig{
		// Setup valid configs for everything but base, these are tested elsewhere
		Database: Database{
			Host:     "fake-host",
			Port:     "5432",
			Database: "fake-database",
			User:     "fake-user",
			Password: "fake-password",
			LogLevel: "info",
		},
		Log: log{
			Level:  "info",
			Path:   "",
			Pretty: false,
		},
		LCD: LCD{
			API:           "http://localhost:1317",
			Contract:      testContractAddress("osmo"),
			AccountPrefix: "osmo",
		},
	}
}

func (suite *IndexConfigTestSuite) TestIndexConfig() {
	conf := suite.validConfig()

	err := conf.Validate()
	suite.Require().Error(err)

	conf.Base.PageLimit = 500
	err = conf.Validate()
	suite.Require().Error(err)

	conf.Base.PageLimit = 50
	conf.Base.StartOffset = -2
	err = conf.Validate()
	suite.Require().Error(err)

	conf.Base.StartOffset = -1
	err = conf.Validate()
	suite.Require().Error(err)

	conf.Base.PollInterval = 6
	err = conf.Validate()
	suite.Require().NoError(err)

	conf.Redis.DB = -1
	err = conf.Validate()
	suite.Require().Error(err)
}

func (suite *IndexConfigTestSuite) TestDryRunSkipsDatabase() {
	conf := suite.validConfig()
	conf.Database = Database{}
	conf.Base.PageLimit = 10
	conf.Base.ExitWhenCaughtUp = true

	suite.Require().Error(conf.Validate())

	conf.Base.Dry = true
	suite.Require().NoError(conf.Validate())
}

func (suite *IndexConfigTestSuite) TestCheckSuperfluousIndexKeys() {
	keys := []string{
		"fake-key",
	}
	validKeys := CheckSuperfluousIndexKeys(keys)
	suite.Require().Len(validKeys, 1)

	keys = append(keys, "base.start-offset", "base.throttling", "base.request-retry-attempts", "lcd.contract", "redis.addr")

	validKeys = CheckSuperfluousIndexKeys(keys)
	suite.Require().Len(validKeys, 1)
}

func (suite *IndexConfigTestSuite) TestQueryConfig() {
	conf := QueryConfig{
		Database: suite.validConfig().Database,
		Base:     queryBase{Format: "xml", Source: SourceDB, Limit: 10},
	}

	suite.Require().Error(conf.Validate())

	conf.Base.Format = "csv"
	suite.Require().Error(conf.Validate())

	conf.LCD.Contract = testContractAddress("osmo")
	suite.Require().NoError(conf.Validate())

	conf.Base.Symbols = []string{" "}
	suite.Require().Error(conf.Validate())

	conf.Base.Symbols = []string{"BTC/USD"}
	conf.Base.Source = SourceChain
	suite.Require().Error(conf.Validate())

	conf.LCD.API = "http://localhost:1317"
	suite.Require().NoError(conf.Validate())

	conf.Base.Limit = 0
	suite.Require().Error(conf.Validate())
	conf.Base.Limit = 10

	conf.Base.Source = "cache"
	suite.Require().Error(conf.Validate())

	suite.Require().Equal([]string{"fake-key"}, CheckSuperfluousQueryKeys([]string{"fake-key", "base.format", "lcd.api"}))
}

func TestIndexConfig(t *testing.T) {
	suite.Run(t, new(IndexConfigTestSuite))
}
