package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/DefiantLabs/pricefeeds-indexer/filter"
	"github.com/stretchr/testify/suite"
)

type FilterConfigTestSuite struct {
	suite.Suite
}

func (suite *FilterConfigTestSuite) TestParseJSONFilterConfig() {
	conf := executeTagFilterConfigs{}

	invalidTag, err := getMockExecuteTagBytes("")
	suite.Require().NoError(err)

	conf.ExecuteTagFilters = []json.RawMessage{invalidTag}
	confBytes, err := json.Marshal(conf)
	suite.Require().NoError(err)

	_, err = ParseJSONFilterConfig(confBytes)
	suite.Require().Error(err)

	unknownTag, err := getMockExecuteTagBytes("delete_price")
	suite.Require().NoError(err)

	conf.ExecuteTagFilters = []json.RawMessage{unknownTag}
	confBytes, err = json.Marshal(conf)
	suite.Require().NoError(err)

	_, err = ParseJSONFilterConfig(confBytes)
	suite.Require().Error(err)

	validTag, err := getMockExecuteTagBytes("publish_price")
	suite.Require().NoError(err)

	conf.ExecuteTagFilters = []json.RawMessage{
		validTag,
		json.RawMessage(`{"type":"execute_tag_regex","execute_tag_regex":"^receive_","should_ignore":true}`),
	}
	confBytes, err = json.Marshal(conf)
	suite.Require().NoError(err)

	filters, err := ParseJSONFilterConfig(confBytes)
	suite.Require().NoError(err)
	suite.Require().Len(filters, 2)

	matches, err := filters[0].ExecuteTagMatches(filter.ExecuteTagData{ExecuteTag: "publish_price"})
	suite.Require().NoError(err)
	suite.Require().True(matches)
	suite.Require().False(filters[0].Ignore())

	matches, err = filters[1].ExecuteTagMatches(filter.ExecuteTagData{ExecuteTag: "receive_prices"})
	suite.Require().NoError(err)
	suite.Require().True(matches)
	suite.Require().True(filters[1].Ignore())
}

func (suite *FilterConfigTestSuite) TestParseJSONFilterConfigErrors() {
	for _, input := range []string{
		`{"execute_tag_filters":[{"execute_tag":"publish_price"}]}`,
		`{"execute_tag_filters":[{"type":"message_type","message_type":"/cosmos.bank.v1beta1.MsgSend"}]}`,
		`{"execute_tag_filters":[{"type":"execute_tag_regex","execute_tag_regex":"(["}]}`,
		`{"execute_tag_filters":[{"type":"execute_tag_regex"}]}`,
		`[`,
	} {
		_, err := ParseJSONFilterConfig([]byte(input))
		suite.Require().Error(err, input)
	}

	filters, err := ParseJSONFilterConfig([]byte(`{}`))
	suite.Require().NoError(err)
	suite.Require().Empty(filters)
}

func (suite *FilterConfigTestSuite) TestLoadFilterFile() {
	filters, err := LoadFilterFile("")
	suite.Require().NoError(err)
	suite.Require().Nil(filters)

	path := filepath.Join(suite.T().TempDir(), "filters.json")
	suite.Require().NoError(os.WriteFile(path, []byte(`{"execute_tag_filters":[{"type":"execute_tag","execute_tag":"change_admin"}]}`), 0o600))

	filters, err = LoadFilterFile(path)
	suite.Require().NoError(err)
	suite.Require().Len(filters, 1)

	_, err = LoadFilterFile(filepath.Join(suite.T().TempDir(), "missing.json"))
	suite.Require().Error(err)
}

func getMockExecuteTagBytes(tag string) (json.RawMessage, error) {
	mockExecuteTag := make(map[string]any)

	mockExecuteTag["type"] = "execute_tag"
	if tag != "" {
		mockExecuteTag["execute_tag"] = tag
	}

	return json.Marshal(mockExecuteTag)
}

func TestFilterConfigTestSuite(t *testing.T) {
	suite.Run(t, new(FilterConfigTestSuite))
}
