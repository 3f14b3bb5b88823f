package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/DefiantLabs/pricefeeds-indexer/filter"
)

const (
	filterTypeExecuteTag      = "execute_tag"
	filterTypeExecuteTagRegex = "execute_tag_regex"
)

type executeTagFilterConfigs struct {
	ExecuteTagFilters []json.RawMessage `json:"execute_tag_filters"`
}

type ExecuteTagFilterConfig struct {
	Type string `json:"type"`
}

type executeTagRegexFilterConfig struct {
	Pattern      string `json:"execute_tag_regex"`
	ShouldIgnore bool   `json:"should_ignore"`
}

// ParseJSONFilterConfig reads
//
//	{"execute_tag_filters": [
//		{"type": "execute_tag", "execute_tag": "publish_price"},
//		{"type": "execute_tag_regex", "execute_tag_regex": "^receive_", "should_ignore": true}
//	]}
func ParseJSONFilterConfig(configJSON []byte) ([]filter.ExecuteTagFilter, error) {
	config := executeTagFilterConfigs{}
	err := json.Unmarshal(configJSON, &config)
	if err != nil {
		return nil, err
	}

	filters := []filter.ExecuteTagFilter{}
	for index, rawFilter := range config.ExecuteTagFilters {
		parsedFilter, err := parseExecuteTagFilter(rawFilter)
		if err != nil {
			return nil, fmt.Errorf("error parsing execute_tag_filters at index %d: %s", index, err)
		}

		valid, err := parsedFilter.Valid()
		if !valid || err != nil {
			return nil, fmt.Errorf("error parsing execute_tag_filters at index %d: %s", index, err)
		}

		filters = append(filters, parsedFilter)
	}

	return filters, nil
}

// LoadFilterFile parses the filter file at path. An empty path means no filters.
func LoadFilterFile(path string) ([]filter.ExecuteTagFilter, error) {
	if path == "" {
		return nil, nil
	}

	configJSON, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading filter file %s: %w", path, err)
	}

	return ParseJSONFilterConfig(configJSON)
}

func parseExecuteTagFilter(rawFilter json.RawMessage) (filter.ExecuteTagFilter, error) {
	newFilter := ExecuteTagFilterConfig{}
	if err := json.Unmarshal(rawFilter, &newFilter); err != nil {
		return nil, err
	}

	if err := validateExecuteTagFilterConfig(newFilter); err != nil {
		return nil, err
	}

	switch newFilter.Type {
	case filterTypeExecuteTag:
		parsed := filter.DefaultExecuteTagFilter{}
		if err := json.Unmarshal(rawFilter, &parsed); err != nil {
			return nil, err
		}
		return parsed, nil
	case filterTypeExecuteTagRegex:
		parsed := executeTagRegexFilterConfig{}
		if err := json.Unmarshal(rawFilter, &parsed); err != nil {
			return nil, err
		}
		return filter.NewRegexExecuteTagFilter(parsed.Pattern, parsed.ShouldIgnore)
	default:
		return nil, fmt.Errorf("unknown filter type \"%s\"", newFilter.Type)
	}
}

func validateExecuteTagFilterConfig(config ExecuteTagFilterConfig) error {
	if config.Type == "" {
		return errors.New("filter config must have a type field")
	}
	return nil
}
