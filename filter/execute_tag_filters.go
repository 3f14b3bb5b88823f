package filter

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/DefiantLabs/pricefeeds-indexer/cosmwasm/modules/pricefeeds"
)

// ExecuteTagFilter decides which PriceFeeds execute messages get indexed, by variant tag.
type ExecuteTagFilter interface {
	ExecuteTagMatches(ExecuteTagData) (bool, error)
	Ignore() bool
	Valid() (bool, error)
}

type ExecuteTagData struct {
	ExecuteTag string
}

type DefaultExecuteTagFilter struct {
	ExecuteTag string `json:"execute_tag"`
}

type ExecuteTagRegexFilter struct {
	ExecuteTagRegexPattern string `json:"execute_tag_regex"`
	executeTagRegex        *regexp.Regexp
	ShouldIgnore           bool `json:"should_ignore"`
}

func (f DefaultExecuteTagFilter) ExecuteTagMatches(data ExecuteTagData) (bool, error) {
	return data.ExecuteTag == f.ExecuteTag, nil
}

func (f ExecuteTagRegexFilter) ExecuteTagMatches(data ExecuteTagData) (bool, error) {
	if f.executeTagRegex == nil {
		return false, errors.New("ExecuteTagRegexFilter used before its pattern was compiled")
	}
	return f.executeTagRegex.MatchString(data.ExecuteTag), nil
}

func (f DefaultExecuteTagFilter) Ignore() bool {
	return false
}

func (f DefaultExecuteTagFilter) Valid() (bool, error) {
	if f.ExecuteTag == "" {
		return false, errors.New("ExecuteTag must be set")
	}

	if !pricefeeds.IsExecuteTag(f.ExecuteTag) {
		return false, fmt.Errorf("unknown execute tag %q", f.ExecuteTag)
	}

	return true, nil
}

func (f ExecuteTagRegexFilter) Valid() (bool, error) {
	if f.executeTagRegex != nil && f.ExecuteTagRegexPattern != "" {
		return true, nil
	}

	return false, errors.New("ExecuteTagRegexPattern must be set")
}

func (f ExecuteTagRegexFilter) Ignore() bool {
	return f.ShouldIgnore
}

func NewDefaultExecuteTagFilter(tag string) DefaultExecuteTagFilter {
	return DefaultExecuteTagFilter{ExecuteTag: tag}
}

func NewRegexExecuteTagFilter(executeTagRegexPattern string, shouldIgnore bool) (ExecuteTagRegexFilter, error) {
	executeTagRegex, err := regexp.Compile(executeTagRegexPattern)
	if err != nil {
		return ExecuteTagRegexFilter{}, fmt.Errorf("error compiling execute tag regex: %s", err)
	}

	return ExecuteTagRegexFilter{
		ExecuteTagRegexPattern: executeTagRegexPattern,
		executeTagRegex:        executeTagRegex,
		ShouldIgnore:           shouldIgnore,
	}, nil
}

// ShouldIndex applies the filters to a tag. With no filters everything is indexed. An ignore filter
// that matches always wins, otherwise at least one include filter has to match.
func ShouldIndex(tag string, filters []ExecuteTagFilter) (bool, error) {
	if len(filters) == 0 {
		return true, nil
	}

	data := ExecuteTagData{ExecuteTag: tag}
	hasInclude := false
	included := false

	for _, f := range filters {
		matches, err := f.ExecuteTagMatches(data)
		if err != nil {
			return false, err
		}

		if f.Ignore() {
			if matches {
				return false, nil
			}
			continue
		}

		hasInclude = true
		if matches {
			included = true
		}
	}

	return included || !hasInclude, nil
}
