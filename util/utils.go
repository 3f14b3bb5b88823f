package util

import (
	"strconv"
	"time"
)

// StrNotSet will return true if the string value provided is empty
func StrNotSet(value string) bool {
	return len(value) == 0
}

// RemoveDuplicatesFromStringSlice keeps the first occurrence of every value, in order
func RemoveDuplicatesFromStringSlice(sliceList []string) []string {
	allKeys := make(map[string]bool)
	list := []string{}
	for _, item := range sliceList {
		if _, value := allKeys[item]; !value {
			allKeys[item] = true
			list = append(list, item)
		}
	}
	return list
}

// ParseHeight parses the string heights the LCD returns.
func ParseHeight(height string) (int64, error) {
	return strconv.ParseInt(height, 10, 64)
}

// ParseTimestamp parses an LCD tx timestamp into UTC.
func ParseTimestamp(timestamp string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
