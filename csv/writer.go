package csv

import (
	"bytes"
	"encoding/csv"

	"github.com/DefiantLabs/pricefeeds-indexer/config"
)

type Row interface {
	GetRowForCsv() []string
}

// Create the CSV and write it to byte buffer
func ToCsv[T Row](rows []T, headers []string) (bytes.Buffer, error) {
	var b bytes.Buffer
	w := csv.NewWriter(&b)

	if err := w.Write(headers); err != nil {
		config.Log.Error("Error writing header to csv", err)
		return b, err
	}

	for _, row := range rows {
		if err := w.Write(row.GetRowForCsv()); err != nil {
			config.Log.Error("Error writing row to csv", err)
			return b, err
		}
	}

	// Write any buffered data to the underlying writer
	w.Flush()

	if err := w.Error(); err != nil {
		config.Log.Error("Error flushing csv", err)
		return b, err
	}

	return b, nil
}
