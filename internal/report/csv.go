package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/mathglossary/internal/frequency"
)

// WriteFrequencyCSV writes one "key,count" row per entry, in the given order.
// No header row is written, so the file can be fed back to the cleaner.
func WriteFrequencyCSV(w io.Writer, entries []frequency.Entry) error {
	writer := csv.NewWriter(w)
	for _, e := range entries {
		if err := writer.Write([]string{e.Key, strconv.Itoa(e.Count)}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
