package cleaner

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformedRow is returned when a CSV row is not a "word,count" pair.
var ErrMalformedRow = errors.New("malformed frequency row: expected word,count")

// Denylist is a set of words to remove.
type Denylist map[string]struct{}

// Contains reports whether word is on the denylist.
func (d Denylist) Contains(word string) bool {
	_, ok := d[word]
	return ok
}

// Words returns the denylisted words in no particular order.
func (d Denylist) Words() []string {
	words := make([]string, 0, len(d))
	for w := range d {
		words = append(words, w)
	}
	return words
}

// LoadDenylist reads one word per line. Lines are trimmed and blank lines ignored.
// Matching is exact: no case folding is applied.
func LoadDenylist(r io.Reader) (Denylist, error) {
	deny := make(Denylist)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		deny[word] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read denylist: %w", err)
	}
	return deny, nil
}

// Removal is a row dropped by Filter.
type Removal struct {
	Word  string
	Count int
}

// Result summarizes a Filter run.
type Result struct {
	// Kept is the number of rows written.
	Kept int

	// Removed lists the dropped rows in input order.
	Removed []Removal
}

// Filter copies the word,count rows of r to w, dropping rows whose word is in deny.
// Extra columns are preserved on kept rows.
func Filter(r io.Reader, w io.Writer, deny Denylist) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	writer := csv.NewWriter(w)
	result := &Result{}

	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read frequency CSV: %w", err)
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("%w: line %d", ErrMalformedRow, line)
		}

		if deny.Contains(record[0]) {
			count, err := strconv.Atoi(strings.TrimSpace(record[1]))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %q is not a count", ErrMalformedRow, line, record[1])
			}
			result.Removed = append(result.Removed, Removal{Word: record[0], Count: count})
			continue
		}

		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write frequency CSV: %w", err)
		}
		result.Kept++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to write frequency CSV: %w", err)
	}

	return result, nil
}
