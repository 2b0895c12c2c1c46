// Package tenancy reads empirical tenancy distributions from delimited input.
package tenancy

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/occupancy-sim/sim"
)

// ReadOptions controls how rows are parsed.
type ReadOptions struct {
	Comma     rune // field delimiter; 0 means ','
	HasHeader bool // skip the first row
}

// DefaultReadOptions skips a header row and splits on commas.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{Comma: ',', HasHeader: true}
}

// Table is a parsed tenancy distribution plus the largest duration seen.
type Table struct {
	Distribution sim.TenancyDistribution
	MaxDuration  int64
}

// Read parses (duration, weight) rows from r, one bucket per row, in input
// order. Lines starting with '#' are ignored and fields are trimmed.
// Any unparseable row aborts the read with an error wrapping
// sim.ErrMalformedRecord; no partial table is returned.
// An input with no data rows yields an empty table: rejecting it is the
// sampler's job.
func Read(r io.Reader, opts ReadOptions) (*Table, error) {
	reader := csv.NewReader(r)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.Comment = '#'
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	table := &Table{}
	seen := make(map[int64]int)
	zeroWeight := 0
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("%w: line %d: %v", sim.ErrMalformedRecord, parseErr.Line, parseErr.Err)
			}
			return nil, fmt.Errorf("reading tenancy input: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if first && opts.HasHeader {
			first = false
			continue
		}
		first = false

		bucket, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", sim.ErrMalformedRecord, line, err)
		}
		if prev, ok := seen[bucket.Duration]; ok {
			logrus.Warnf("tenancy duration %d repeated on line %d (first on line %d); rows are kept as separate buckets",
				bucket.Duration, line, prev)
		} else {
			seen[bucket.Duration] = line
		}
		if bucket.Weight == 0 {
			zeroWeight++
		}
		table.Distribution = append(table.Distribution, bucket)
		table.MaxDuration = max(table.MaxDuration, bucket.Duration)
	}
	if zeroWeight > 0 {
		logrus.Warnf("%d tenancy rows have zero weight and will never be drawn", zeroWeight)
	}
	return table, nil
}

// ReadFile opens path and parses it with Read. A path of "-" reads stdin.
func ReadFile(path string, opts ReadOptions) (*Table, error) {
	if path == "-" {
		return Read(os.Stdin, opts)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening tenancy input: %w", err)
	}
	defer func() { _ = file.Close() }()
	return Read(file, opts)
}

func parseRow(record []string) (sim.TenancyBucket, error) {
	durStr := strings.TrimSpace(record[0])
	weightStr := strings.TrimSpace(record[1])
	duration, err := strconv.ParseInt(durStr, 10, 64)
	if err != nil {
		return sim.TenancyBucket{}, fmt.Errorf("invalid duration %q: %w", durStr, err)
	}
	if duration < 0 {
		return sim.TenancyBucket{}, fmt.Errorf("invalid duration %d: must be non-negative", duration)
	}
	weight, err := strconv.ParseFloat(weightStr, 64)
	if err != nil {
		return sim.TenancyBucket{}, fmt.Errorf("invalid weight %q for duration %d: %w", weightStr, duration, err)
	}
	return sim.TenancyBucket{Duration: duration, Weight: weight}, nil
}
