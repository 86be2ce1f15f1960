package benchmark

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var perfHeader = []string{"top_tier_size", "run", "duration"}

var accuracyHeader = []string{
	"top_tier_size", "run", "samples",
	"mean_abs_error", "median_abs_error", "mean_abs_percentage_error",
}

// WritePerfCSV writes the measurements with a header row. Floats are written
// in round-tripping precision so resumed sweeps keep old rows bit-exact.
func WritePerfCSV(w io.Writer, results []PerfResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(perfHeader); err != nil {
		return err
	}
	for _, r := range results {
		record := []string{
			strconv.Itoa(r.Size),
			strconv.Itoa(r.Run),
			strconv.FormatFloat(r.Seconds, 'g', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadPerfCSV reads measurements written by WritePerfCSV. An empty input
// yields no results and no error.
func ReadPerfCSV(r io.Reader) ([]PerfResult, error) {
	records, err := readRecords(r, perfHeader)
	if err != nil {
		return nil, err
	}
	results := make([]PerfResult, 0, len(records))
	for i, record := range records {
		size, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad top_tier_size: %w", i+1, err)
		}
		run, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad run: %w", i+1, err)
		}
		seconds, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad duration: %w", i+1, err)
		}
		results = append(results, PerfResult{Size: size, Run: run, Seconds: seconds})
	}
	return results, nil
}

// WriteAccuracyCSV writes the error measurements with a header row.
func WriteAccuracyCSV(w io.Writer, results []AccuracyResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(accuracyHeader); err != nil {
		return err
	}
	for _, r := range results {
		record := []string{
			strconv.Itoa(r.Size),
			strconv.Itoa(r.Run),
			strconv.FormatUint(r.Samples, 10),
			strconv.FormatFloat(r.MeanAbsError, 'g', -1, 64),
			strconv.FormatFloat(r.MedianAbsError, 'g', -1, 64),
			strconv.FormatFloat(r.MeanAbsPercentageError, 'g', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadAccuracyCSV reads measurements written by WriteAccuracyCSV. An empty
// input yields no results and no error.
func ReadAccuracyCSV(r io.Reader) ([]AccuracyResult, error) {
	records, err := readRecords(r, accuracyHeader)
	if err != nil {
		return nil, err
	}
	results := make([]AccuracyResult, 0, len(records))
	for i, record := range records {
		size, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad top_tier_size: %w", i+1, err)
		}
		run, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad run: %w", i+1, err)
		}
		samples, err := strconv.ParseUint(record[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad samples: %w", i+1, err)
		}
		values := make([]float64, 3)
		for j, name := range []string{"mean_abs_error", "median_abs_error", "mean_abs_percentage_error"} {
			values[j], err = strconv.ParseFloat(record[3+j], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: bad %s: %w", i+1, name, err)
			}
		}
		results = append(results, AccuracyResult{
			Size:                   size,
			Run:                    run,
			Samples:                samples,
			MeanAbsError:           values[0],
			MedianAbsError:         values[1],
			MeanAbsPercentageError: values[2],
		})
	}
	return results, nil
}

func readRecords(r io.Reader, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	for i, name := range header {
		if rows[0][i] != name {
			return nil, fmt.Errorf("unexpected CSV header %v, want %v", rows[0], header)
		}
	}
	return rows[1:], nil
}
