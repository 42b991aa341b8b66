package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yourname/smartcoach/internal"
	"github.com/yourname/smartcoach/internal/energy"
)

type rawEntry struct {
	Date     string   `json:"date"`
	Weight   *float64 `json:"weight,omitempty"`
	Calories *float64 `json:"calories,omitempty"`
}

// loadLog reads a log export. JSON files hold either a log object as served
// by the API or a bare array of {date, weight, calories}; CSV files need a
// header naming date, weight and calories columns.
func loadLog(path string) (internal.NutritionLog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return internal.NutritionLog{}, err
	}
	var log internal.NutritionLog
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		log.DayEntries, err = parseCSV(bytes.NewReader(raw))
	case ".json":
		log, err = parseJSON(raw)
	default:
		return log, fmt.Errorf("unsupported file type %q (use .json or .csv)", filepath.Ext(path))
	}
	if err != nil {
		return log, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if log.ID == "" {
		log.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	log.DayEntries = dedupeDays(log.DayEntries)
	return log, nil
}

// dedupeDays keeps one entry per calendar day; a later row for the same day
// replaces the earlier one. First-seen order is kept.
func dedupeDays(entries []internal.DayEntry) []internal.DayEntry {
	if len(entries) == 0 {
		return entries
	}
	index := make(map[int64]int, len(entries))
	out := make([]internal.DayEntry, 0, len(entries))
	for _, e := range entries {
		if i, ok := index[e.ID]; ok {
			out[i] = e
			continue
		}
		index[e.ID] = len(out)
		out = append(out, e)
	}
	return out
}

func parseJSON(raw []byte) (internal.NutritionLog, error) {
	var log internal.NutritionLog
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &log); err != nil {
			return log, err
		}
		for i := range log.DayEntries {
			log.DayEntries[i].Date = energy.Truncate(log.DayEntries[i].Date)
			log.DayEntries[i].ID = energy.DayNumber(log.DayEntries[i].Date)
		}
		return log, nil
	}

	var rows []rawEntry
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return log, err
	}
	for i, r := range rows {
		e, err := newEntry(r.Date, r.Weight, r.Calories)
		if err != nil {
			return log, fmt.Errorf("entry %d: %w", i+1, err)
		}
		log.DayEntries = append(log.DayEntries, e)
	}
	return log, nil
}

func parseCSV(r io.Reader) ([]internal.DayEntry, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty csv")
		}
		return nil, err
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	dateCol, ok := cols["date"]
	if !ok {
		return nil, errors.New("csv header needs a date column")
	}

	var entries []internal.DayEntry
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		weight, err := optionalFloat(rec, cols, "weight")
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		calories, err := optionalFloat(rec, cols, "calories")
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		e, err := newEntry(rec[dateCol], weight, calories)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func optionalFloat(rec []string, cols map[string]int, name string) (*float64, error) {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return nil, nil
	}
	s := strings.TrimSpace(rec[i])
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s %q is not a number", name, s)
	}
	return &v, nil
}

func newEntry(date string, weight, calories *float64) (internal.DayEntry, error) {
	day, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return internal.DayEntry{}, fmt.Errorf("date %q must be YYYY-MM-DD", date)
	}
	return internal.DayEntry{
		ID:       energy.DayNumber(day),
		Date:     day,
		Weight:   weight,
		Calories: calories,
	}, nil
}
