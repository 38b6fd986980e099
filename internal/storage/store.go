// Package storage persists analysis runs: a metadata.json per run plus a
// points.csv with whatever columns the analysis produced.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes one saved analysis.
type RunMetadata struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"` // bode, step, locus, ...
	Plant     string             `json:"plant"`
	Timestamp time.Time          `json:"timestamp"`
	Params    map[string]float64 `json:"params,omitempty"`
	Results   map[string]float64 `json:"results,omitempty"`
}

// Save writes metadata plus a CSV of named columns and returns the run id.
// All columns must have equal length.
func (s *Store) Save(kind, plant string, params, results map[string]float64, header []string, columns [][]float64) (string, error) {
	for _, col := range columns {
		if len(col) != len(columns[0]) {
			return "", fmt.Errorf("storage: ragged columns (%d vs %d)", len(col), len(columns[0]))
		}
	}
	if len(header) != len(columns) {
		return "", fmt.Errorf("storage: %d header fields for %d columns", len(header), len(columns))
	}

	runID := fmt.Sprintf("%s_%d", kind, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Kind:      kind,
		Plant:     plant,
		Timestamp: time.Now(),
		Params:    params,
		Results:   results,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "points.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return "", err
	}
	if len(columns) == 0 {
		return runID, nil
	}
	for i := range columns[0] {
		row := make([]string, len(columns))
		for j := range columns {
			row[j] = strconv.FormatFloat(columns[j][i], 'g', 12, 64)
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadPoints reads a run's CSV back as a header plus columns.
func (s *Store) LoadPoints(runID string) ([]string, [][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "points.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("storage: empty points file for %s", runID)
	}

	header := records[0]
	columns := make([][]float64, len(header))
	for i := range columns {
		columns[i] = make([]float64, 0, len(records)-1)
	}
	for _, record := range records[1:] {
		if len(record) != len(header) {
			return nil, nil, fmt.Errorf("storage: ragged row in %s", runID)
		}
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("storage: bad value %q in %s", field, runID)
			}
			columns[j] = append(columns[j], v)
		}
	}
	return header, columns, nil
}
