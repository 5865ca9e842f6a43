package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/threatcast/internal/normalize"
	"github.com/KaramelBytes/threatcast/internal/utils"
)

// Suffix is appended to the cleaned artifact path to name its manifest.
const Suffix = ".manifest.json"

// Run records what one cleaning pass did to its input.
type Run struct {
	ID          string                       `json:"id"`
	Input       string                       `json:"input"`
	Output      string                       `json:"output,omitempty"`
	Shape       normalize.Shape              `json:"shape"`
	Header      []string                     `json:"header"`
	RowsRead    int                          `json:"rows_read"`
	RowsWritten int                          `json:"rows_written"`
	SkipCounts  map[normalize.SkipReason]int `json:"skip_counts"`
	Skipped     []normalize.Skip             `json:"skipped"`
	SeriesCount int                          `json:"series_count"`
	Excluded    int                          `json:"excluded_records"`
	Rejected    int                          `json:"rejected_records"`
	CreatedAt   time.Time                    `json:"created_at"`
}

// NewRun constructs an in-memory run for input. Call Save() to persist.
func NewRun(input string) *Run {
	return &Run{
		ID:         uuid.NewString(),
		Input:      input,
		SkipCounts: map[normalize.SkipReason]int{},
		CreatedAt:  time.Now(),
	}
}

// Record copies the normalizer's outcome onto the run.
func (r *Run) Record(res *normalize.Result) {
	r.Shape = res.Shape
	r.Header = res.Header
	r.RowsRead = res.RowsRead
	r.RowsWritten = len(res.Records)
	r.Skipped = res.Skipped
	r.SkipCounts = res.SkipCounts()
}

// PathFor returns the manifest path that accompanies a cleaned artifact.
func PathFor(output string) string { return output + Suffix }

// Save writes the run as JSON using atomic write.
func (r *Run) Save(path string) error {
	if path == "" {
		return errors.New("manifest path not set")
	}
	data, err := utils.PrettyJSON(r)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, data)
}

// Load reads a manifest written by Save.
func Load(path string) (*Run, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var r Run
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &r, nil
}
