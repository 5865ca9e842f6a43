package normalize

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/KaramelBytes/threatcast/internal/reader"
)

// SkipReason classifies why a row was dropped.
type SkipReason string

const (
	// SkipBadValue marks a purely numeric value that could not be parsed.
	SkipBadValue SkipReason = "bad_value"
	// SkipFieldCount marks a row that had neither 5 nor 6 fields after cleaning.
	SkipFieldCount SkipReason = "field_count"
)

// Skip describes one dropped row.
type Skip struct {
	Line   int        `json:"line"`
	Reason SkipReason `json:"reason"`
	Fields []string   `json:"fields"`
	Detail string     `json:"detail,omitempty"`
}

// Shape captures the input variant detected from the header.
type Shape struct {
	// LeadingNoise is set when the first column is the legacy T25 column.
	LeadingNoise bool `json:"leading_noise"`
	// SwapSourceFootnote is set when complete rows carry Footnotes before Source.
	SwapSourceFootnote bool `json:"swap_source_footnote"`
}

// Result is the output of normalizing a table.
type Result struct {
	Header   []string
	Records  []Record
	Skipped  []Skip
	Shape    Shape
	RowsRead int
}

// SkipCounts tallies skipped rows by reason.
func (r *Result) SkipCounts() map[SkipReason]int {
	out := map[SkipReason]int{}
	for _, s := range r.Skipped {
		out[s.Reason]++
	}
	return out
}

// NormalizeHeader drops noise and empty columns and returns the canonical
// names that remain, in canonical order.
func NormalizeHeader(raw []string) []string {
	present := map[string]bool{}
	for _, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" || noiseColumns[h] {
			continue
		}
		present[h] = true
	}
	out := make([]string, 0, len(CanonicalHeader))
	for _, c := range CanonicalHeader {
		if present[c] {
			out = append(out, c)
		}
	}
	return out
}

// DetectShape inspects the raw header. Footnotes/Source are swapped unless the
// header names both with Source first.
func DetectShape(raw []string) Shape {
	s := Shape{SwapSourceFootnote: true}
	if len(raw) > 0 && strings.TrimSpace(raw[0]) == "T25" {
		s.LeadingNoise = true
	}
	src, foot := indexOf(raw, ColSource), indexOf(raw, ColFootnotes)
	if src >= 0 && foot >= 0 && src < foot {
		s.SwapSourceFootnote = false
	}
	return s
}

// Normalizer applies the cleaning policy row by row.
type Normalizer struct {
	shape  Shape
	logger *slog.Logger
}

// New builds a Normalizer for the given raw header.
func New(header []string, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{shape: DetectShape(header), logger: logger}
}

// Shape returns the detected input shape.
func (n *Normalizer) Shape() Shape { return n.shape }

// Row cleans one raw row. When the row is dropped the returned Skip is non-nil.
func (n *Normalizer) Row(line int, raw []string) (Record, *Skip) {
	fields := make([]string, 0, len(raw))
	for _, f := range raw {
		fields = append(fields, strings.TrimSpace(f))
	}
	if n.shape.LeadingNoise && len(fields) > 0 {
		fields = fields[1:]
	}

	if len(fields) > valueSlot {
		v, err := cleanValue(fields[valueSlot])
		if err != nil {
			return Record{}, n.skip(line, SkipBadValue, fields, err.Error())
		}
		fields[valueSlot] = v
	}

	kept := fields[:0]
	for _, f := range fields {
		if f != "" {
			kept = append(kept, f)
		}
	}

	switch len(kept) {
	case 5:
		return recordFrom(kept), nil
	case 6:
		rec := recordFrom(kept)
		if n.shape.SwapSourceFootnote {
			rec.swapSourceFootnote()
		}
		return rec, nil
	default:
		return Record{}, n.skip(line, SkipFieldCount, kept, fmt.Sprintf("got %d fields, want 5 or 6", len(kept)))
	}
}

func (n *Normalizer) skip(line int, reason SkipReason, fields []string, detail string) *Skip {
	s := &Skip{Line: line, Reason: reason, Fields: append([]string(nil), fields...), Detail: detail}
	n.logger.Warn("dropping row",
		slog.Int("line", line),
		slog.String("reason", string(reason)),
		slog.Any("fields", s.Fields),
		slog.String("detail", detail))
	return s
}

// Normalize cleans every row of the table. Bad rows are collected, never fatal.
func Normalize(t *reader.Table, logger *slog.Logger) *Result {
	n := New(t.Header, logger)
	res := &Result{Header: NormalizeHeader(t.Header), Shape: n.shape}
	for i, row := range t.Rows {
		res.RowsRead++
		// header is line 1
		rec, skip := n.Row(i+2, row)
		if skip != nil {
			res.Skipped = append(res.Skipped, *skip)
			continue
		}
		res.Records = append(res.Records, rec)
	}
	n.logger.Info("normalized table",
		slog.String("name", t.Name),
		slog.Int("rows_read", res.RowsRead),
		slog.Int("records", len(res.Records)),
		slog.Int("skipped", len(res.Skipped)))
	return res
}

// valueSlot is the position of Value once any leading noise column is gone.
const valueSlot = 3

// cleanValue strips quotes and thousands separators. Purely numeric values are
// rewritten in canonical decimal form; anything else passes through stripped.
func cleanValue(s string) (string, error) {
	v := strings.NewReplacer(`"`, "", ",", "").Replace(s)
	if !isDigits(v) {
		return v, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return "", fmt.Errorf("parse value %q: %w", v, err)
	}
	return strconv.FormatUint(n, 10), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}
