package normalize

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the canonical header followed by one row per record.
func WriteCSV(w io.Writer, recs []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CanonicalHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range recs {
		if err := cw.Write(r.Fields()); err != nil {
			return fmt.Errorf("write record %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// EncodeCSV renders records to bytes.
func EncodeCSV(recs []Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, recs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
