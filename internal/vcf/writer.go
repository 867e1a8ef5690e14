package vcf

import (
	"bufio"
	"fmt"
	"io"
)

// Writer emits a VCF that reuses the input's header and records
// verbatim, so the output schema always matches the input schema.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w and writes the given header lines immediately.
func NewWriter(w io.Writer, header []string) (*Writer, error) {
	bw := bufio.NewWriter(w)
	for _, line := range header {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return nil, fmt.Errorf("write vcf header: %w", err)
		}
	}
	return &Writer{w: bw}, nil
}

// Write appends one record as it appeared in the input.
func (w *Writer) Write(v *Variant) error {
	if _, err := w.w.WriteString(v.Line + "\n"); err != nil {
		return fmt.Errorf("write vcf record: %w", err)
	}
	return nil
}

// Flush flushes buffered output.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
