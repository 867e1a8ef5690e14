// Package fasta provides minimal FASTA reading and writing.
package fasta

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record is one FASTA entry.
type Record struct {
	ID  string // header up to the first whitespace, without ">"
	Seq string
}

// ReadSingle returns the first record of a FASTA file. The reference
// for a viral sample is a single-record FASTA; trailing records are
// ignored.
func ReadSingle(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return readSingle(reader)
}

func readSingle(reader io.Reader) (*Record, error) {
	scanner := bufio.NewScanner(reader)
	// Increase buffer size for long sequence lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var rec *Record
	var seq strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			if rec != nil {
				break // only the first record is used
			}
			header := strings.TrimPrefix(line, ">")
			rec = &Record{}
			if f := strings.Fields(header); len(f) > 0 {
				rec.ID = f[0]
			}
			continue
		}
		if rec == nil {
			return nil, fmt.Errorf("FASTA does not start with a header line")
		}
		seq.WriteString(strings.TrimSpace(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan FASTA: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("FASTA contains no records")
	}

	rec.Seq = seq.String()
	return rec, nil
}

// WriteRecord writes one FASTA record with the sequence on a single line.
func WriteRecord(w io.Writer, id, seq string) error {
	if _, err := fmt.Fprintf(w, ">%s\n%s\n", id, seq); err != nil {
		return fmt.Errorf("write FASTA record: %w", err)
	}
	return nil
}
