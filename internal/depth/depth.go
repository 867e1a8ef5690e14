// Package depth loads per-base read depth tables produced by `samtools depth`.
package depth

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Table maps 0-based reference positions to read depth. Min and Max are
// the first and last recorded positions; reads rarely span the whole
// reference, so the table endpoints define the coverage envelope.
type Table struct {
	ByPos map[int]int
	Min   int
	Max   int
}

// Empty reports whether no positions were recorded at all.
func (t *Table) Empty() bool {
	return len(t.ByPos) == 0
}

// Load reads a depth file of whitespace-separated `chrom pos depth`
// triples (positions 1-based on input).
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open depth file: %w", err)
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	return Parse(src)
}

// Parse builds a Table from a depth stream.
func Parse(src io.Reader) (*Table, error) {
	t := &Table{ByPos: make(map[int]int)}

	scanner := bufio.NewScanner(src)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("depth line %d: expected 3 fields, found %d", lineNo, len(fields))
		}
		pos, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("depth line %d: invalid position %q", lineNo, fields[1])
		}
		count, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("depth line %d: invalid depth %q", lineNo, fields[2])
		}

		pos0 := pos - 1
		if t.Empty() || pos0 < t.Min {
			t.Min = pos0
		}
		if t.Empty() || pos0 > t.Max {
			t.Max = pos0
		}
		t.ByPos[pos0] = count
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan depth file: %w", err)
	}

	return t, nil
}
