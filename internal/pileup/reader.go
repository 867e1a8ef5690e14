package pileup

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/hts/bgzf"
)

// Reader streams decoded Records from an mpileup file, one per line.
type Reader struct {
	scanner    *bufio.Scanner
	file       *os.File
	bgzfReader *bgzf.Reader
	gzipReader *gzip.Reader
	lineNumber int
}

// NewReader opens an mpileup file. Plain text, bgzip and gzip inputs are
// all accepted; compression is detected from the file content, not the
// file name.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mpileup file: %w", err)
	}

	r := &Reader{file: file}

	buf := make([]byte, 2)
	if _, err := io.ReadFull(file, buf); err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		file.Close()
		return nil, fmt.Errorf("read mpileup file: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek mpileup file: %w", err)
	}

	var src io.Reader = file
	if buf[0] == 0x1f && buf[1] == 0x8b {
		// samtools usually bgzips its output; fall back to plain gzip
		// for anything compressed by hand.
		if bg, err := bgzf.NewReader(file, 1); err == nil {
			r.bgzfReader = bg
			src = bg
		} else {
			if _, err := file.Seek(0, io.SeekStart); err != nil {
				file.Close()
				return nil, fmt.Errorf("seek mpileup file: %w", err)
			}
			gz, err := gzip.NewReader(file)
			if err != nil {
				file.Close()
				return nil, fmt.Errorf("create gzip reader: %w", err)
			}
			r.gzipReader = gz
			src = gz
		}
	}

	r.scanner = newLineScanner(src)
	return r, nil
}

// NewReaderFrom creates a Reader over an uncompressed stream.
func NewReaderFrom(src io.Reader) *Reader {
	return &Reader{scanner: newLineScanner(src)}
}

func newLineScanner(src io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(src)
	// deep amplicon pileups can pack thousands of reads into one line
	sc.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	return sc
}

// Next returns the next decoded record, or nil, nil at end of input.
func (r *Reader) Next() (*Record, error) {
	for r.scanner.Scan() {
		r.lineNumber++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}
		rec, err := r.parseLine(line)
		if err != nil {
			return nil, err
		}
		return rec, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read mpileup line %d: %w", r.lineNumber+1, err)
	}
	return nil, nil
}

// parseLine decodes one mpileup line. Two shapes are accepted: the
// standard 7-field record (15 for multi-sample pileups, extra samples
// ignored) and a degraded 4-field record emitted when base-quality
// filtering removed every read, which becomes a zero-coverage record.
func (r *Reader) parseLine(line string) (*Record, error) {
	raw := strings.Split(line, "\t")

	switch len(raw) {
	case 7, 15:
		pos, err := strconv.Atoi(raw[1])
		if err != nil {
			return nil, &ParseError{Line: r.lineNumber, Message: fmt.Sprintf("invalid position: %s", raw[1])}
		}
		cov, err := strconv.Atoi(raw[3])
		if err != nil {
			return nil, &ParseError{Line: r.lineNumber, Message: fmt.Sprintf("invalid coverage: %s", raw[3])}
		}
		rec, err := NewRecord(raw[0], pos-1, raw[2], cov, raw[4], raw[5], raw[6])
		if err != nil {
			return nil, &ParseError{Line: r.lineNumber, Message: err.Error()}
		}
		return rec, nil
	case 4:
		pos, err := strconv.Atoi(raw[1])
		if err != nil {
			return nil, &ParseError{Line: r.lineNumber, Message: fmt.Sprintf("invalid position: %s", raw[1])}
		}
		return NewRecord(raw[0], pos-1, raw[2], 0, "", "", "")
	default:
		return nil, &ParseError{
			Line:    r.lineNumber,
			Message: fmt.Sprintf("expected 7 fields in mpileup record but saw %d", len(raw)),
		}
	}
}

// Index reads the remaining records and returns them keyed by 0-based
// position. The table is built once per run and read-only afterwards.
func (r *Reader) Index() (map[int]*Record, error) {
	table := make(map[int]*Record)
	for {
		rec, err := r.Next()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return table, nil
		}
		table[rec.Pos] = rec
	}
}

// LineNumber returns the current line number being processed.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Close closes the reader and the underlying file.
func (r *Reader) Close() error {
	if r.bgzfReader != nil {
		r.bgzfReader.Close()
	}
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ParseError represents an error during mpileup parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("mpileup parse error at line %d: %s", e.Line, e.Message)
}
