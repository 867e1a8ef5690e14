package depth

import (
	"strings"
	"testing"
)

func TestParse_Table(t *testing.T) {
	in := "fake\t3\t12\n" +
		"fake\t4\t7\n" +
		"fake\t9\t30\n"

	table, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Failed to parse depth file: %v", err)
	}

	if len(table.ByPos) != 3 {
		t.Fatalf("Expected 3 positions, got %d", len(table.ByPos))
	}
	// input positions are 1-based, the table is 0-based
	if table.ByPos[2] != 12 || table.ByPos[3] != 7 || table.ByPos[8] != 30 {
		t.Errorf("Unexpected table contents: %v", table.ByPos)
	}
	if table.Min != 2 {
		t.Errorf("Expected first recorded position 2, got %d", table.Min)
	}
	if table.Max != 8 {
		t.Errorf("Expected last recorded position 8, got %d", table.Max)
	}
}

func TestParse_WhitespaceSeparated(t *testing.T) {
	table, err := Parse(strings.NewReader("fake  5  2\n"))
	if err != nil {
		t.Fatalf("Failed to parse space-separated line: %v", err)
	}
	if table.ByPos[4] != 2 {
		t.Errorf("Unexpected table contents: %v", table.ByPos)
	}
}

func TestParse_Empty(t *testing.T) {
	table, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Empty input should produce an empty table: %v", err)
	}
	if !table.Empty() {
		t.Error("Expected an empty table")
	}
}

func TestParse_BadLine(t *testing.T) {
	if _, err := Parse(strings.NewReader("fake\t3\n")); err == nil {
		t.Error("Expected an error for a 2-field line")
	}
	if _, err := Parse(strings.NewReader("fake\tx\t3\n")); err == nil {
		t.Error("Expected an error for a non-numeric position")
	}
	if _, err := Parse(strings.NewReader("fake\t3\tx\n")); err == nil {
		t.Error("Expected an error for a non-numeric depth")
	}
}
