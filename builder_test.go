package pyramid

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildDictionaryPairReportsFullCoverage(t *testing.T) {
	data := bytes.Repeat([]byte("AB"), 50)
	path := writeTempFile(t, data)

	even, odd, err := BuildDictionaryPair(path, 0, uint64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	if even.Coverage() != uint64(len(data)) {
		t.Errorf("even.Coverage() = %d, want %d", even.Coverage(), len(data))
	}
	if odd.Coverage() != uint64(len(data)) {
		t.Errorf("odd.Coverage() = %d, want %d", odd.Coverage(), len(data))
	}
}

func TestBuildDictionaryPairAdmitsRepeatedWindows(t *testing.T) {
	data := bytes.Repeat([]byte("AB"), 50)
	path := writeTempFile(t, data)

	even, _, err := BuildDictionaryPair(path, 0, uint64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := even.Lookup([2]byte{'A', 'B'}); !ok {
		t.Fatal(`expected even dictionary to admit "AB", seen 50 times at even-aligned windows`)
	}
}

func TestBuildDictionaryPairOddWindowsAreShiftedByOne(t *testing.T) {
	data := bytes.Repeat([]byte("AB"), 50)
	path := writeTempFile(t, data)

	_, odd, err := BuildDictionaryPair(path, 0, uint64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := odd.Lookup([2]byte{'B', 'A'}); !ok {
		t.Fatal(`expected odd dictionary, built from offset+1, to admit "BA"`)
	}
	if _, ok := odd.Lookup([2]byte{'A', 'B'}); ok {
		t.Fatal(`odd dictionary should never see "AB" windows when reading a pure "AB" repeat from offset+1`)
	}
}

func TestBuildDictionaryPairRejectsBelowThresholdWindows(t *testing.T) {
	data := []byte("ABCDEFGHIJ")
	path := writeTempFile(t, data)

	even, odd, err := BuildDictionaryPair(path, 0, uint64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	if even.Len() != 0 {
		t.Errorf("even.Len() = %d, want 0 (no window repeats %d times)", even.Len(), minOccurrences)
	}
	if odd.Len() != 0 {
		t.Errorf("odd.Len() = %d, want 0", odd.Len())
	}
}

func TestBuildDictionaryPairZeroSizeChunk(t *testing.T) {
	path := writeTempFile(t, nil)

	even, odd, err := BuildDictionaryPair(path, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if even.Len() != 0 || odd.Len() != 0 {
		t.Fatal("a zero-size chunk must yield empty dictionaries")
	}
}
