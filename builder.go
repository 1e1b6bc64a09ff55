package pyramid

import (
	"io"
	"os"
)

// BuildDictionaryPair constructs the even- and odd-phase dictionaries for
// one chunk of chunkSize bytes starting at offset in path, per spec §4.4.
// The even dictionary is built from windows starting at offset; the odd
// dictionary from windows starting one byte later. Both are reported as
// responsible for the full chunkSize bytes of coverage.
func BuildDictionaryPair(path string, offset, chunkSize uint64) (even, odd *Dictionary, err error) {
	even, err = buildDictionary(path, offset, chunkSize)
	if err != nil {
		return nil, nil, err
	}

	oddBudget := uint64(0)
	if chunkSize > 0 {
		oddBudget = chunkSize - 1
	}
	odd, err = buildDictionary(path, offset+1, oddBudget)
	if err != nil {
		return nil, nil, err
	}

	even.SetCoverage(chunkSize)
	odd.SetCoverage(chunkSize)
	return even, odd, nil
}

// buildDictionary reads back-to-back 2-byte windows from path starting at
// offset, stopping once windowBudget bytes have been consumed or the file
// ends, and considers each window against a fresh 65536-wide occurrence
// counter private to this build.
func buildDictionary(path string, offset, windowBudget uint64) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioErrorf("open %q: %v", path, err)
	}
	defer f.Close()

	if _, err := f.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, ioErrorf("seek %q to %d: %v", path, offset, err)
	}

	dict := NewDictionary(windowBudget)
	var counter [1 << 16]uint32
	var window [2]byte
	var read uint64

	for read+2 <= windowBudget {
		if _, err := io.ReadFull(f, window[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, ioErrorf("read %q at %d: %v", path, offset+read, err)
		}
		read += 2

		key := uint16(window[0])<<8 | uint16(window[1])
		counter[key]++
		dict.Consider(window, uint64(counter[key]))
	}

	return dict, nil
}
