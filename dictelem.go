package pyramid

import "fmt"

// dictElem is one dictionary element: a 2-byte payload plus its occurrence
// and usage counters. Equality and hashing are defined on data alone —
// callers key dictElems by the [2]byte payload, never by the counters.
type dictElem struct {
	data       [2]byte
	occurrence uint64
	usage      uint64
}

func newDictElem(data [2]byte, occurrence uint64) dictElem {
	return dictElem{data: data, occurrence: occurrence}
}

func (e *dictElem) setOccurrence(occurrence uint64) {
	e.occurrence = occurrence
}

func (e *dictElem) incrementUsage() {
	e.usage++
}

// String renders the element the way a human reading a dump of the
// dictionary would expect: printable bytes as themselves, everything else
// as a decimal value.
func (e dictElem) String() string {
	return fmt.Sprintf("[%s, %s]: %d occurrences, %d uses", byteGlyph(e.data[0]), byteGlyph(e.data[1]), e.occurrence, e.usage)
}

func byteGlyph(b byte) string {
	if b >= 0x20 && b < 0x7F {
		return string(rune(b))
	}
	return fmt.Sprintf("%d", b)
}
