package pyramid

import "fmt"

// Dictionary is an ordered collection of at most `values` two-byte
// elements. The position of an element in elems is its wire index.
//
// least caches the index of the currently smallest-occurrence element so
// consider can decide in O(1) whether a new candidate is worth evicting an
// existing slot for. It is kept correct incrementally while the dictionary
// is filling up, and by a full rescan whenever a mutation could have
// invalidated it (see consider).
type Dictionary struct {
	elems    []dictElem
	index    map[[2]byte]int
	least    int
	leastVal uint64
	coverage uint64
}

// NewDictionary returns an empty dictionary responsible for coverage bytes
// of source data.
func NewDictionary(coverage uint64) *Dictionary {
	return &Dictionary{
		index:    make(map[[2]byte]int),
		coverage: coverage,
	}
}

// Coverage returns the number of source bytes this dictionary accounts
// for.
func (d *Dictionary) Coverage() uint64 { return d.coverage }

// SetCoverage overrides the coverage. The builder calls it for every chunk
// so that both dictionaries of a pair report the chunk's full size, even
// though the odd dictionary was built from one byte less.
func (d *Dictionary) SetCoverage(coverage uint64) { d.coverage = coverage }

func (d *Dictionary) full() bool { return len(d.elems) >= values }

func (d *Dictionary) refreshLeast() {
	least, leastVal := 0, ^uint64(0)
	for i, e := range d.elems {
		if e.occurrence < leastVal {
			least, leastVal = i, e.occurrence
		}
	}
	d.least, d.leastVal = least, leastVal
}

// Consider ingests a candidate (data, occurrence) pair observed by the
// builder and decides whether it enters the dictionary, per spec §4.3.
func (d *Dictionary) Consider(data [2]byte, occurrence uint64) {
	if i, ok := d.index[data]; ok {
		d.elems[i].setOccurrence(occurrence)
		if i == d.least {
			d.refreshLeast()
		}
		return
	}

	if occurrence < minOccurrences {
		return
	}

	if !d.full() {
		elem := newDictElem(data, occurrence)
		i := len(d.elems)
		d.elems = append(d.elems, elem)
		d.index[data] = i
		if i == 0 || occurrence < d.leastVal {
			d.least, d.leastVal = i, occurrence
		}
		return
	}

	if occurrence > d.leastVal {
		delete(d.index, d.elems[d.least].data)
		d.elems[d.least] = newDictElem(data, occurrence)
		d.index[data] = d.least
		d.refreshLeast()
	}
}

// Lookup returns the wire index of data, if present.
func (d *Dictionary) Lookup(data [2]byte) (uint8, bool) {
	i, ok := d.index[data]
	if !ok {
		return 0, false
	}
	return uint8(i), true
}

// Get returns the payload at index, or a protocol error if index is out of
// range — the signature of a corrupt or malicious stream on the decode
// side.
func (d *Dictionary) Get(index uint8) ([2]byte, error) {
	if int(index) >= len(d.elems) {
		return [2]byte{}, protocolErrorf("dictionary index %d out of range (have %d elements)", index, len(d.elems))
	}
	return d.elems[index].data, nil
}

// IncrementUsage records that the encoder's dry pass chose index as a hit.
func (d *Dictionary) IncrementUsage(index uint8) error {
	if int(index) >= len(d.elems) {
		return protocolErrorf("dictionary index %d out of range (have %d elements)", index, len(d.elems))
	}
	d.elems[index].incrementUsage()
	return nil
}

// PurgeUnused deletes every element with zero usage and re-indexes the
// survivors contiguously from 0, preserving their relative order. Must run
// between the encoder's dry and real passes.
func (d *Dictionary) PurgeUnused() {
	survivors := d.elems[:0]
	for _, e := range d.elems {
		if e.usage > 0 {
			survivors = append(survivors, e)
		}
	}
	d.elems = survivors

	d.index = make(map[[2]byte]int, len(d.elems))
	for i, e := range d.elems {
		d.index[e.data] = i
	}
	d.refreshLeast()
}

// Len returns the number of admitted elements.
func (d *Dictionary) Len() uint8 { return uint8(len(d.elems)) }

// Serialize renders the dictionary's wire header: a one-byte element
// count followed by that many two-byte payloads in index order.
func (d *Dictionary) Serialize() []byte {
	out := make([]byte, 0, d.SizeInBytes())
	out = append(out, d.Len())
	for _, e := range d.elems {
		out = append(out, e.data[0], e.data[1])
	}
	return out
}

// SizeInBytes returns the size of Serialize()'s output: the one header
// byte plus 2 bytes per element.
func (d *Dictionary) SizeInBytes() int { return 1 + 2*len(d.elems) }

// String renders a human-readable dump, used by debug logging and test
// failure messages.
func (d *Dictionary) String() string {
	out := fmt.Sprintf("coverage: %d bytes. elements: %d", d.coverage, len(d.elems))
	for i, e := range d.elems {
		out += fmt.Sprintf("\n  %d: %s", i, e.String())
	}
	return out
}
