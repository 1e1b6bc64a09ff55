package pyramid

import "testing"

func TestDictionaryConsiderIgnoresBelowMinOccurrences(t *testing.T) {
	d := NewDictionary(chunkMaxSize)
	d.Consider([2]byte{0x41, 0x42}, minOccurrences-1)
	if d.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", d.Len())
	}
}

func TestDictionaryConsiderAdmitsAtThreshold(t *testing.T) {
	d := NewDictionary(chunkMaxSize)
	d.Consider([2]byte{0x41, 0x42}, minOccurrences)
	if d.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", d.Len())
	}
	idx, ok := d.Lookup([2]byte{0x41, 0x42})
	if !ok || idx != 0 {
		t.Fatalf("Lookup = (%d, %v), want (0, true)", idx, ok)
	}
}

func TestDictionaryConsiderUpdatesExistingOccurrence(t *testing.T) {
	d := NewDictionary(chunkMaxSize)
	d.Consider([2]byte{0x41, 0x42}, minOccurrences)
	d.Consider([2]byte{0x41, 0x42}, minOccurrences+10)
	if d.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (update must not duplicate)", d.Len())
	}
	if got := d.elems[0].occurrence; got != minOccurrences+10 {
		t.Fatalf("occurrence = %d, want %d", got, minOccurrences+10)
	}
}

func TestDictionaryCapsAt128AndEvictsLeast(t *testing.T) {
	d := NewDictionary(chunkMaxSize)
	for i := 0; i < values; i++ {
		d.Consider([2]byte{byte(i), 0}, minOccurrences)
	}
	if d.Len() != values {
		t.Fatalf("Len() = %d, want %d", d.Len(), values)
	}

	// Every admitted element currently has the same occurrence; a
	// candidate strictly greater than that must evict exactly one slot,
	// keeping the dictionary at capacity.
	d.Consider([2]byte{0xFF, 0xFF}, minOccurrences+1)
	if d.Len() != values {
		t.Fatalf("Len() = %d, want %d after eviction attempt", d.Len(), values)
	}
	if _, ok := d.Lookup([2]byte{0xFF, 0xFF}); !ok {
		t.Fatal("expected the higher-occurrence candidate to have evicted the least element")
	}

	// A candidate at or below the current minimum must not evict anything.
	d.Consider([2]byte{0xEE, 0xEE}, minOccurrences)
	if _, ok := d.Lookup([2]byte{0xEE, 0xEE}); ok {
		t.Fatal("a candidate at the current minimum must not be admitted into a full dictionary")
	}
}

func TestDictionaryUniqueDataPerElement(t *testing.T) {
	d := NewDictionary(chunkMaxSize)
	for i := 0; i < 200; i++ {
		d.Consider([2]byte{0x01, 0x02}, minOccurrences+uint64(i))
	}
	if d.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (repeated data must update, not duplicate)", d.Len())
	}
}

func TestDictionaryPurgeUnusedReindexes(t *testing.T) {
	d := NewDictionary(chunkMaxSize)
	d.Consider([2]byte{0x01, 0x01}, minOccurrences)
	d.Consider([2]byte{0x02, 0x02}, minOccurrences)
	d.Consider([2]byte{0x03, 0x03}, minOccurrences)

	if err := d.IncrementUsage(1); err != nil {
		t.Fatal(err)
	}

	d.PurgeUnused()

	if d.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after purge", d.Len())
	}
	got, err := d.Get(0)
	if err != nil {
		t.Fatal(err)
	}
	if got != ([2]byte{0x02, 0x02}) {
		t.Fatalf("Get(0) = %v, want the surviving element re-indexed to 0", got)
	}
	if _, ok := d.Lookup([2]byte{0x01, 0x01}); ok {
		t.Fatal("purged element must not be reachable by Lookup")
	}
}

func TestDictionaryGetOutOfRangeIsProtocolError(t *testing.T) {
	d := NewDictionary(chunkMaxSize)
	d.Consider([2]byte{0x01, 0x01}, minOccurrences)
	if _, err := d.Get(5); err == nil {
		t.Fatal("expected a protocol error for an out-of-range index")
	}
}

func TestDictionarySerializeSizeAndCountHeader(t *testing.T) {
	d := NewDictionary(chunkMaxSize)
	d.Consider([2]byte{0x01, 0x02}, minOccurrences)
	d.Consider([2]byte{0x03, 0x04}, minOccurrences)

	wire := d.Serialize()
	if len(wire) != d.SizeInBytes() {
		t.Fatalf("len(Serialize()) = %d, want SizeInBytes() = %d", len(wire), d.SizeInBytes())
	}
	if wire[0] != 2 {
		t.Fatalf("wire header = %d, want 2", wire[0])
	}
}
