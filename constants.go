package pyramid

// Wire-format and tuning constants. Fixed at compile time; see spec §9 —
// these are tuning parameters, not guarantees, and are never exposed as
// runtime configuration.
const (
	// chunkMaxSize is the largest number of source bytes one dictionary
	// pair is built from and one chunk frame covers.
	chunkMaxSize = 790000

	// elemBytes is the width of one dictionary element's payload.
	elemBytes = 2

	// values is the dictionary capacity: the wire index fits in 7 bits.
	values = 128

	// valuesHalf is the short/long miss-run framing boundary.
	valuesHalf = values / 2

	// minOccurrences is the lowest occurrence count a candidate element
	// may be admitted into a dictionary with.
	minOccurrences = 4

	// maxLayers is the largest layer count the single leading byte of a
	// finalised file can hold.
	maxLayers = 255
)
