package pyramid

import (
	"bytes"
	"io"
)

// DecodeAllChunks reads back-to-back framed chunks from r until it hits a
// clean end-of-stream, decoding each in turn and concatenating their
// output. A clean end is one that falls exactly on a chunk boundary; any
// other truncation is reported as a protocol violation.
func DecodeAllChunks(r io.Reader) ([]byte, error) {
	var out []byte
	for {
		lenBytes := make([]byte, 4)
		n, err := io.ReadFull(r, lenBytes)
		if err == io.EOF && n == 0 {
			return out, nil
		}
		if err != nil {
			return nil, protocolErrorf("truncated chunk length prefix (%d of 4 bytes)", n)
		}

		total, err := decodeBE(lenBytes)
		if err != nil {
			return nil, err
		}
		if total < 4 {
			return nil, protocolErrorf("chunk total length %d smaller than its own header", total)
		}

		rest := make([]byte, total-4)
		if _, err := io.ReadFull(r, rest); err != nil {
			return nil, protocolErrorf("truncated chunk body: need %d bytes", total-4)
		}

		chunkOut, err := decodeChunkBody(rest)
		if err != nil {
			return nil, err
		}
		out = append(out, chunkOut...)
	}
}

// decodeChunkBody decodes one chunk's dictionary headers and token stream
// (everything past the 4-byte length prefix), per spec §4.6.
func decodeChunkBody(body []byte) ([]byte, error) {
	r := bytes.NewReader(body)

	even, err := readWireDictionary(r)
	if err != nil {
		return nil, err
	}
	odd, err := readWireDictionary(r)
	if err != nil {
		return nil, err
	}
	dicts := [2]*Dictionary{even, odd}

	var out []byte
	phase := 0
	for r.Len() > 0 {
		b, _ := r.ReadByte()

		switch {
		case b&0x80 != 0:
			pair, err := dicts[phase].Get(b & 0x7F)
			if err != nil {
				return nil, err
			}
			out = append(out, pair[0], pair[1])

		case b&0x40 != 0:
			m := int(b & 0x3F)
			raw := make([]byte, m)
			if _, err := io.ReadFull(r, raw); err != nil {
				return nil, protocolErrorf("short miss run of %d bytes overruns chunk body", m)
			}
			out = append(out, raw...)
			if m%2 == 1 {
				phase ^= 1
			}

		default:
			n := b
			if n == 0 || n > 8 || int(n) > r.Len() {
				return nil, protocolErrorf("long miss run length-of-length byte %d invalid", n)
			}
			lenBytes := make([]byte, n)
			if _, err := io.ReadFull(r, lenBytes); err != nil {
				return nil, protocolErrorf("long miss run length field overruns chunk body")
			}
			m64, err := decodeBE(lenBytes)
			if err != nil {
				return nil, err
			}
			if m64 > uint64(r.Len()) {
				return nil, protocolErrorf("long miss run of %d bytes overruns chunk body", m64)
			}
			m := int(m64)
			raw := make([]byte, m)
			if _, err := io.ReadFull(r, raw); err != nil {
				return nil, protocolErrorf("long miss run of %d bytes overruns chunk body", m)
			}
			out = append(out, raw...)
			if m%2 == 1 {
				phase ^= 1
			}
		}
	}

	return out, nil
}

// readWireDictionary reads one dictionary header (a one-byte element count
// followed by that many two-byte payloads) from r.
func readWireDictionary(r *bytes.Reader) (*Dictionary, error) {
	k, err := r.ReadByte()
	if err != nil {
		return nil, protocolErrorf("truncated dictionary header: %v", err)
	}
	if int(k) > values {
		return nil, protocolErrorf("dictionary element count %d exceeds %d", k, values)
	}

	d := NewDictionary(0)
	for i := 0; i < int(k); i++ {
		var pair [2]byte
		if _, err := io.ReadFull(r, pair[:]); err != nil {
			return nil, protocolErrorf("truncated dictionary payload at element %d", i)
		}
		d.elems = append(d.elems, newDictElem(pair, 0))
		d.index[pair] = i
	}
	return d, nil
}
