/*
Package pyramid implements a layered byte-pair substitution codec.

A file is compressed in chunks of at most 790,000 bytes. For each
chunk a pair of dictionaries (one even-phase, one odd-phase) of up to 128
two-byte elements is built from the chunk's own contents, then the chunk is
encoded against that pair as a bit-packed mix of dictionary-index hits and
raw-byte miss runs. The output of one compression pass is fed back as input
to the next; the pyramid stops growing as soon as a pass would enlarge the
data, and the resulting layer count is written as the file's leading byte.

Decompression reads that layer count and unwinds exactly that many passes.

The format is deliberately simple: no entropy coding, no sliding window, no
dictionary sharing across chunks, and no streaming over a pipe — the codec
operates on seekable files only.
*/
package pyramid
