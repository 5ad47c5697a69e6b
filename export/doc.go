// Package export writes and reads self-describing matrix archives.
//
// An archive carries the triangle of a finished distance matrix together with
// the record IDs and the metric description, so it can be interpreted
// without the FASTA file or the run options:
//
//	magic "SQDM" | version u8 | codec name len u8 | codec name
//	header len u32 | header (codec encoded)
//	block*: uncompressed u32 | compressed u32 | data
//
// Block data is little-endian float64 triangle values. A compressed size of
// zero marks a block stored raw. The header records the CRC32C of the raw
// triangle bytes, so corruption in any block is detected on read.
package export
