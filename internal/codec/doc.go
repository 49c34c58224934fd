// Package codec encodes strokes and spatial snapshots as opaque binary
// payloads for the peer transport.
//
// # Wire Format
//
// Payloads use the protobuf wire format, written directly with protowire
// (no generated code). Every payload is an envelope:
//
//	1: varint  version (currently 1)
//	2: bytes   stroke record     (exactly one of 2 or 3)
//	3: bytes   snapshot record
//
// A stroke record carries its length and color in a short name string and
// its placement as sixteen row-major float64 values:
//
//	1: string  "<length>=[<r>, <g>, <b>, <a>]"
//	2: fixed64 placement element (repeated 16 times)
//
// A snapshot record is self-describing:
//
//	1: string  map id
//	2: bytes   opaque tracker features
//	3: bytes   stroke record (repeated)
//
// Unknown fields are skipped. Malformed or truncated input always yields a
// *DecodeError; decoding never panics.
package codec
