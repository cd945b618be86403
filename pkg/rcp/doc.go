// Package rcp implements the frame codec of the reader control protocol.
package rcp

// A frame on the wire looks like:
//
//   0xBB | type | code | length (2 bytes, big endian) | payload | 0x7E | CRC16 (2 bytes, big endian)
//
// The CRC is CRC-16/CCITT-FALSE computed over type .. 0x7E (preamble excluded).
//
// The protocol has no request identifiers. A response answers the most
// recently written command, so callers must keep at most one command
// outstanding. Notifications are unsolicited and may arrive at any time,
// interleaved with responses.
