package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainStroke is the domain prefix for stroke record hashes.
// Version suffix enables future algorithm migration.
const DomainStroke = "airdraw/stroke/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StrokeHash computes the content hash of an encoded stroke record.
//
// The hash labels journal rows and trace events. It is NOT a dedup key:
// the same bytes delivered twice are two cylinders.
func StrokeHash(record []byte) string {
	return hashWithDomain(DomainStroke, record)
}
