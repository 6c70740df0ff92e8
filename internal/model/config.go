package model

import "time"

// ScanConfig is the process-wide configuration. It is built once at startup
// and shared by pointer; nothing mutates it afterwards.
type ScanConfig struct {
	Workers     int
	Timeout     time.Duration
	Extensions  []string // lowercase, with leading dot
	CacheLocal  bool
	DecoderPath string
	MaxOutput   int
	Signatures  []string // regular expressions, matched case-insensitively
	Benign      []string
}
