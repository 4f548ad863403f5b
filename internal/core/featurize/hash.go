package featurize

import farm "github.com/dgryski/go-farm"

// padToken is the reserved string hashed for padding tokens
const padToken = "<PAD>"

// Hash maps s to a bucket id: FarmHash Fingerprint64 reduced modulo buckets.
// The fingerprint is a fixed external contract; the shipped models were
// trained against farmhash::Fingerprint64, so any other function silently
// degrades accuracy without raising an error
func Hash(s string, buckets int) int {
	return int(farm.Fingerprint64([]byte(s)) % uint64(buckets))
}
