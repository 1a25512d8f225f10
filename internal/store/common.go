package store

const (
	ErrFailedBatchCommit = "failed to commit batch: %w"
)

// Prefix constants for all store types
const (
	prefixEncoding byte = iota + 1
	prefixSweepDigest
)

// PrefixToString converts a prefix byte to a string
func PrefixToString(p byte) string {
	switch p {
	case prefixEncoding:
		return "encoding"
	case prefixSweepDigest:
		return "sweepDigest"
	default:
		return "unknown"
	}
}

// makeKey creates a key from a prefix and a big-endian body
func makeKey(prefix byte, body []byte) []byte {
	key := make([]byte, 1+len(body))
	key[0] = prefix
	copy(key[1:], body)
	return key
}
