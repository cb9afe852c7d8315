// Package format defines the on-disk constants shared by the encoder, decoder,
// and cache subsystems: bit-code identifiers, load modes, graph class names,
// and the compression algorithm used for cached succinct structures.
package format

// CodeType identifies a universal integer code used somewhere in a compressed
// graph's bit stream. The value is the stable integer tag written into the
// compressionflags of a .properties file.
type CodeType uint8

const (
	CodeDelta        CodeType = 1
	CodeGamma        CodeType = 2
	CodeGolomb       CodeType = 3
	CodeSkewedGolomb CodeType = 4
	CodeUnary        CodeType = 5
	CodeZeta         CodeType = 6
	CodeNibble       CodeType = 7
)

func (c CodeType) String() string {
	switch c {
	case CodeDelta:
		return "DELTA"
	case CodeGamma:
		return "GAMMA"
	case CodeGolomb:
		return "GOLOMB"
	case CodeSkewedGolomb:
		return "SKEWED_GOLOMB"
	case CodeUnary:
		return "UNARY"
	case CodeZeta:
		return "ZETA"
	case CodeNibble:
		return "NIBBLE"
	default:
		return "UNKNOWN"
	}
}

// ParseCodeType maps a compressionflags token back to a CodeType.
func ParseCodeType(s string) (CodeType, bool) {
	switch s {
	case "DELTA":
		return CodeDelta, true
	case "GAMMA":
		return CodeGamma, true
	case "GOLOMB":
		return CodeGolomb, true
	case "SKEWED_GOLOMB":
		return CodeSkewedGolomb, true
	case "UNARY":
		return CodeUnary, true
	case "ZETA":
		return CodeZeta, true
	case "NIBBLE":
		return CodeNibble, true
	default:
		return 0, false
	}
}

// LoadMode selects how much of a compressed graph is materialized in memory
// at load time.
type LoadMode uint8

const (
	// Standard loads the offsets table and the whole .graph byte stream into memory.
	Standard LoadMode = iota
	// Mapped keeps the offsets table in memory but memory-maps the .graph bytes.
	Mapped
	// Offline loads nothing upfront; only sequential access from node 0 is supported.
	Offline
	// Once wraps a single-use input stream; no random access, no restart.
	Once
)

func (m LoadMode) String() string {
	switch m {
	case Standard:
		return "STANDARD"
	case Mapped:
		return "MAPPED"
	case Offline:
		return "OFFLINE"
	case Once:
		return "ONCE"
	default:
		return "UNKNOWN"
	}
}

// CacheCompressionType selects the algorithm used to compress a cached
// succinct big-list (.obl / .labelobl). It is unrelated to the CodeType used
// inside a .graph bit stream; it only governs the on-disk size of the cache
// artifact that memoizes the decoded offsets stream.
type CacheCompressionType uint8

const (
	CacheCompressionNone CacheCompressionType = iota
	CacheCompressionZstd
	CacheCompressionS2
	CacheCompressionLZ4
)

func (c CacheCompressionType) String() string {
	switch c {
	case CacheCompressionNone:
		return "None"
	case CacheCompressionZstd:
		return "Zstd"
	case CacheCompressionS2:
		return "S2"
	case CacheCompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
