// Package csparve implements the CSParve64 authenticated-encryption and
// keyed-hashing core: a 64-bit chain-&-sum construction composing the Parve
// block cipher, the BV4 stream cipher, and the chain-&-sum MAC families.
//
// A Context carries shared configuration (three hash keys, two banks of
// word-swap constants, a substitution box) and is immutable and shareable
// once opened; the constants can be unique per purpose. An Instance combines
// a Context with an 8-byte input key and a seed buffer, caching the 64-bit
// hash of the seed; the input key would typically represent a particular
// identity. Instances encrypt and decrypt buffers in place with a 64-bit MAC
// embedded in the last 8 bytes.
//
// All buffers are addressed big-endian and must be a positive multiple of
// 8 bytes. The core performs no I/O, keeps no pointers into caller buffers
// past a call, and never verifies MACs itself; callers compare the returned
// values.
package csparve

import "errors"

const (
	// BlockSize is the buffer alignment in bytes.
	BlockSize = 8
	// KeySize is the number of input key bytes an Instance consumes.
	KeySize = 8
	// SBoxSize is the substitution box size in bytes.
	SBoxSize = 256
	// ConfigWords is the length of the configuration vector.
	ConfigWords = 20
	// MACSize is the size of the embedded MAC region in bytes.
	MACSize = 8
)

var (
	// ErrUnsupportedConfig is returned when the configuration Flags word is
	// not zero. Flags is reserved for future variants; anything else fails
	// closed.
	ErrUnsupportedConfig = errors.New("csparve: unsupported configuration flags")
	// ErrConfigSize is returned when the configuration vector is not exactly
	// 20 words.
	ErrConfigSize = errors.New("csparve: configuration must be 20 words")
	// ErrSBoxSize is returned when the substitution box is not 256 bytes.
	ErrSBoxSize = errors.New("csparve: sbox must be 256 bytes")
	// ErrKeySize is returned when an input key holds fewer than 8 bytes.
	ErrKeySize = errors.New("csparve: input key must be at least 8 bytes")
	// ErrDataSize is returned when a data buffer is empty, shorter than one
	// block, or not a multiple of 8 bytes.
	ErrDataSize = errors.New("csparve: data must be a positive multiple of 8 bytes")
)

// checkBuffer validates the shared buffer contract before any mutation.
func checkBuffer(data []byte) error {
	if len(data) < BlockSize || len(data)%BlockSize != 0 {
		return ErrDataSize
	}
	return nil
}
