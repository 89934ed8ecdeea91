package csparve

import (
	"encoding/binary"

	"csparve-go/pkg/bv4"
	"csparve-go/pkg/chainsum"
	"csparve-go/pkg/parve"
)

// Instance is a per-caller encryption and checksum helper: a Parve cipher
// keyed by the 8-byte input key, a chain-&-sum key derived from the seed
// buffer, and the cached 64-bit hash of that seed. An Instance must be used
// by at most one goroutine at a time.
type Instance struct {
	cipher *parve.Cipher
	csKey  chainsum.Key
	hash   uint64
}

// NewInstance creates an Instance from an input key of at least 8 bytes
// (only the first 8 are used) and a seed buffer whose length is a positive
// multiple of 8 bytes. The seed's hash is computed once here and cached.
func (ctx *Context) NewInstance(inputKey, seed []byte) (*Instance, error) {
	if len(inputKey) < KeySize {
		return nil, ErrKeySize
	}
	if err := checkBuffer(seed); err != nil {
		return nil, err
	}
	cipher, err := parve.NewCipher(inputKey, ctx.sbox[:])
	if err != nil {
		return nil, ErrKeySize
	}

	inst := &Instance{cipher: cipher}

	// The creation hash keys the chain-&-sum key and is XOR-combined with
	// the chain-&-sum MAC of the seed itself.
	h0, err := cipher.CBCMAC(seed)
	if err != nil {
		return nil, ErrDataSize
	}
	inst.csKey = chainsum.DeriveKey(h0, ctx.key1, ctx.key2, ctx.key3)
	inst.hash = h0 ^ inst.csKey.MAC(seed)
	return inst, nil
}

// Hash returns the 64-bit hash of the seed data, cached at creation.
func (inst *Instance) Hash() uint64 { return inst.hash }

// Destroy zeroizes the Instance. Using a destroyed Instance is undefined.
func (inst *Instance) Destroy() {
	*inst = Instance{}
}

// Encode encrypts data in place and embeds a 64-bit MAC in its last 8 bytes:
// the chain-&-sum pre-MAC of the whole plaintext replaces the final two
// words, Parve encrypts that region, and BV4 keyed from the encrypted MAC
// encrypts the rest. The returned value is the plaintext pre-MAC, for the
// caller to convey and later compare against Decode's result.
func (inst *Instance) Encode(data []byte) (uint64, error) {
	if err := checkBuffer(data); err != nil {
		return 0, err
	}
	macOffset := len(data) - MACSize

	mac := inst.csKey.MAC(data)
	binary.BigEndian.PutUint64(data[macOffset:], mac)

	inst.cipher.EncryptBlock(data[macOffset:])

	// The stream key is the encrypted MAC, not the pre-MAC, so the keystream
	// depends on the whole plaintext and the Parve key.
	stream, err := bv4.NewStream(data[macOffset:])
	if err != nil {
		return 0, err
	}
	if err := stream.XORKeyStream(data[:macOffset]); err != nil {
		return 0, err
	}
	return mac, nil
}

// Decode reverses Encode in place: BV4 keyed from the encrypted MAC decrypts
// the prefix, Parve decrypts the MAC region back to the pre-MAC, and the
// chain-&-sum inversion restores the original final two plaintext words.
// The returned value is the recovered pre-MAC. Tampering with the MAC region
// makes it diverge from the value Encode reported; tampering with the
// stream-encrypted prefix leaves it unchanged and corrupts the recovered
// plaintext instead.
func (inst *Instance) Decode(data []byte) (uint64, error) {
	if err := checkBuffer(data); err != nil {
		return 0, err
	}
	macOffset := len(data) - MACSize

	stream, err := bv4.NewStream(data[macOffset:])
	if err != nil {
		return 0, err
	}
	if err := stream.XORKeyStream(data[:macOffset]); err != nil {
		return 0, err
	}

	inst.cipher.DecryptBlock(data[macOffset:])
	mac := binary.BigEndian.Uint64(data[macOffset:])

	lastPair := inst.csKey.InvertMAC(data, mac)
	binary.BigEndian.PutUint64(data[macOffset:], lastPair)
	return mac, nil
}
