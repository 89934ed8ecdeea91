package csparve

import (
	"csparve-go/pkg/chainsum"
	"csparve-go/pkg/parve"
)

// Context holds the shared configuration: three odd 32-bit hash keys, the
// word-swap and reversible constant banks, and a copy of the substitution
// box. Once OpenContext returns, a Context is read-only and may back any
// number of Instances concurrently.
type Context struct {
	flags uint32

	key1, key2, key3 uint32

	ws  chainsum.SwapConstants
	rev chainsum.SwapConstants

	sbox [SBoxSize]byte
}

// OpenContext builds a Context from a 20-word configuration vector and a
// 256-byte substitution box. The vector is consumed in the order
// [Flags, K1, K2, K3, WS_B1..WS_E2, REV_B1..REV_E2]; every word except Flags
// is forced odd. Only Flags == 0 is accepted.
func OpenContext(config []uint32, sbox []byte) (*Context, error) {
	if len(config) != ConfigWords {
		return nil, ErrConfigSize
	}
	if len(sbox) != SBoxSize {
		return nil, ErrSBoxSize
	}
	if config[0] != 0 {
		return nil, ErrUnsupportedConfig
	}

	ctx := &Context{
		flags: config[0],
		key1:  config[1] | 1,
		key2:  config[2] | 1,
		key3:  config[3] | 1,
		ws: chainsum.SwapConstants{
			B1: config[4] | 1, C1: config[5] | 1, D1: config[6] | 1, E1: config[7] | 1,
			B2: config[8] | 1, C2: config[9] | 1, D2: config[10] | 1, E2: config[11] | 1,
		},
		rev: chainsum.SwapConstants{
			B1: config[12] | 1, C1: config[13] | 1, D1: config[14] | 1, E1: config[15] | 1,
			B2: config[16] | 1, C2: config[17] | 1, D2: config[18] | 1, E2: config[19] | 1,
		},
	}
	copy(ctx.sbox[:], sbox)
	return ctx, nil
}

// Close zeroizes the Context. Using a closed Context is undefined.
func (ctx *Context) Close() {
	*ctx = Context{}
}

// ComputeHash derives the public combined 64-bit keyed hash over data:
// a Parve CBC-MAC under the input key, XOR-folded through the modular,
// word-swap and reversible chain-&-sum MACs, each keyed from the running
// hash. It is independent of the hash an Instance caches at creation; the
// two must not be interchanged.
func (ctx *Context) ComputeHash(inputKey, data []byte) (uint64, error) {
	if err := checkBuffer(data); err != nil {
		return 0, err
	}
	cipher, err := parve.NewCipher(inputKey, ctx.sbox[:])
	if err != nil {
		return 0, ErrKeySize
	}

	h, err := cipher.CBCMAC(data)
	if err != nil {
		return 0, ErrDataSize
	}
	h ^= chainsum.Modular(h, ctx.key1, ctx.key2, ctx.key3, data)
	h ^= chainsum.WordSwapSum(ctx.ws, data, h)
	h ^= chainsum.ReversibleSum(ctx.rev, data, h)
	return h, nil
}
