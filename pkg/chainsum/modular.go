package chainsum

// Modulus is the prime 2^31 - 1 used by the modular chain-&-sum variant.
const Modulus = 0x7FFFFFFF

// mod31 reduces a 64-bit intermediate chain-&-sum value mod 2^31-1 using the
// folded identity v mod (2^31-1) = (2*hi + lo) mod (2^31-1), with
// conditional subtractions in place of a division. The hi<<1 step runs in
// 32-bit wrap arithmetic, so the result equals v mod (2^31-1) only while hi
// is below 2^31; a larger hi loses its top bit in the doubling.
func mod31(v uint64) uint64 {
	h := uint32(v >> 32)
	l := uint32(v)

	r := h << 1
	if r >= Modulus {
		r -= Modulus
	}
	if l >= Modulus {
		l -= Modulus
	}
	r += l
	if r >= Modulus {
		r -= Modulus
	}
	if r >= Modulus {
		r -= Modulus
	}
	return uint64(r)
}

// Modular computes the chain-&-sum MAC over Z_{2^31-1}. The a and b
// multipliers come from the seed hash reduced mod 2^31-1; keyC, keyD and
// keyE are used as supplied. Data words are used as full 32-bit values;
// since keyE is not reduced, an e*word product can carry a high word of 2^31
// or more, which mod31 does not reduce exactly.
// The result packs the reduced sum as the high 32 bits and the final chain
// value as the low 32 bits.
func Modular(seed uint64, keyC, keyD, keyE uint32, data []byte) uint64 {
	numBlocks := len(data) / WordSize
	checkWords(numBlocks)

	a := mod31(uint64(lo(seed)))
	b := mod31(uint64(hi(seed)))
	c := uint64(keyC)
	d := uint64(keyD)
	e := uint64(keyE)

	idx := 0
	tmp := mod31(e * uint64(word(data, idx)))
	idx++

	mac := mod31(a*tmp + b)
	sum := mac

	tmp = mod31(mac + uint64(word(data, idx)))
	idx++
	mac = mod31(c*tmp + d)
	sum += mac

	for i := 1; i < numBlocks>>1; i++ {
		// Even-indexed word: multiply by e, fold in the chain, reduce.
		tmp = mod31(e*uint64(word(data, idx)) + mac)
		idx++
		mac = mod31(a*tmp + b)
		sum += mac

		// Odd-indexed word: cx+d step.
		tmp = mod31(mac + uint64(word(data, idx)))
		idx++
		mac = mod31(c*tmp + d)
		sum += mac
	}

	// Single end-of-message whitening: fold b into the chain and d into the
	// sum before the final reductions.
	mac = mod31(mac + b)
	sum = mod31(sum + d)

	return make64(lo(sum), lo(mac))
}
