package chainsum

// Key is the invertible chain-&-sum MAC key over Z_{2^32}: five odd
// multipliers derived from a 64-bit seed hash plus the precomputed inverses
// of a, c and e, which make the final word pair recoverable from a MAC.
type Key struct {
	a, b, c, d, e    uint32
	invA, invC, invE uint32
}

// DeriveKey builds a Key from a 64-bit seed hash and three odd 32-bit keys.
// Each multiplier is forced odd so it is a unit mod 2^32.
func DeriveKey(seed uint64, key1, key2, key3 uint32) Key {
	h, l := hi(seed), lo(seed)
	k := Key{
		a: l | 1,
		b: h | 1,
		c: (key1 ^ l) | 1,
		d: (key2 ^ h) | 1,
		e: (key3 ^ l) | 1,
	}
	// Inverses are only needed by InvertMAC but are cheap enough to always
	// precompute.
	k.invA = modInvert32(k.a)
	k.invC = modInvert32(k.c)
	k.invE = modInvert32(k.e)
	return k
}

// MAC computes the forward chain-&-sum MAC over data and packs the final
// chain value as the high 32 bits and the running sum as the low 32 bits.
//
// The first word pair feeds e*x straight into the ax+b step; every later
// pair adds the chain into it first. The asymmetry is part of the wire
// contract and must not be "fixed".
func (k Key) MAC(data []byte) uint64 {
	numBlocks := len(data) / WordSize
	checkWords(numBlocks)

	idx := 0
	exn := k.e * word(data, idx)
	idx++
	chain := k.a*exn + k.b
	sum := chain

	chain = k.c*(chain+word(data, idx)) + k.d
	idx++
	sum += chain

	for i := 1; i < numBlocks/2; i++ {
		exn = k.e * word(data, idx)
		idx++
		chain = k.a*(chain+exn) + k.b
		sum += chain

		chain = k.c*(chain+word(data, idx)) + k.d
		idx++
		sum += chain
	}
	return make64(chain, sum)
}

// InvertMAC recovers the final two plaintext words of a buffer whose MAC is
// known: it replays the forward MAC over all but the last two words, then
// solves the last two chain steps backwards using the precomputed inverses.
// The result packs word n-1 as the high 32 bits and word n as the low.
func (k Key) InvertMAC(data []byte, mac uint64) uint64 {
	numBlocks := len(data) / WordSize
	checkWords(numBlocks)

	sum := lo(mac)
	yn := hi(mac)
	var yn2, sumPrev uint32
	if numBlocks > 2 {
		prev := k.MAC(data[:(numBlocks-2)*WordSize])
		sumPrev = lo(prev)
		yn2 = hi(prev)
	}

	// y_{n-1} = sum(y_1..y_n) - sum(y_1..y_{n-2}) - y_n
	yn1 := sum - sumPrev - yn

	// x_n = c^-1 (y_n - d) - y_{n-1}
	xn := k.invC*(yn-k.d) - yn1

	// x_{n-1} = e^-1 [a^-1 (y_{n-1} - b) - y_{n-2}]
	xn1 := k.invE * (k.invA*(yn1-k.b) - yn2)

	return make64(xn1, xn)
}

// modInvert32 inverts an odd n mod 2^32 without 64-bit arithmetic.
func modInvert32(n uint32) uint32 {
	if n&1 == 0 {
		panic("chainsum: modular inverse of an even value")
	}
	if n == 1 {
		return 1
	}

	// egcd(2^32, n) = egcd(n, 2^32 mod n), and 2^32 mod n = 1 + (2^32-1) mod n.
	x, inv := egcd32(n, 1+(0xffffffff%n))

	// n is odd and > 1, so 2^32/n = (2^32-1)/n.
	return x - inv*(0xffffffff/n)
}

// egcd32 runs the extended Euclidean algorithm for gcd(a, b) = x*a + y*b,
// with all coefficient updates wrapping mod 2^32.
func egcd32(a, b uint32) (x, y uint32) {
	x, y = 0, 1
	lastx, lasty := uint32(1), uint32(0)
	for b != 0 {
		q := a / b
		a, b = b, a%b
		x, lastx = lastx-q*x, x
		y, lasty = lasty-q*y, y
	}
	return lastx, lasty
}
