package chainsum

// SwapConstants is a bank of eight odd 32-bit constants consumed by the
// word-swap chain-&-sum families: the (B1,C1,D1,E1) quad drives the first
// word of every pair and (B2,C2,D2,E2) the second.
type SwapConstants struct {
	B1, C1, D1, E1 uint32
	B2, C2, D2, E2 uint32
}

// The reversible family's trailing u*L term uses fixed zero constants. They
// are threaded through the iterations so a different pair could be supplied
// without changing the call shape.
const (
	revL1 = 0
	revL2 = 0
)

// WordSwapSum computes the word-swap chain-&-sum MAC over data. The two
// per-pair multipliers key1 and key2 come from the seed hash halves forced
// odd; within each word pair the first word uses key1 with the (…1) quad and
// the second uses key2 with the (…2) quad. An odd word
// count ends with a padding iteration that consumes no input word. The
// result packs the sum as the high 32 bits and the final t2 as the low.
func WordSwapSum(k SwapConstants, data []byte, seed uint64) uint64 {
	numBlocks := len(data) / WordSize
	key1, key2 := lo(seed)|1, hi(seed)|1

	var sum, t2 uint32
	idx := 0
	for numBlocks > 1 {
		t2, sum = swapIteration(key1, k.B1, k.C1, k.D1, k.E1, word(data, idx), t2, sum)
		idx++
		t2, sum = swapIteration(key2, k.B2, k.C2, k.D2, k.E2, word(data, idx), t2, sum)
		idx++
		numBlocks -= 2
	}
	if numBlocks == 1 {
		t2, sum = swapIteration(key1, k.B1, k.C1, k.D1, k.E1, word(data, idx), t2, sum)
		t2, sum = swapFinalIteration(key2, k.B2, k.C2, k.D2, k.E2, t2, sum)
	}
	return make64(sum, t2)
}

// swapIteration is one pairwise-independent function and summing step.
func swapIteration(a, b, c, d, e, w, t2, sum uint32) (uint32, uint32) {
	t := t2 + w
	t = t*a + wordSwap(t)*b
	t2 = wordSwap(t)*c + t*d
	t2 += wordSwap(t) * e
	return t2, sum + t2
}

// swapFinalIteration is the padding step for an odd word count: the same
// transform without consuming an input word.
func swapFinalIteration(a, b, c, d, e, t2, sum uint32) (uint32, uint32) {
	t := t2
	t = t*a + wordSwap(t)*b
	t2 = wordSwap(t)*c + t*d
	t2 += wordSwap(t) * e
	return t2, sum + t2
}

// ReversibleSum computes the reversible word-swap chain-&-sum MAC over data.
// Keying and pair alternation follow WordSwapSum; the iteration chains t
// across pairs instead of reseeding it from t2. The result packs the sum as
// the high 32 bits and the final t as the low.
func ReversibleSum(k SwapConstants, data []byte, seed uint64) uint64 {
	numBlocks := len(data) / WordSize
	key1, key2 := lo(seed)|1, hi(seed)|1

	var sum, t uint32
	idx := 0
	for numBlocks > 1 {
		t, sum = reversibleIteration(key1, k.B1, k.C1, k.D1, k.E1, revL1, word(data, idx), t, sum)
		idx++
		t, sum = reversibleIteration(key2, k.B2, k.C2, k.D2, k.E2, revL2, word(data, idx), t, sum)
		idx++
		numBlocks -= 2
	}
	if numBlocks == 1 {
		t, sum = reversibleIteration(key1, k.B1, k.C1, k.D1, k.E1, revL1, word(data, idx), t, sum)
		t, sum = reversibleFinalIteration(key2, k.B2, k.C2, k.D2, k.E2, revL2, t, sum)
	}
	return make64(sum, t)
}

func reversibleIteration(a, b, c, d, e, l, w, t, sum uint32) (uint32, uint32) {
	t += w
	t *= a
	u := wordSwap(t)
	t = u * b
	t = wordSwap(t) * c
	t = wordSwap(t) * d
	t = wordSwap(t) * e
	t += u * l
	return t, sum + t
}

func reversibleFinalIteration(a, b, c, d, e, l, t, sum uint32) (uint32, uint32) {
	t *= a
	u := wordSwap(t)
	t = u * b
	t = wordSwap(t) * c
	t = wordSwap(t) * d
	t = wordSwap(t) * e
	t += u * l
	return t, sum + t
}
