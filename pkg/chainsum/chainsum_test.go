package chainsum

import (
	"encoding/binary"
	"math/rand"
	"testing"
)

func TestModInvert32(t *testing.T) {
	if inv := modInvert32(1); inv != 1 {
		t.Errorf("modInvert32(1) = %d, want 1", inv)
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		n := rng.Uint32() | 1
		inv := modInvert32(n)
		if n*inv != 1 {
			t.Fatalf("modInvert32(%#08x) = %#08x, product %#08x", n, inv, n*inv)
		}
	}
}

func TestDeriveKeyInverses(t *testing.T) {
	k := DeriveKey(0xDEADBEEFCAFEF00D, 0x12345678, 0x23456789, 0x3456789A)
	for _, pair := range [][2]uint32{{k.a, k.invA}, {k.c, k.invC}, {k.e, k.invE}} {
		if pair[0]&1 == 0 {
			t.Errorf("multiplier %#08x is even", pair[0])
		}
		if pair[0]*pair[1] != 1 {
			t.Errorf("inverse mismatch: %#08x * %#08x = %#08x", pair[0], pair[1], pair[0]*pair[1])
		}
	}
}

func TestMACInvertRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, size := range []int{8, 16, 24, 64, 240} {
		data := make([]byte, size)
		rng.Read(data)
		k := DeriveKey(rng.Uint64(), rng.Uint32(), rng.Uint32(), rng.Uint32())

		mac := k.MAC(data)
		lastPair := k.InvertMAC(data, mac)
		if orig := binary.BigEndian.Uint64(data[size-8:]); lastPair != orig {
			t.Errorf("size %d: InvertMAC returned %016x, want %016x", size, lastPair, orig)
		}

		// Writing the forward MAC over the final pair and inverting again must
		// still recover words that hash back to that MAC.
		binary.BigEndian.PutUint64(data[size-8:], mac)
		restored := k.InvertMAC(data, mac)
		binary.BigEndian.PutUint64(data[size-8:], restored)
		if got := k.MAC(data); got != mac {
			t.Errorf("size %d: MAC after inversion %016x, want %016x", size, got, mac)
		}
	}
}

func TestMACSensitivity(t *testing.T) {
	k := DeriveKey(0x0123456789ABCDEF, 1, 1, 1)
	data := make([]byte, 32)
	for i := range data {
		data[i] = byte(i)
	}
	mac := k.MAC(data)
	data[3] ^= 0x80
	if k.MAC(data) == mac {
		t.Error("MAC unchanged after flipping a bit")
	}
}

func TestMod31Fold(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	for i := 0; i < 10000; i++ {
		// Keep the high word below 2^30, inside the range where mod31 is exact.
		v := rng.Uint64() & 0x3FFFFFFFFFFFFFFF
		if got, want := mod31(v), v%Modulus; got != want {
			t.Fatalf("mod31(%#x) = %#x, want %#x", v, got, want)
		}
	}
	for _, v := range []uint64{0, Modulus - 1, Modulus, Modulus + 1, 1 << 31, 1 << 32, (1 << 62) - 1} {
		if got, want := mod31(v), v%Modulus; got != want {
			t.Errorf("mod31(%#x) = %#x, want %#x", v, got, want)
		}
	}
}

func TestModularDeterminism(t *testing.T) {
	data := make([]byte, 24)
	for i := range data {
		data[i] = byte(i * 3)
	}
	m1 := Modular(0x1122334455667788, 3, 5, 7, data)
	m2 := Modular(0x1122334455667788, 3, 5, 7, data)
	if m1 != m2 {
		t.Errorf("Modular is inconsistent: %016x vs %016x", m1, m2)
	}
	if m3 := Modular(0x1122334455667789, 3, 5, 7, data); m3 == m1 {
		t.Error("Modular unchanged under a different seed")
	}
}

func TestWordSwapFamilies(t *testing.T) {
	bank := SwapConstants{
		B1: 0x01010101, C1: 0x03030303, D1: 0x05050505, E1: 0x07070707,
		B2: 0x09090909, C2: 0x0B0B0B0B, D2: 0x0D0D0D0D, E2: 0x0F0F0F0F,
	}
	data := make([]byte, 16)
	for i := range data {
		data[i] = byte(i)
	}

	ws := WordSwapSum(bank, data, 0xAABBCCDD11223344)
	rev := ReversibleSum(bank, data, 0xAABBCCDD11223344)
	if ws == rev {
		t.Error("word-swap and reversible sums coincide")
	}
	if WordSwapSum(bank, data, 0xAABBCCDD11223344) != ws {
		t.Error("WordSwapSum is inconsistent")
	}

	data[0] ^= 1
	if WordSwapSum(bank, data, 0xAABBCCDD11223344) == ws {
		t.Error("WordSwapSum unchanged after flipping a bit")
	}
}

// An odd word count triggers the padding iteration; the result must differ
// from hashing the even prefix alone.
func TestWordSwapOddPadding(t *testing.T) {
	bank := SwapConstants{B1: 1, C1: 1, D1: 1, E1: 1, B2: 1, C2: 1, D2: 1, E2: 1}
	data := make([]byte, 12)
	for i := range data {
		data[i] = byte(i + 1)
	}

	odd := WordSwapSum(bank, data, 0x0102030405060708)
	even := WordSwapSum(bank, data[:8], 0x0102030405060708)
	if odd == even {
		t.Error("padding iteration did not alter the word-swap sum")
	}

	oddRev := ReversibleSum(bank, data, 0x0102030405060708)
	evenRev := ReversibleSum(bank, data[:8], 0x0102030405060708)
	if oddRev == evenRev {
		t.Error("padding iteration did not alter the reversible sum")
	}
}

func TestWordSwapPacking(t *testing.T) {
	// wordSwap is a self-inverse permutation.
	for _, x := range []uint32{0, 1, 0xFFFF0000, 0x12345678} {
		if wordSwap(wordSwap(x)) != x {
			t.Errorf("wordSwap not self-inverse for %#08x", x)
		}
	}
	if wordSwap(0x12345678) != 0x56781234 {
		t.Errorf("wordSwap(0x12345678) = %#08x", wordSwap(0x12345678))
	}
}
