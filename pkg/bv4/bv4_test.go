package bv4

import (
	"bytes"
	"testing"
)

func TestInvolution(t *testing.T) {
	key := []byte{0xA5, 0x5A, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	data := make([]byte, 40)
	for i := range data {
		data[i] = byte(i)
	}
	orig := make([]byte, len(data))
	copy(orig, data)

	enc, err := NewStream(key)
	if err != nil {
		t.Fatalf("NewStream failed: %v", err)
	}
	if err := enc.XORKeyStream(data); err != nil {
		t.Fatalf("XORKeyStream failed: %v", err)
	}
	if bytes.Equal(data, orig) {
		t.Fatal("keystream left the buffer unchanged")
	}

	dec, err := NewStream(key)
	if err != nil {
		t.Fatalf("NewStream failed: %v", err)
	}
	if err := dec.XORKeyStream(data); err != nil {
		t.Fatalf("XORKeyStream failed: %v", err)
	}
	if !bytes.Equal(data, orig) {
		t.Errorf("involution failed: expected %x, got %x", orig, data)
	}
}

func TestKeySensitivity(t *testing.T) {
	data1 := make([]byte, 16)
	data2 := make([]byte, 16)

	s1, err := NewStream([]byte("12345678"))
	if err != nil {
		t.Fatalf("NewStream failed: %v", err)
	}
	s2, err := NewStream([]byte("12345679"))
	if err != nil {
		t.Fatalf("NewStream failed: %v", err)
	}
	s1.XORKeyStream(data1)
	s2.XORKeyStream(data2)
	if bytes.Equal(data1, data2) {
		t.Error("different keys produced identical keystreams")
	}
}

func TestWarmupDeterminism(t *testing.T) {
	s1, err := NewStream([]byte("samekey!"))
	if err != nil {
		t.Fatalf("NewStream failed: %v", err)
	}
	s2, err := NewStream([]byte("samekey!"))
	if err != nil {
		t.Fatalf("NewStream failed: %v", err)
	}
	if s1.h != s2.h || s1.i != s2.i || s1.j != s2.j || s1.s != s2.s || s1.y != s2.y {
		t.Error("identical keys produced different warmed-up states")
	}
}

func TestErrors(t *testing.T) {
	if _, err := NewStream(nil); err != ErrKeySize {
		t.Errorf("expected ErrKeySize, got %v", err)
	}
	s, err := NewStream([]byte("12345678"))
	if err != nil {
		t.Fatalf("NewStream failed: %v", err)
	}
	if err := s.XORKeyStream(make([]byte, 7)); err != ErrDataSize {
		t.Errorf("expected ErrDataSize, got %v", err)
	}
}
