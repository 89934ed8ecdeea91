package csparve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fasthex "github.com/tmthrgd/go-hex"
)

func writeConfig(t *testing.T, sboxHex string) string {
	t.Helper()
	yaml := `flags: 0
hash_keys: [2, 4, 6]
word_swap: [10, 11, 12, 13, 14, 15, 16, 17]
reversible: [20, 21, 22, 23, 24, 25, 26, 27]
sbox: "` + sboxHex + `"
`
	path := filepath.Join(t.TempDir(), "csparve.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))
	return path
}

func identitySBoxHex() string {
	sbox := make([]byte, SBoxSize)
	for i := range sbox {
		sbox[i] = byte(i)
	}
	return fasthex.EncodeToString(sbox)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, identitySBoxHex())
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	vec, err := cfg.Vector()
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 2, 4, 6, 10, 11, 12, 13, 14, 15, 16, 17,
		20, 21, 22, 23, 24, 25, 26, 27}, vec)

	sbox, err := cfg.SBoxBytes()
	require.NoError(t, err)
	assert.Len(t, sbox, SBoxSize)
	assert.Equal(t, byte(255), sbox[255])

	ctx, err := cfg.Open()
	require.NoError(t, err)
	defer ctx.Close()

	// Even config words are forced odd at intake.
	assert.Equal(t, uint32(3), ctx.key1)
	assert.Equal(t, uint32(5), ctx.key2)
	assert.Equal(t, uint32(7), ctx.key3)
	assert.Equal(t, uint32(11), ctx.ws.B1)
	assert.Equal(t, uint32(21), ctx.rev.B1)
}

func TestLoadConfigBadSBox(t *testing.T) {
	path := writeConfig(t, "0011223344")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, err = cfg.SBoxBytes()
	assert.ErrorIs(t, err, ErrSBoxSize)
	_, err = cfg.Open()
	assert.Error(t, err)
}

func TestConfigVectorShape(t *testing.T) {
	cfg := &Config{
		HashKeys:   []uint32{1, 2},
		WordSwap:   make([]uint32, 8),
		Reversible: make([]uint32, 8),
	}
	_, err := cfg.Vector()
	assert.Error(t, err, "3 hash keys are required")

	cfg.HashKeys = []uint32{1, 2, 3}
	cfg.WordSwap = make([]uint32, 7)
	_, err = cfg.Vector()
	assert.Error(t, err, "8 word-swap constants are required")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
