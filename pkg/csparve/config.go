package csparve

import (
	"fmt"

	"github.com/spf13/viper"
	fasthex "github.com/tmthrgd/go-hex"

	"csparve-go/pkg/appdir"
)

// Config carries the 20-word configuration vector and the substitution box
// in file form. The S-box travels as a 512-character hex string; the
// constant words are plain integers and are forced odd at OpenContext.
type Config struct {
	Flags      uint32   `mapstructure:"flags"`
	HashKeys   []uint32 `mapstructure:"hash_keys"`  // K1, K2, K3
	WordSwap   []uint32 `mapstructure:"word_swap"`  // B1 C1 D1 E1 B2 C2 D2 E2
	Reversible []uint32 `mapstructure:"reversible"` // B1 C1 D1 E1 B2 C2 D2 E2
	SBox       string   `mapstructure:"sbox"`
}

// LoadConfig loads a Config with Viper: from the given file if path is
// non-empty, otherwise from csparve.yaml in the working directory or the
// application directory. CSPARVE_-prefixed environment variables override
// file values.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("csparve")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(appdir.AppDir())
	}
	v.SetEnvPrefix("CSPARVE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("csparve: reading config: %w", err)
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("csparve: parsing config: %w", err)
	}
	return cfg, nil
}

// Vector assembles the 20-word configuration vector in intake order.
func (c *Config) Vector() ([]uint32, error) {
	if len(c.HashKeys) != 3 {
		return nil, fmt.Errorf("csparve: config needs 3 hash_keys, got %d", len(c.HashKeys))
	}
	if len(c.WordSwap) != 8 {
		return nil, fmt.Errorf("csparve: config needs 8 word_swap constants, got %d", len(c.WordSwap))
	}
	if len(c.Reversible) != 8 {
		return nil, fmt.Errorf("csparve: config needs 8 reversible constants, got %d", len(c.Reversible))
	}
	vec := make([]uint32, 0, ConfigWords)
	vec = append(vec, c.Flags)
	vec = append(vec, c.HashKeys...)
	vec = append(vec, c.WordSwap...)
	vec = append(vec, c.Reversible...)
	return vec, nil
}

// SBoxBytes decodes the hex-encoded substitution box.
func (c *Config) SBoxBytes() ([]byte, error) {
	sbox, err := fasthex.DecodeString(c.SBox)
	if err != nil {
		return nil, fmt.Errorf("csparve: decoding sbox: %w", err)
	}
	if len(sbox) != SBoxSize {
		return nil, ErrSBoxSize
	}
	return sbox, nil
}

// Open validates the Config and opens a Context from it.
func (c *Config) Open() (*Context, error) {
	vec, err := c.Vector()
	if err != nil {
		return nil, err
	}
	sbox, err := c.SBoxBytes()
	if err != nil {
		return nil, err
	}
	return OpenContext(vec, sbox)
}
