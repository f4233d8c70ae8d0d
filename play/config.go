package play

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gordonklaus/kiwi/dsp"
)

// Config describes the output stream.  Zero fields take their defaults.
type Config struct {
	SampleRate      float64 `yaml:"sample_rate"`
	FramesPerBuffer int     `yaml:"frames_per_buffer"`
	Channels        int     `yaml:"channels"`
	BlockSize       int     `yaml:"block_size"`
}

var DefaultConfig = Config{
	SampleRate:      dsp.DefaultParams.SampleRate,
	FramesPerBuffer: 512,
	Channels:        dsp.DefaultParams.Channels,
	BlockSize:       dsp.DefaultParams.BlockSize,
}

func (c Config) WithDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = DefaultConfig.SampleRate
	}
	if c.FramesPerBuffer <= 0 {
		c.FramesPerBuffer = DefaultConfig.FramesPerBuffer
	}
	if c.Channels <= 0 {
		c.Channels = DefaultConfig.Channels
	}
	if c.BlockSize <= 0 {
		c.BlockSize = DefaultConfig.BlockSize
	}
	return c
}

// Params returns the DSP parameters matching c.
func (c Config) Params() dsp.Params {
	c = c.WithDefaults()
	return dsp.Params{SampleRate: c.SampleRate, BlockSize: c.BlockSize, Channels: c.Channels}
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("play: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("play: %s: %w", path, err)
	}
	return c.WithDefaults(), nil
}
