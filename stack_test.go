package eos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStackWatermarkInitAndScratch(t *testing.T) {
	cfg := DefaultConfig()
	buf := make([]byte, 32)
	s := NewStack(buf, cfg)

	assert.Equal(t, 32, s.Len())
	assert.Equal(t, 32-cfg.WatermarkRoom, len(s.Scratch()))
	for _, b := range buf[32-cfg.WatermarkRoom:] {
		assert.Equal(t, cfg.WatermarkByte, b)
	}
	assert.False(t, s.Overflowed())
}

func TestStackOverflowDetected(t *testing.T) {
	cfg := DefaultConfig()
	buf := make([]byte, 32)
	s := NewStack(buf, cfg)

	buf[len(buf)-1] = 0x00
	assert.True(t, s.Overflowed())
}

func TestStackScratchDoesNotTouchWatermark(t *testing.T) {
	cfg := DefaultConfig()
	buf := make([]byte, 32)
	s := NewStack(buf, cfg)

	scratch := s.Scratch()
	for i := range scratch {
		scratch[i] = 0xFF
	}
	assert.False(t, s.Overflowed())
}
