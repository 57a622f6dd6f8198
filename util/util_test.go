package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsWhiteSpace(t *testing.T) {
	for _, b := range []byte{' ', '\t', '\r', '\n'} {
		assert.True(t, IsWhiteSpace(b), string(b))
	}
	for _, b := range []byte{'a', '0', '_', '\v', '\f'} {
		assert.False(t, IsWhiteSpace(b), string(b))
	}
}

func TestIdentifierClasses(t *testing.T) {
	testData := []struct {
		b           byte
		start, part bool
	}{
		{b: 'a', start: true, part: true},
		{b: 'Z', start: true, part: true},
		{b: '_', start: true, part: true},
		{b: '7', start: false, part: true},
		{b: '+', start: false, part: false},
		{b: '$', start: false, part: false},
	}
	for _, data := range testData {
		assert.Equal(t, data.start, IsLetterOrUnderscore(data.b), string(data.b))
		assert.Equal(t, data.part, IsLetterOrUnderscoreOrNumber(data.b), string(data.b))
	}
	assert.True(t, IsNumber('0'))
	assert.False(t, IsNumber('a'))
}
