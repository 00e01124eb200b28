package vrc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyThirtySixSignatureFullMatch(t *testing.T) {
	data := append([]byte{}, expectedThirtySixHeader[:]...)
	require.Equal(t, 144, verifyThirtySixSignature(data))
}

func TestVerifyThirtySixSignatureMismatchAtStart(t *testing.T) {
	data := append([]byte{}, expectedThirtySixHeader[:]...)
	data[0] ^= 0xFF
	require.Equal(t, 0, verifyThirtySixSignature(data))
}

func TestVerifyThirtySixSignaturePartialMatch(t *testing.T) {
	data := append([]byte{}, expectedThirtySixHeader[:]...)
	data[79] ^= 0xFF
	require.Equal(t, 79, verifyThirtySixSignature(data))
}

func TestVerifyThirtySixSignatureShortInput(t *testing.T) {
	data := expectedThirtySixHeader[:10]
	require.Equal(t, 10, verifyThirtySixSignature(data))
}
