package miningjob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsShortBlob(t *testing.T) {
	j := Job{ID: "job-1", Blob: make([]byte, 10)}
	assert.Error(t, j.Validate())
}

func TestValidateRejectsEmptyID(t *testing.T) {
	j := Job{Blob: make([]byte, MinBlobLen)}
	assert.Error(t, j.Validate())
}

func TestValidateAcceptsWellFormedJob(t *testing.T) {
	j := Job{ID: "job-1", Blob: make([]byte, MinBlobLen)}
	assert.NoError(t, j.Validate())
}

func TestCloneIsIndependentOfOriginal(t *testing.T) {
	j := Job{ID: "job-1", Blob: []byte{1, 2, 3}, Seed: []byte{9}}
	clone := j.Clone()
	clone.Blob[0] = 0xFF
	assert.Equal(t, byte(1), j.Blob[0], "mutating the clone must not affect the original")
}

func TestWriteNonceIsBigEndian(t *testing.T) {
	blob := make([]byte, MinBlobLen)
	WriteNonce(blob, 0x01020304)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, blob[NonceOffset:NonceOffset+NonceLen])
}

func TestNonceAtRoundTripsWithWriteNonce(t *testing.T) {
	blob := make([]byte, MinBlobLen)
	WriteNonce(blob, 0xAABBCCDD)
	got := NonceAt(blob)
	assert.Equal(t, [4]byte{0xAA, 0xBB, 0xCC, 0xDD}, got)
}

func TestCandidateValueReadsLittleEndianTail(t *testing.T) {
	var hash [32]byte
	hash[24] = 0x01
	assert.Equal(t, uint64(1), CandidateValue(hash))

	hash = [32]byte{}
	hash[31] = 0x01
	assert.Equal(t, uint64(1)<<56, CandidateValue(hash))
}

func TestMeetsDifficulty(t *testing.T) {
	var hash [32]byte
	hash[24] = 0x05 // value = 5
	assert.True(t, MeetsDifficulty(hash, 10))
	assert.False(t, MeetsDifficulty(hash, 5))
	assert.False(t, MeetsDifficulty(hash, 1))
}

func TestDifficultyFromTargetCleanDivision(t *testing.T) {
	// 2^32-1 = 3 * 1431655765, an exact division suitable for a precise check.
	const t3 = 3
	got := DifficultyFromTarget(t3)
	want := MaxTarget / 1431655765
	assert.Equal(t, want, got)
}

func TestDifficultyFromTargetZeroIsMaxTarget(t *testing.T) {
	assert.Equal(t, MaxTarget, DifficultyFromTarget(0))
}

func TestDecodeHexBlobRejectsInvalidHex(t *testing.T) {
	_, err := DecodeHexBlob("not-hex")
	require.Error(t, err)
}

func TestDecodeHexBlobDecodesValidHex(t *testing.T) {
	b, err := DecodeHexBlob("0a0b0c")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0x0b, 0x0c}, b)
}
