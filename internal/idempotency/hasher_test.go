package idempotency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeHashIsDeterministic(t *testing.T) {
	hasher := NewHasher("sha256")
	msg := map[string]interface{}{
		"symbol":         "AAPL",
		"price":          101.5,
		"moving_average": 100.0,
	}
	fields := []string{"symbol", "price", "moving_average"}

	first, err := hasher.ComputeHash(msg, fields)
	require.NoError(t, err)
	second, err := hasher.ComputeHash(msg, fields)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestComputeHashDistinguishesRecords(t *testing.T) {
	hasher := NewHasher("sha256")
	fields := []string{"symbol", "price"}

	a, err := hasher.ComputeHash(map[string]interface{}{"symbol": "AAPL", "price": 100.0}, fields)
	require.NoError(t, err)
	b, err := hasher.ComputeHash(map[string]interface{}{"symbol": "AAPL", "price": 100.5}, fields)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestComputeHashMissingFieldHashesAsEmpty(t *testing.T) {
	hasher := NewHasher("sha256")
	fields := []string{"symbol", "price"}

	withEmpty, err := hasher.ComputeHash(map[string]interface{}{"symbol": "AAPL", "price": ""}, fields)
	require.NoError(t, err)
	without, err := hasher.ComputeHash(map[string]interface{}{"symbol": "AAPL"}, fields)
	require.NoError(t, err)

	assert.Equal(t, withEmpty, without)
}

func TestComputeHashRequiresFields(t *testing.T) {
	hasher := NewHasher("sha256")

	_, err := hasher.ComputeHash(map[string]interface{}{"symbol": "AAPL"}, nil)
	assert.Error(t, err)
}

func TestComputeHashMD5(t *testing.T) {
	hasher := NewHasher("md5")

	hash, err := hasher.ComputeHash(map[string]interface{}{"symbol": "AAPL"}, []string{"symbol"})
	require.NoError(t, err)
	assert.Len(t, hash, 32)
}
