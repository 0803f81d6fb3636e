package block

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- OutputID ---

func TestOutputID_Layout(t *testing.T) {
	txID := testTxID(1)
	id := NewOutputID(txID, 0x0102)

	assert.Equal(t, txID[:], id[:IDLength], "first 32 bytes are the transaction id")
	assert.Equal(t, []byte{0x02, 0x01}, id[IDLength:], "index is little-endian")
	assert.Equal(t, txID, id.TransactionID())
	assert.Equal(t, uint16(0x0102), id.Index())
}

func TestOutputIDFromBytes_Length(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		wantErr bool
	}{
		{"empty", 0, true},
		{"transaction id only", 32, true},
		{"one short", 33, true},
		{"exact", 34, false},
		{"one long", 35, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OutputIDFromBytes(make([]byte, tt.length))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedOutputID)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseOutputID(t *testing.T) {
	id := NewOutputID(testTxID(7), 3)

	got, err := ParseOutputID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.True(t, strings.HasPrefix(id.String(), "0x"))

	// Without the prefix.
	got, err = ParseOutputID(strings.TrimPrefix(id.String(), "0x"))
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseOutputID("0xzz")
	assert.ErrorIs(t, err, ErrMalformedOutputID)
	assert.ErrorIs(t, err, ErrInvalidHex)

	_, err = ParseOutputID(testTxID(1).String())
	assert.ErrorIs(t, err, ErrMalformedOutputID)
}

func TestOutputID_JSONMapKey(t *testing.T) {
	id := NewOutputID(testTxID(2), 5)
	in := map[OutputID]int{id: 1}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), id.String())

	var out map[OutputID]int
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

// --- Fixed IDs ---

func TestFixedID_TextRoundTrip(t *testing.T) {
	txID := testTxID(3)
	data, err := json.Marshal(txID)
	require.NoError(t, err)

	var got TransactionID
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, txID, got)

	var short AliasID
	err = short.UnmarshalText([]byte("0x0102"))
	assert.ErrorIs(t, err, ErrInvalidHex)
}

func TestAliasID_Empty(t *testing.T) {
	assert.True(t, AliasID{}.Empty())
	assert.False(t, AliasID{1}.Empty())
	assert.True(t, NftID{}.Empty())
}
