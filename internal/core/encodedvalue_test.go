package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodedValueInt(t *testing.T) {
	image, h, _ := buildPoolFixture(t)
	p := NewPool(image, h)

	// VALUE_INT tag=0x04, value_arg=0 (length 1), payload 0x7F.
	data := []byte{0x04, 0x7F}
	v, pos, err := p.encodedValue(data, 0)
	require.NoError(t, err)
	require.Equal(t, int32(0x7F), v)
	require.Equal(t, len(data), pos)
}

func TestEncodedValueBooleanTrueFalse(t *testing.T) {
	image, h, _ := buildPoolFixture(t)
	p := NewPool(image, h)

	vTrue, _, err := p.encodedValue([]byte{0x1F | (1 << 5)}, 0)
	require.NoError(t, err)
	require.Equal(t, true, vTrue)

	vFalse, _, err := p.encodedValue([]byte{0x1F}, 0)
	require.NoError(t, err)
	require.Equal(t, false, vFalse)
}

func TestEncodedValueNull(t *testing.T) {
	image, h, _ := buildPoolFixture(t)
	p := NewPool(image, h)

	v, pos, err := p.encodedValue([]byte{0x1E}, 0)
	require.NoError(t, err)
	require.Nil(t, v)
	require.Equal(t, 1, pos)
}

func TestEncodedValueString(t *testing.T) {
	image, h, idxOf := buildPoolFixture(t)
	p := NewPool(image, h)

	// VALUE_STRING tag 0x17, length 1 byte holding idxOf["name"].
	data := []byte{0x17, byte(idxOf["name"])}
	v, _, err := p.encodedValue(data, 0)
	require.NoError(t, err)
	require.Equal(t, "name", v)
}

func TestEncodedArrayRoundTrip(t *testing.T) {
	image, h, _ := buildPoolFixture(t)
	p := NewPool(image, h)

	// size=2, then two VALUE_INT entries.
	data := []byte{0x02, 0x04, 0x01, 0x04, 0x02}
	vals, pos, err := p.EncodedArray(data, 0)
	require.NoError(t, err)
	require.Equal(t, len(data), pos)
	require.Equal(t, []interface{}{int32(1), int32(2)}, vals)
}

func TestEncodedValueUnknownTag(t *testing.T) {
	image, h, _ := buildPoolFixture(t)
	p := NewPool(image, h)

	_, _, err := p.encodedValue([]byte{0x1C&^0x1C | 0x09}, 0) // tag 0x09 is unassigned
	require.Error(t, err)
	require.Contains(t, err.Error(), "BAD_VALUE")
}
