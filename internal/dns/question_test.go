package dns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_MarshalParse(t *testing.T) {
	q := Question{Name: "example.com", Type: TypeAAAA, Class: ClassIN}
	b, err := q.Marshal()
	require.NoError(t, err)

	off := 0
	got, err := ParseQuestion(b, &off)
	require.NoError(t, err)
	assert.Equal(t, q, got)
	assert.Equal(t, len(b), off)
}

func TestParseQuestion_TruncatedFixedFields(t *testing.T) {
	b, err := Question{Name: "example.com", Type: TypeA, Class: ClassIN}.Marshal()
	require.NoError(t, err)

	off := 0
	_, err = ParseQuestion(b[:len(b)-2], &off)
	assert.ErrorIs(t, err, ErrDNSError)
}

func TestQuestion_Equal(t *testing.T) {
	a := Question{Name: "Example.COM", Type: TypeA, Class: ClassIN}
	b := Question{Name: "example.com.", Type: TypeA, Class: ClassIN}
	assert.True(t, a.Equal(b))

	c := Question{Name: "example.com", Type: TypeAAAA, Class: ClassIN}
	assert.False(t, a.Equal(c))
}

func TestQuestion_String(t *testing.T) {
	q := Question{Name: "Example.com", Type: TypeMX, Class: ClassIN}
	assert.Equal(t, "example.com. IN MX", q.String())
}
