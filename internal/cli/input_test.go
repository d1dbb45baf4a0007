package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func stubPassword(t *testing.T, answers ...string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) {
		if len(answers) == 0 {
			return nil, errors.New("no more input")
		}
		a := answers[0]
		answers = answers[1:]
		return []byte(a), nil
	}
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	require.NoError(t, err)
	require.Equal(t, "hello world", got)
	require.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	require.NoError(t, err)
	require.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	require.Error(t, err)
}

func TestGetSecret(t *testing.T) {
	stubPassword(t, "s3cret")
	var out bytes.Buffer
	got, err := GetSecret("Key", &out)
	require.NoError(t, err)
	require.Equal(t, []byte("s3cret"), got)
	require.Equal(t, "Key: \n", out.String())
}

func TestGetSecret_Error(t *testing.T) {
	stubPassword(t)
	var out bytes.Buffer
	_, err := GetSecret("Key", &out)
	require.Error(t, err)
}

func TestDecodeHexKey(t *testing.T) {
	key, err := decodeHexKey([]byte(" 0a0b \n"), 2)
	require.NoError(t, err)
	require.Equal(t, []byte{0x0a, 0x0b}, key)

	_, err = decodeHexKey([]byte("zz"), 1)
	require.ErrorContains(t, err, "not hex")

	_, err = decodeHexKey([]byte("0a0b"), 3)
	require.ErrorContains(t, err, "must be 3 bytes")
}
