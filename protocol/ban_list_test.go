package protocol

import (
	"bytes"
	"testing"

	"auric/core"

	"github.com/stretchr/testify/require"
)

func TestParseBanListVersion(t *testing.T) {
	invalidTests := []struct {
		in  string
		err string
	}{
		{"", "colon-separated components"},
		{"whatever", "colon-separated components"},
		{":", "start with AURIBAN"},
		{"AURIBAN", "colon-separated components"},
		{"AURIBAN:", "end with v followed by a digit"},
		{"AURIBAN:beep", "end with v followed by a digit"},
		{"AURIBAN:1", "end with v followed by a digit"},
	}

	for _, test := range invalidTests {
		ver, err := ParseBanListVersion(test.in)
		require.Equal(t, 0, ver)
		require.Error(t, err)
		require.Contains(t, err.Error(), test.err)
	}

	validTests := []struct {
		in  string
		ver int
	}{
		{"AURIBAN:v0", 0},
		{"AURIBAN:v1", 1},
		{"AURIBAN:v10", 10},
	}

	for _, test := range validTests {
		ver, err := ParseBanListVersion(test.in)
		require.NoError(t, err)
		require.Equal(t, test.ver, ver)
	}
}

func TestReadBanList(t *testing.T) {
	invalidTests := []struct {
		in  string
		err string
	}{
		{
			"",
			"must start with version line",
		},
		{
			"AURIBAN:",
			"v followed by a digit",
		},
		{
			"AURIBAN:v1\nnot-hex",
			"invalid public key",
		},
		{
			"AURIBAN:v0\n" + oneHexKey(1),
			"unsupported ban list version",
		},
	}

	for _, test := range invalidTests {
		keys, err := ReadBanList(bytes.NewReader([]byte(test.in)))
		require.Nil(t, keys)
		require.Error(t, err)
		require.Contains(t, err.Error(), test.err)
	}

	k1, k2 := oneHexKey(1), oneHexKey(2)
	validTests := []struct {
		in  string
		out int
	}{
		{"AURIBAN:v1\n" + k1 + "\n" + k2, 2},
		{"AURIBAN:v1", 0},
		{"AURIBAN:v1\n", 0},
		{"AURIBAN:v1\n  " + k1 + "  \n", 1},
	}

	for _, test := range validTests {
		keys, err := ReadBanList(bytes.NewReader([]byte(test.in)))
		require.NoError(t, err)
		require.Equal(t, test.out, len(keys))
	}
}

func oneHexKey(b byte) string {
	var key core.PublicKey
	key[0] = b
	return key.String()
}
