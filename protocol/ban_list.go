package protocol

import (
	"bufio"
	"encoding/hex"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"auric/core"

	"github.com/pkg/errors"
)

const (
	CurrentBanListVersion = 1
)

var verRegex = regexp.MustCompile("^v([\\d]+)$")

func ParseBanListVersion(line string) (int, error) {
	splits := strings.Split(line, ":")
	if len(splits) != 2 {
		return 0, errors.New("ban list version must consist of two colon-separated components")
	}
	if splits[0] != "AURIBAN" {
		return 0, errors.New("ban list version must start with AURIBAN")
	}
	if !verRegex.MatchString(splits[1]) {
		return 0, errors.New("ban list version must end with v followed by a digit")
	}
	verStr := strings.TrimPrefix(splits[1], "v")
	verInt, err := strconv.Atoi(verStr)
	if err != nil {
		// should not happen given
		// regex check above
		panic(err)
	}
	return verInt, nil
}

// ReadBanList parses a versioned ban list: one AURIBAN version line
// followed by one hex-encoded 32-byte public key per line.
func ReadBanList(r io.Reader) ([]core.PublicKey, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return nil, errors.New("ban list must start with version line")
	}
	firstLine := scanner.Text()
	version, err := ParseBanListVersion(firstLine)
	if err != nil {
		return nil, err
	}
	if version != CurrentBanListVersion {
		return nil, errors.New("unsupported ban list version")
	}

	var keys []core.PublicKey
	i := 1
	for scanner.Scan() {
		line := strings.Trim(scanner.Text(), " \t")
		if line == "" {
			i++
			continue
		}
		raw, err := hex.DecodeString(line)
		if err != nil || len(raw) != 32 {
			return nil, errors.Errorf("invalid public key on line %d: %s", i, line)
		}
		var key core.PublicKey
		copy(key[:], raw)
		keys = append(keys, key)
		i++
	}
	return keys, nil
}

func FetchListFile(url string) ([]core.PublicKey, error) {
	res, err := http.Get(url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch list")
	}
	defer res.Body.Close()
	return ReadBanList(res.Body)
}
