package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	urlOne   = "https://eth-mainnet.example.com/v2/key"
	urlTwo   = "wss://eth-mainnet.example.com/ws"
	tokenOne = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	tokenTwo = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rbtr.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func document(u1, u2, t1, t2 string) string {
	return "url_one = \"" + u1 + "\"\n" +
		"url_two = \"" + u2 + "\"\n" +
		"token_one = \"" + t1 + "\"\n" +
		"token_two = \"" + t2 + "\"\n"
}

func TestParse(t *testing.T) {
	cfg, err := Parse(writeConfig(t, document(urlOne, urlTwo, tokenOne, tokenTwo)))
	require.NoError(t, err)

	assert.Equal(t, urlOne, cfg.URLOne.String())
	assert.Equal(t, urlTwo, cfg.URLTwo.String())
	assert.Equal(t, common.HexToAddress(tokenOne), cfg.TokenOne)
	assert.Equal(t, common.HexToAddress(tokenTwo), cfg.TokenTwo)
	assert.Equal(t, tokenOne, cfg.TokenOne.Hex())
}

func TestParseMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")
	_, err := Parse(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), path)
}

func TestParseFormatErrors(t *testing.T) {
	cases := map[string]struct {
		body  string
		field string
	}{
		"malformed": {body: "url_one = \n"},
		"wrong type": {
			body: "url_one = 5\nurl_two = \"" + urlTwo + "\"\ntoken_one = \"" + tokenOne + "\"\ntoken_two = \"" + tokenTwo + "\"\n",
		},
		"unknown key": {body: document(urlOne, urlTwo, tokenOne, tokenTwo) + "extra = \"x\"\n"},
		"missing url_two": {
			body:  "url_one = \"" + urlOne + "\"\ntoken_one = \"" + tokenOne + "\"\ntoken_two = \"" + tokenTwo + "\"\n",
			field: "url_two",
		},
		"missing token_two": {
			body:  "url_one = \"" + urlOne + "\"\nurl_two = \"" + urlTwo + "\"\ntoken_one = \"" + tokenOne + "\"\n",
			field: "token_two",
		},
		"empty": {body: "", field: "url_one"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(writeConfig(t, tc.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFormat)

			var cfgErr *Error
			require.ErrorAs(t, err, &cfgErr)
			if tc.field != "" {
				assert.Equal(t, tc.field, cfgErr.Field)
				assert.Contains(t, err.Error(), tc.field)
			}
		})
	}
}

func TestParseValidationErrors(t *testing.T) {
	cases := map[string]struct {
		body  string
		field string
		value string
	}{
		"url_one no scheme":  {document("localhost:8545/path", urlTwo, tokenOne, tokenTwo), "url_one", "localhost:8545/path"},
		"url_one garbage":    {document("not a url", urlTwo, tokenOne, tokenTwo), "url_one", "not a url"},
		"url_two bad escape": {document(urlOne, "http://host/%zz", tokenOne, tokenTwo), "url_two", "http://host/%zz"},
		"token_one short":    {document(urlOne, urlTwo, "0x1234", tokenTwo), "token_one", "0x1234"},
		"token_two non-hex":  {document(urlOne, urlTwo, tokenOne, "0xZZ2aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"), "token_two", "0xZZ2aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"},
		"token_two too long": {document(urlOne, urlTwo, tokenOne, tokenTwo+"00"), "token_two", tokenTwo + "00"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(writeConfig(t, tc.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var cfgErr *Error
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.field, cfgErr.Field)
			assert.Equal(t, tc.value, cfgErr.Value)
			assert.Contains(t, err.Error(), tc.field)
			assert.Contains(t, err.Error(), tc.value)
		})
	}
}

func TestParseValidationOrder(t *testing.T) {
	// Both URLs and both tokens are bad; url_one is reported.
	_, err := Parse(writeConfig(t, document("bad", "bad", "bad", "bad")))
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "url_one", cfgErr.Field)

	_, err = Parse(writeConfig(t, document(urlOne, urlTwo, "bad", "bad")))
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "token_one", cfgErr.Field)
}

func TestConfigEndpoint(t *testing.T) {
	cfg, err := Parse(writeConfig(t, document(urlOne, urlTwo, tokenOne, tokenTwo)))
	require.NoError(t, err)

	u, err := cfg.Endpoint(EndpointOne)
	require.NoError(t, err)
	assert.Equal(t, urlOne, u.String())

	u.Host = "changed"
	assert.Equal(t, urlOne, cfg.URLOne.String())

	u, err = cfg.Endpoint(EndpointTwo)
	require.NoError(t, err)
	assert.Equal(t, urlTwo, u.String())

	_, err = cfg.Endpoint("three")
	assert.Error(t, err)
}
