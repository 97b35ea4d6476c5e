package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pelletier/go-toml/v2"
)

// Endpoint names accepted by Config.Endpoint.
const (
	EndpointOne = "one"
	EndpointTwo = "two"
)

// Config holds the validated operator file. All four fields are always set.
type Config struct {
	URLOne   *url.URL
	URLTwo   *url.URL
	TokenOne common.Address
	TokenTwo common.Address
}

type rawConfig struct {
	URLOne   *string `toml:"url_one"`
	URLTwo   *string `toml:"url_two"`
	TokenOne *string `toml:"token_one"`
	TokenTwo *string `toml:"token_two"`
}

// Parse reads and validates a TOML operator file. The first failure aborts the
// load; fields are checked in the order url_one, url_two, token_one, token_two.
func Parse(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &Error{Kind: ErrIO, Path: path, Err: err}
	}

	var raw rawConfig
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return Config{}, &Error{Kind: ErrFormat, Path: path, Err: err}
	}

	required := []struct {
		key   string
		value *string
	}{
		{"url_one", raw.URLOne},
		{"url_two", raw.URLTwo},
		{"token_one", raw.TokenOne},
		{"token_two", raw.TokenTwo},
	}
	for _, field := range required {
		if field.value == nil {
			return Config{}, &Error{Kind: ErrFormat, Path: path, Field: field.key, Err: fmt.Errorf("missing required key")}
		}
	}

	var cfg Config
	if cfg.URLOne, err = parseURL("url_one", *raw.URLOne); err != nil {
		return Config{}, err
	}
	if cfg.URLTwo, err = parseURL("url_two", *raw.URLTwo); err != nil {
		return Config{}, err
	}
	if cfg.TokenOne, err = parseAddress("token_one", *raw.TokenOne); err != nil {
		return Config{}, err
	}
	if cfg.TokenTwo, err = parseAddress("token_two", *raw.TokenTwo); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Endpoint returns a copy of the URL selected by name.
func (c Config) Endpoint(name string) (*url.URL, error) {
	var u *url.URL
	switch name {
	case EndpointOne:
		u = c.URLOne
	case EndpointTwo:
		u = c.URLTwo
	default:
		return nil, fmt.Errorf("unknown endpoint %q (want %s or %s)", name, EndpointOne, EndpointTwo)
	}
	if u == nil {
		return nil, fmt.Errorf("endpoint %s is not set", name)
	}
	cp := *u
	return &cp, nil
}

func parseURL(field, raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &Error{Kind: ErrValidation, Field: field, Value: raw, Err: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, &Error{Kind: ErrValidation, Field: field, Value: raw, Err: fmt.Errorf("scheme and host are required")}
	}
	return u, nil
}

func parseAddress(field, raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, &Error{Kind: ErrValidation, Field: field, Value: raw, Err: fmt.Errorf("want %d hex-encoded bytes", common.AddressLength)}
	}
	return common.HexToAddress(raw), nil
}
