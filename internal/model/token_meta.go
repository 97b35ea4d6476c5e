package model

// TokenMeta is the ERC20 metadata of one configured token. Role names the
// config key the address came from (token_one, token_two).
type TokenMeta struct {
	Role     string `json:"role,omitempty"`
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol,omitempty"`
	Name     string `json:"name,omitempty"`
}

// Label is the symbol when known, otherwise the address.
func (m TokenMeta) Label() string {
	if m.Symbol != "" {
		return m.Symbol
	}
	return m.Address
}
