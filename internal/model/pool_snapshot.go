package model

// PoolSnapshot is one observation of pool state for storage.
type PoolSnapshot struct {
	ChainID      uint64 `json:"chain_id"`
	Pool         string `json:"pool"`
	BlockNumber  uint64 `json:"block_number"`
	ObservedAt   string `json:"observed_at"`
	TickSpacing  int64  `json:"tick_spacing"`
	Tick         int64  `json:"tick"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Liquidity    string `json:"liquidity"`
	Price        string `json:"price,omitempty"`
	Unlocked     bool   `json:"unlocked"`
}
