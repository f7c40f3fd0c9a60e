package domain

import "time"

// Env describes the block context a message is executed in.
type Env struct {
	BlockHeight     uint64 `json:"block_height"`
	BlockTime       uint64 `json:"block_time"`
	ContractAddress string `json:"contract_address"`
}

func (env Env) Time() time.Time {
	return time.Unix(int64(env.BlockTime), 0)
}

// MessageInfo carries the caller and the funds attached to a message. Cw20 funds
// appear here after the receive hook is unwrapped.
type MessageInfo struct {
	Sender string  `json:"sender"`
	Funds  []Asset `json:"funds"`
}
