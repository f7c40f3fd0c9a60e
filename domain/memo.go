package domain

import "encoding/json"

type Memorable interface {
	ToJson() string
	FromJson(jstr string) error
}

type Memo struct {
	Key  string `json:"key"`
	Memo string `json:"memo"`
}

// ContractConfig is the engine-wide configuration, kept as a memo record.
type ContractConfig struct {
	Owner           string `json:"owner"`
	Registrar       string `json:"registrar"`
	NextEndowmentID uint32 `json:"next_endowment_id"`
}

func (obj *ContractConfig) ToJson() string {
	jstr, err := json.Marshal(obj)
	if err != nil {
		return err.Error()
	}
	return string(jstr)
}

func (obj *ContractConfig) FromJson(jstr string) error {
	err := json.Unmarshal([]byte(jstr), obj)
	return err
}
