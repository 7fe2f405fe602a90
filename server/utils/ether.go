package utils

import (
	"fmt"
	"game-lottery/server/constant"
	"game-lottery/server/model"
	"math/big"
	"strings"
)

var weiPerEther = new(big.Int).SetUint64(constant.WeiPerEther)

// ToWei converts a decimal ether amount such as "0.001" into wei.
func ToWei(ether string) (model.Wei, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(ether))
	if !ok {
		return 0, fmt.Errorf("invalid ether amount %q", ether)
	}
	if r.Sign() < 0 {
		return 0, fmt.Errorf("negative ether amount %q", ether)
	}

	r.Mul(r, new(big.Rat).SetInt(weiPerEther))
	if !r.IsInt() {
		return 0, fmt.Errorf("ether amount %q has more than 18 decimals", ether)
	}

	wei := r.Num()
	if !wei.IsUint64() {
		return 0, fmt.Errorf("ether amount %q out of range", ether)
	}
	return model.Wei(wei.Uint64()), nil
}

// FromWei formats wei as a decimal ether string without trailing zeros.
func FromWei(wei model.Wei) string {
	r := new(big.Rat).SetFrac(new(big.Int).SetUint64(uint64(wei)), weiPerEther)
	s := r.FloatString(18)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
