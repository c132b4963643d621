// Package ctxjson defines the JSON documents the command-line tools use to
// describe addresses and transaction contexts, and their conversion to the
// validator's types.
package ctxjson

import (
	"encoding/hex"
	"errors"
	"fmt"

	"adalock.dev/market/validator"
)

// Address holds the hex credential hashes of an address. Exactly one of
// the payment fields must be set; at most one of the stake fields.
type Address struct {
	PaymentKeyHash    string `json:"payment_key_hash,omitempty"`
	PaymentScriptHash string `json:"payment_script_hash,omitempty"`
	StakeKeyHash      string `json:"stake_key_hash,omitempty"`
	StakeScriptHash   string `json:"stake_script_hash,omitempty"`
}

type Output struct {
	Address  Address `json:"address"`
	Lovelace uint64  `json:"lovelace"`
	DatumTag string  `json:"datum_tag,omitempty"`
}

type Withdrawal struct {
	KeyHash    string `json:"key_hash,omitempty"`
	ScriptHash string `json:"script_hash,omitempty"`
	Amount     uint64 `json:"amount"`
}

type Context struct {
	Purpose     string       `json:"purpose"`
	SpentTxHash string       `json:"spent_tx_hash,omitempty"`
	SpentIndex  uint64       `json:"spent_index,omitempty"`
	Outputs     []Output     `json:"outputs"`
	Signatories []string     `json:"extra_signatories,omitempty"`
	Withdrawals []Withdrawal `json:"withdrawals,omitempty"`
}

func BuildContext(in Context) (validator.ScriptContext, error) {
	ctx := validator.ScriptContext{
		Purpose: validator.ScriptPurpose{Kind: validator.PurposeOther},
	}
	switch in.Purpose {
	case "spend":
		txHash, err := ParseHash32(in.SpentTxHash)
		if err != nil {
			return validator.ScriptContext{}, fmt.Errorf("spent_tx_hash: %w", err)
		}
		ctx.Purpose = validator.ScriptPurpose{
			Kind:     validator.PurposeSpend,
			SpentRef: validator.OutputReference{TxHash: txHash, Index: in.SpentIndex},
		}
	case "other", "":
	default:
		return validator.ScriptContext{}, fmt.Errorf("unknown purpose %q", in.Purpose)
	}
	ctx.Outputs = make([]validator.TxOut, 0, len(in.Outputs))
	for i, out := range in.Outputs {
		addr, err := DecodeAddress(out.Address)
		if err != nil {
			return validator.ScriptContext{}, fmt.Errorf("outputs[%d]: %w", i, err)
		}
		txOut := validator.TxOut{Address: addr, Lovelace: out.Lovelace}
		if out.DatumTag != "" {
			tag, err := ParseHash32(out.DatumTag)
			if err != nil {
				return validator.ScriptContext{}, fmt.Errorf("outputs[%d].datum_tag: %w", i, err)
			}
			txOut.Datum = validator.OutputDatum{Kind: validator.DatumHash, Hash: tag}
		}
		ctx.Outputs = append(ctx.Outputs, txOut)
	}
	ctx.ExtraSignatories = make([][28]byte, 0, len(in.Signatories))
	for i, signatory := range in.Signatories {
		key, err := ParseHash28(signatory)
		if err != nil {
			return validator.ScriptContext{}, fmt.Errorf("extra_signatories[%d]: %w", i, err)
		}
		ctx.ExtraSignatories = append(ctx.ExtraSignatories, key)
	}
	if len(in.Withdrawals) > 0 {
		ctx.Withdrawals = make(map[validator.Credential]uint64, len(in.Withdrawals))
		for i, withdrawal := range in.Withdrawals {
			cred, err := DecodeCredential(withdrawal.KeyHash, withdrawal.ScriptHash)
			if err != nil {
				return validator.ScriptContext{}, fmt.Errorf("withdrawals[%d]: %w", i, err)
			}
			ctx.Withdrawals[cred] = withdrawal.Amount
		}
	}
	return ctx, nil
}

func DecodeAddress(in Address) (validator.Address, error) {
	payment, err := DecodeCredential(in.PaymentKeyHash, in.PaymentScriptHash)
	if err != nil {
		return validator.Address{}, err
	}
	addr := validator.Address{Payment: payment}
	if in.StakeKeyHash != "" || in.StakeScriptHash != "" {
		stake, err := DecodeCredential(in.StakeKeyHash, in.StakeScriptHash)
		if err != nil {
			return validator.Address{}, err
		}
		addr.HasStake = true
		addr.Stake = stake
	}
	return addr, nil
}

func EncodeAddress(addr validator.Address) Address {
	var out Address
	paymentHex := hex.EncodeToString(addr.Payment.Hash[:])
	if addr.Payment.Kind == validator.KeyCredential {
		out.PaymentKeyHash = paymentHex
	} else {
		out.PaymentScriptHash = paymentHex
	}
	if addr.HasStake {
		stakeHex := hex.EncodeToString(addr.Stake.Hash[:])
		if addr.Stake.Kind == validator.KeyCredential {
			out.StakeKeyHash = stakeHex
		} else {
			out.StakeScriptHash = stakeHex
		}
	}
	return out
}

func DecodeCredential(keyHash, scriptHash string) (validator.Credential, error) {
	switch {
	case keyHash != "" && scriptHash != "":
		return validator.Credential{}, errors.New("both key and script hash set")
	case keyHash != "":
		hash, err := ParseHash28(keyHash)
		if err != nil {
			return validator.Credential{}, err
		}
		return validator.Credential{Kind: validator.KeyCredential, Hash: hash}, nil
	case scriptHash != "":
		hash, err := ParseHash28(scriptHash)
		if err != nil {
			return validator.Credential{}, err
		}
		return validator.Credential{Kind: validator.ScriptCredential, Hash: hash}, nil
	default:
		return validator.Credential{}, errors.New("credential hash required")
	}
}

func ParseHash28(s string) ([28]byte, error) {
	var out [28]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(b) != 28 {
		return out, fmt.Errorf("want 28 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func ParseHash32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("want 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}
