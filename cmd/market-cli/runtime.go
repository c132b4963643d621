package main

import (
	"encoding/hex"
	"errors"
	"fmt"

	"adalock.dev/market/config"
	"adalock.dev/market/crypto"
	"adalock.dev/market/ctxjson"
	"adalock.dev/market/validator"
)

type Request struct {
	Op          string           `json:"op"`
	ConfigPath  string           `json:"config,omitempty"`
	DatumHex    string           `json:"datum_hex,omitempty"`
	RedeemerHex string           `json:"redeemer_hex,omitempty"`
	Context     *ctxjson.Context `json:"context,omitempty"`
	FeeAddress  *ctxjson.Address `json:"fee_address,omitempty"`
	Authorizers []string         `json:"authorizers,omitempty"`
	TxHash      string           `json:"tx_hash,omitempty"`
	Index       uint64           `json:"index,omitempty"`
	PayoutSum   uint64           `json:"payout_sum,omitempty"`
}

type Response struct {
	Ok     bool       `json:"ok"`
	Err    string     `json:"err,omitempty"`
	Valid  *bool      `json:"valid,omitempty"`
	TagHex string     `json:"datum_tag,omitempty"`
	Fee    *uint64    `json:"fee,omitempty"`
	Datum  *DatumJSON `json:"datum,omitempty"`
}

type PayoutJSON struct {
	Address ctxjson.Address `json:"address"`
	Amount  uint64          `json:"amount"`
}

type DatumJSON struct {
	Payouts         []PayoutJSON `json:"payouts"`
	OwnerKeyHash    string       `json:"owner_key_hash,omitempty"`
	OwnerScriptHash string       `json:"owner_script_hash,omitempty"`
}

func handle(req Request) Response {
	switch req.Op {
	case "validate":
		return handleValidate(req)
	case "datum_tag":
		return handleDatumTag(req)
	case "fee":
		fee, err := validator.MarketplaceFee(req.PayoutSum)
		if err != nil {
			return errResp(err)
		}
		return Response{Ok: true, Fee: &fee}
	case "decode_datum":
		return handleDecodeDatum(req)
	default:
		return Response{Ok: false, Err: "unknown op"}
	}
}

func handleValidate(req Request) Response {
	if req.Context == nil {
		return Response{Ok: false, Err: "context required"}
	}
	datumBytes, err := hex.DecodeString(req.DatumHex)
	if err != nil {
		return Response{Ok: false, Err: "bad datum hex"}
	}
	redeemerBytes, err := hex.DecodeString(req.RedeemerHex)
	if err != nil {
		return Response{Ok: false, Err: "bad redeemer hex"}
	}
	datum, err := validator.DecodeListingDatum(datumBytes)
	if err != nil {
		return errResp(err)
	}
	redeemer, err := validator.DecodeRedeemer(redeemerBytes)
	if err != nil {
		return errResp(err)
	}
	params, err := buildParams(req)
	if err != nil {
		return Response{Ok: false, Err: err.Error()}
	}
	ctx, err := ctxjson.BuildContext(*req.Context)
	if err != nil {
		return Response{Ok: false, Err: err.Error()}
	}
	valid := validator.Validate(crypto.StdProvider{}, params, datum, redeemer, ctx)
	return Response{Ok: true, Valid: &valid}
}

func handleDatumTag(req Request) Response {
	txHash, err := ctxjson.ParseHash32(req.TxHash)
	if err != nil {
		return Response{Ok: false, Err: "bad tx_hash"}
	}
	tag, err := validator.DatumTag(crypto.StdProvider{}, validator.OutputReference{
		TxHash: txHash,
		Index:  req.Index,
	})
	if err != nil {
		return errResp(err)
	}
	return Response{Ok: true, TagHex: hex.EncodeToString(tag[:])}
}

func handleDecodeDatum(req Request) Response {
	datumBytes, err := hex.DecodeString(req.DatumHex)
	if err != nil {
		return Response{Ok: false, Err: "bad datum hex"}
	}
	datum, err := validator.DecodeListingDatum(datumBytes)
	if err != nil {
		return errResp(err)
	}
	out := &DatumJSON{Payouts: make([]PayoutJSON, 0, len(datum.Payouts))}
	for _, payout := range datum.Payouts {
		out.Payouts = append(out.Payouts, PayoutJSON{
			Address: ctxjson.EncodeAddress(payout.Address),
			Amount:  payout.Amount,
		})
	}
	ownerHex := hex.EncodeToString(datum.Owner.Hash[:])
	if datum.Owner.Kind == validator.KeyCredential {
		out.OwnerKeyHash = ownerHex
	} else {
		out.OwnerScriptHash = ownerHex
	}
	return Response{Ok: true, Datum: out}
}

func buildParams(req Request) (validator.Params, error) {
	if req.ConfigPath != "" {
		cfg, err := config.Load(req.ConfigPath)
		if err != nil {
			return validator.Params{}, err
		}
		return cfg.Params()
	}
	if req.FeeAddress == nil {
		return validator.Params{}, errors.New("fee_address required")
	}
	feeAddr, err := ctxjson.DecodeAddress(*req.FeeAddress)
	if err != nil {
		return validator.Params{}, fmt.Errorf("fee_address: %w", err)
	}
	params := validator.Params{FeeAddress: feeAddr}
	params.Authorizers = make([][28]byte, 0, len(req.Authorizers))
	for i, authorizer := range req.Authorizers {
		hash, err := ctxjson.ParseHash28(authorizer)
		if err != nil {
			return validator.Params{}, fmt.Errorf("authorizers[%d]: %w", i, err)
		}
		params.Authorizers = append(params.Authorizers, hash)
	}
	return params, nil
}

func errResp(err error) Response {
	var scriptErr *validator.ScriptError
	if errors.As(err, &scriptErr) {
		return Response{Ok: false, Err: string(scriptErr.Code)}
	}
	return Response{Ok: false, Err: err.Error()}
}
