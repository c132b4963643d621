package config

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"adalock.dev/market/validator"
)

// Config is the deployment configuration of a validator instance. The fee
// address and authorizer set are fixed at deploy time; changing them means
// deploying a new script, not editing a running one.
type Config struct {
	Network     string        `json:"network"`
	DataDir     string        `json:"data_dir"`
	LogLevel    string        `json:"log_level"`
	FeeAddress  AddressConfig `json:"fee_address"`
	Authorizers []string      `json:"authorizers"`
}

// AddressConfig is the hex form of the marketplace fee address: a payment
// key hash plus an optional stake key hash, 28 bytes each.
type AddressConfig struct {
	PaymentKeyHash string `json:"payment_key_hash"`
	StakeKeyHash   string `json:"stake_key_hash,omitempty"`
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".adalock"
	}
	return filepath.Join(home, ".adalock")
}

func DefaultConfig() Config {
	return Config{
		Network:  "preprod",
		DataDir:  DefaultDataDir(),
		LogLevel: "info",
	}
}

func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path) // #nosec G304 -- operator-supplied config path.
	if err != nil {
		return Config{}, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Network) == "" {
		return errors.New("network is required")
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("data_dir is required")
	}
	logLevel := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, ok := allowedLogLevels[logLevel]; !ok {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	if _, err := parseHash28(cfg.FeeAddress.PaymentKeyHash); err != nil {
		return fmt.Errorf("invalid fee_address.payment_key_hash: %w", err)
	}
	if cfg.FeeAddress.StakeKeyHash != "" {
		if _, err := parseHash28(cfg.FeeAddress.StakeKeyHash); err != nil {
			return fmt.Errorf("invalid fee_address.stake_key_hash: %w", err)
		}
	}
	for i, authorizer := range cfg.Authorizers {
		if _, err := parseHash28(authorizer); err != nil {
			return fmt.Errorf("invalid authorizers[%d]: %w", i, err)
		}
	}
	return nil
}

// Params converts the configuration into the immutable value injected into
// the decision procedure.
func (cfg Config) Params() (validator.Params, error) {
	if err := ValidateConfig(cfg); err != nil {
		return validator.Params{}, err
	}
	payment, err := parseHash28(cfg.FeeAddress.PaymentKeyHash)
	if err != nil {
		return validator.Params{}, err
	}
	params := validator.Params{
		FeeAddress: validator.Address{
			Payment: validator.Credential{Kind: validator.KeyCredential, Hash: payment},
		},
	}
	if cfg.FeeAddress.StakeKeyHash != "" {
		stake, err := parseHash28(cfg.FeeAddress.StakeKeyHash)
		if err != nil {
			return validator.Params{}, err
		}
		params.FeeAddress.HasStake = true
		params.FeeAddress.Stake = validator.Credential{Kind: validator.KeyCredential, Hash: stake}
	}
	params.Authorizers = make([][28]byte, 0, len(cfg.Authorizers))
	for _, authorizer := range cfg.Authorizers {
		hash, err := parseHash28(authorizer)
		if err != nil {
			return validator.Params{}, err
		}
		params.Authorizers = append(params.Authorizers, hash)
	}
	return params, nil
}

func parseHash28(s string) ([28]byte, error) {
	var out [28]byte
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return out, err
	}
	if len(b) != 28 {
		return out, fmt.Errorf("want 28 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}
