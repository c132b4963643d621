package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"adalock.dev/market/config"
	"adalock.dev/market/crypto"
	"adalock.dev/market/ctxjson"
	"adalock.dev/market/store"
	"adalock.dev/market/validator"
)

var (
	flagVerifyConfig   string
	flagVerifyRedeemer string
	flagVerifyContext  string
)

var verifyCmd = &cobra.Command{
	Use:   "verify <tx_hash> <index>",
	Short: "Run the purchase predicate against a tracked listing",
	Long: "Loads the listing stored for the outpoint, decodes the redeemer, and " +
		"evaluates the spend against the supplied transaction context.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := parseOutpointArgs(args)
		if err != nil {
			return err
		}
		cfg, err := config.Load(flagVerifyConfig)
		if err != nil {
			return err
		}
		params, err := cfg.Params()
		if err != nil {
			return err
		}
		in := os.Stdin
		if flagVerifyContext != "" {
			f, err := os.Open(flagVerifyContext) // #nosec G304 -- operator-supplied path.
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		var doc ctxjson.Context
		if err := json.NewDecoder(in).Decode(&doc); err != nil {
			return fmt.Errorf("parse context: %w", err)
		}
		db, err := openIndex()
		if err != nil {
			return err
		}
		defer db.Close()
		valid, err := runVerify(db, params, ref, flagVerifyRedeemer, doc)
		if err != nil {
			return err
		}
		logger.Info().
			Str("tx_hash", args[0]).
			Bool("valid", valid).
			Msg("listing verified")
		enc := json.NewEncoder(cmd.OutOrStdout())
		return enc.Encode(struct {
			Valid bool `json:"valid"`
		}{Valid: valid})
	},
}

// runVerify evaluates the spend of a tracked listing. The context document
// supplies outputs, signatories and withdrawals; the spend purpose is the
// outpoint itself, so any purpose fields in the document are overridden.
func runVerify(db *store.DB, params validator.Params, ref validator.OutputReference, redeemerHex string, doc ctxjson.Context) (bool, error) {
	rec, found, err := db.GetListing(ref)
	if err != nil {
		return false, err
	}
	if !found {
		return false, fmt.Errorf("listing not found")
	}
	redeemerBytes, err := hex.DecodeString(redeemerHex)
	if err != nil {
		return false, fmt.Errorf("bad redeemer hex: %w", err)
	}
	redeemer, err := validator.DecodeRedeemer(redeemerBytes)
	if err != nil {
		return false, err
	}
	doc.Purpose = "spend"
	doc.SpentTxHash = hex.EncodeToString(ref.TxHash[:])
	doc.SpentIndex = ref.Index
	ctx, err := ctxjson.BuildContext(doc)
	if err != nil {
		return false, err
	}
	return validator.Validate(crypto.StdProvider{}, params, rec.Datum, redeemer, ctx), nil
}

func init() {
	verifyCmd.Flags().StringVar(&flagVerifyConfig, "config", "", "deployment config with fee address and authorizers")
	verifyCmd.Flags().StringVar(&flagVerifyRedeemer, "redeemer", "", "hex CBOR redeemer")
	verifyCmd.Flags().StringVar(&flagVerifyContext, "context", "", "transaction context JSON file (defaults to stdin)")
	_ = verifyCmd.MarkFlagRequired("config")
	_ = verifyCmd.MarkFlagRequired("redeemer")
}
