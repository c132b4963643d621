package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"adalock.dev/market/ctxjson"
	"adalock.dev/market/store"
	"adalock.dev/market/validator"
)

// trackInput is the JSON a chain follower hands to `marketd track`: the
// escrow outpoint plus the listing datum exactly as it appears on chain.
type trackInput struct {
	TxHash   string `json:"tx_hash"`
	Index    uint64 `json:"index"`
	Slot     uint64 `json:"slot"`
	DatumHex string `json:"datum_hex"`
}

var (
	flagTrackFile string

	flagSettleSpendTx string
	flagSettleTotal   uint64
	flagSettleFee     uint64
	flagSettleSlot    uint64
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Record a new listing",
	Long:  "Reads a listing JSON document from --file (or stdin) and records it in the index.",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := os.Stdin
		if flagTrackFile != "" {
			f, err := os.Open(flagTrackFile) // #nosec G304 -- operator-supplied path.
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		var input trackInput
		if err := json.NewDecoder(in).Decode(&input); err != nil {
			return fmt.Errorf("parse listing: %w", err)
		}
		ref, err := parseOutpoint(input.TxHash, input.Index)
		if err != nil {
			return err
		}
		datumBytes, err := hex.DecodeString(input.DatumHex)
		if err != nil {
			return fmt.Errorf("bad datum hex: %w", err)
		}
		datum, err := validator.DecodeListingDatum(datumBytes)
		if err != nil {
			return err
		}
		db, err := openIndex()
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PutListing(ref, store.ListingRecord{Datum: datum, ListedSlot: input.Slot}); err != nil {
			return err
		}
		logger.Info().
			Str("tx_hash", input.TxHash).
			Uint64("index", input.Index).
			Int("payouts", len(datum.Payouts)).
			Uint64("slot", input.Slot).
			Msg("listing tracked")
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <tx_hash> <index>",
	Short: "Show one listing and its sale, if settled",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := parseOutpointArgs(args)
		if err != nil {
			return err
		}
		db, err := openIndex()
		if err != nil {
			return err
		}
		defer db.Close()
		listing, found, err := db.GetListing(ref)
		if err != nil {
			return err
		}
		sale, settled, err := db.GetSale(ref)
		if err != nil {
			return err
		}
		if !found && !settled {
			return fmt.Errorf("listing not found")
		}
		return printListing(cmd.OutOrStdout(), ref, listing, found, sale, settled)
	},
}

var settleCmd = &cobra.Command{
	Use:   "settle <tx_hash> <index>",
	Short: "Mark a listing as purchased",
	Long:  "Records the settling sale and removes the listing from the live set.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := parseOutpointArgs(args)
		if err != nil {
			return err
		}
		spendTx, err := ctxjson.ParseHash32(flagSettleSpendTx)
		if err != nil {
			return fmt.Errorf("bad --spend-tx: %w", err)
		}
		db, err := openIndex()
		if err != nil {
			return err
		}
		defer db.Close()
		_, found, err := db.GetListing(ref)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("listing not found")
		}
		if err := db.PutSale(ref, store.SaleRecord{
			SpendTxHash: spendTx,
			Total:       flagSettleTotal,
			Fee:         flagSettleFee,
			SettledSlot: flagSettleSlot,
		}); err != nil {
			return err
		}
		if err := db.DeleteListing(ref); err != nil {
			return err
		}
		logger.Info().
			Str("tx_hash", args[0]).
			Str("spend_tx", flagSettleSpendTx).
			Uint64("total", flagSettleTotal).
			Uint64("fee", flagSettleFee).
			Msg("listing settled")
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List live listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openIndex()
		if err != nil {
			return err
		}
		defer db.Close()
		count := 0
		err = db.ForEachListing(func(ref validator.OutputReference, rec store.ListingRecord) error {
			count++
			return printListing(cmd.OutOrStdout(), ref, rec, true, store.SaleRecord{}, false)
		})
		if err != nil {
			return err
		}
		logger.Debug().Int("count", count).Msg("listings enumerated")
		return nil
	},
}

type listingView struct {
	TxHash     string   `json:"tx_hash"`
	Index      uint64   `json:"index"`
	ListedSlot uint64   `json:"listed_slot,omitempty"`
	Owner      string   `json:"owner,omitempty"`
	OwnerKind  string   `json:"owner_kind,omitempty"`
	Payouts    []uint64 `json:"payout_amounts,omitempty"`
	Settled    bool     `json:"settled"`
	SpendTx    string   `json:"spend_tx,omitempty"`
	Total      uint64   `json:"total,omitempty"`
	Fee        uint64   `json:"fee,omitempty"`
}

func printListing(w io.Writer, ref validator.OutputReference, rec store.ListingRecord, found bool, sale store.SaleRecord, settled bool) error {
	view := listingView{
		TxHash:  hex.EncodeToString(ref.TxHash[:]),
		Index:   ref.Index,
		Settled: settled,
	}
	if found {
		view.ListedSlot = rec.ListedSlot
		view.Owner = hex.EncodeToString(rec.Datum.Owner.Hash[:])
		view.OwnerKind = "key"
		if rec.Datum.Owner.Kind == validator.ScriptCredential {
			view.OwnerKind = "script"
		}
		for _, payout := range rec.Datum.Payouts {
			view.Payouts = append(view.Payouts, payout.Amount)
		}
	}
	if settled {
		view.SpendTx = hex.EncodeToString(sale.SpendTxHash[:])
		view.Total = sale.Total
		view.Fee = sale.Fee
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(view)
}

func parseOutpointArgs(args []string) (validator.OutputReference, error) {
	var index uint64
	if _, err := fmt.Sscanf(args[1], "%d", &index); err != nil {
		return validator.OutputReference{}, fmt.Errorf("bad index %q", args[1])
	}
	return parseOutpoint(args[0], index)
}

func parseOutpoint(txHashHex string, index uint64) (validator.OutputReference, error) {
	txHash, err := ctxjson.ParseHash32(txHashHex)
	if err != nil {
		return validator.OutputReference{}, fmt.Errorf("bad tx_hash: %w", err)
	}
	return validator.OutputReference{TxHash: txHash, Index: index}, nil
}

func init() {
	trackCmd.Flags().StringVar(&flagTrackFile, "file", "", "listing JSON file (defaults to stdin)")
	settleCmd.Flags().StringVar(&flagSettleSpendTx, "spend-tx", "", "hash of the settling transaction")
	settleCmd.Flags().Uint64Var(&flagSettleTotal, "total", 0, "total lovelace paid to payouts")
	settleCmd.Flags().Uint64Var(&flagSettleFee, "fee", 0, "lovelace paid to the marketplace")
	settleCmd.Flags().Uint64Var(&flagSettleSlot, "slot", 0, "slot of the settling transaction")
	_ = settleCmd.MarkFlagRequired("spend-tx")
}
