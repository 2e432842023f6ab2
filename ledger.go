package wallet

import (
	"fmt"
	"time"
)

// RawOperation is one operation record as Horizon returns it (and as the
// fetch cache stores it). Only the fields the ledger builder reads are kept.
type RawOperation struct {
	ID              string `json:"id"`
	PagingToken     string `json:"paging_token,omitempty"`
	TransactionHash string `json:"transaction_hash,omitempty"`
	Type            string `json:"type"`

	// create_account
	Funder          string `json:"funder,omitempty"`
	Account         string `json:"account,omitempty"`
	StartingBalance string `json:"starting_balance,omitempty"`

	// payment and path payments
	From            string `json:"from,omitempty"`
	To              string `json:"to,omitempty"`
	Amount          string `json:"amount,omitempty"`
	AssetType       string `json:"asset_type,omitempty"`
	AssetCode       string `json:"asset_code,omitempty"`
	SourceAmount    string `json:"source_amount,omitempty"`
	SourceAssetType string `json:"source_asset_type,omitempty"`
	SourceAssetCode string `json:"source_asset_code,omitempty"`

	// invoke_host_function
	AssetBalanceChanges []BalanceChange `json:"asset_balance_changes,omitempty"`
}

// BalanceChange is one entry of an invoke_host_function operation's
// asset_balance_changes list.
type BalanceChange struct {
	Type      string `json:"type"` // "transfer", "mint", "burn"
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Amount    string `json:"amount"`
	AssetType string `json:"asset_type"`
	AssetCode string `json:"asset_code,omitempty"`
}

// RawTransaction is one ledger transaction with its operations, as fetched
// from Horizon.
type RawTransaction struct {
	Hash       string         `json:"hash"`
	CreatedAt  time.Time      `json:"created_at"`
	FeeCharged string         `json:"fee_charged"` // raw atomic XLM
	FeeAccount string         `json:"fee_account"`
	Operations []RawOperation `json:"operations,omitempty"`
}

// TxRow is one normalized ledger transaction: its typed operation summaries
// and the wallet's balance snapshot immediately after the transaction,
// including the fee deduction. Created once by BuildLedger; immutable
// thereafter.
type TxRow struct {
	Hash       string      `json:"hash"`
	Time       time.Time   `json:"time"`
	FeeAtomic  int64       `json:"fee,omitempty"` // zero if this wallet did not pay it
	Operations []Operation `json:"operations"`
	Balances   Balances    `json:"balances"`
}

// BuildLedger turns a chronological list of raw transactions plus the
// wallet's own address into normalized TxRow values with running balances.
//
// Operations are processed in their on-chain order, mutating a single running
// balance. After a transaction's operations, the network fee is debited once
// if this wallet paid it. Any unrecognized operation kind or asset code is a
// hard error: silently skipping records would corrupt the cost basis.
func BuildLedger(wallet string, txs []RawTransaction) ([]TxRow, error) {
	running := NewBalances()
	rows := make([]TxRow, 0, len(txs))
	for _, tx := range txs {
		row := TxRow{Hash: tx.Hash, Time: tx.CreatedAt.UTC()}
		for _, op := range tx.Operations {
			summaries, err := normalize(wallet, op, running)
			if err != nil {
				return nil, fmt.Errorf("transaction %s: %w", tx.Hash, err)
			}
			row.Operations = append(row.Operations, summaries...)
		}
		if tx.FeeAccount == wallet && tx.FeeCharged != "" {
			fee, err := ParseAtomic(tx.FeeCharged)
			if err != nil {
				return nil, fmt.Errorf("transaction %s: invalid fee: %w", tx.Hash, err)
			}
			running[XLM] -= fee
			row.FeeAtomic = fee
		}
		row.Balances = running.Clone()
		rows = append(rows, row)
	}
	return rows, nil
}

// normalize converts one raw operation into its summaries, applying its
// balance effect to the running balances. A single raw operation can yield
// several summaries (invoke_host_function balance changes), or none.
func normalize(wallet string, op RawOperation, running Balances) ([]Operation, error) {
	switch op.Type {
	case "create_account":
		amount, err := ParseAtomic(op.StartingBalance)
		if err != nil {
			return nil, fmt.Errorf("operation %s: %w", op.ID, err)
		}
		if op.Account == wallet {
			running[XLM] += amount
			return []Operation{CreateAccount{From: op.Funder, To: op.Account, Amount: amount}}, nil
		}
		if op.Funder == wallet {
			// We funded another account: economically an outbound payment.
			running[XLM] -= amount
			return []Operation{Payment{Direction: Out, From: op.Funder, To: op.Account, Currency: XLM, Amount: amount}}, nil
		}
		return nil, fmt.Errorf("operation %s: create_account does not involve wallet", op.ID)

	case "payment":
		cur, err := ParseAsset(op.AssetType, op.AssetCode)
		if err != nil {
			return nil, fmt.Errorf("operation %s: %w", op.ID, err)
		}
		amount, err := ParseAtomic(op.Amount)
		if err != nil {
			return nil, fmt.Errorf("operation %s: %w", op.ID, err)
		}
		switch {
		case op.To == wallet && op.From == wallet:
			// Self payment, no net balance effect.
			return []Operation{Audit{Type: op.Type}}, nil
		case op.To == wallet:
			running[cur] += amount
			return []Operation{Payment{Direction: In, From: op.From, To: op.To, Currency: cur, Amount: amount}}, nil
		case op.From == wallet:
			running[cur] -= amount
			return []Operation{Payment{Direction: Out, From: op.From, To: op.To, Currency: cur, Amount: amount}}, nil
		default:
			return nil, fmt.Errorf("operation %s: payment does not involve wallet", op.ID)
		}

	case "path_payment_strict_send", "path_payment_strict_receive":
		src, err := ParseAsset(op.SourceAssetType, op.SourceAssetCode)
		if err != nil {
			return nil, fmt.Errorf("operation %s: %w", op.ID, err)
		}
		dst, err := ParseAsset(op.AssetType, op.AssetCode)
		if err != nil {
			return nil, fmt.Errorf("operation %s: %w", op.ID, err)
		}
		srcAmount, err := ParseAtomic(op.SourceAmount)
		if err != nil {
			return nil, fmt.Errorf("operation %s: %w", op.ID, err)
		}
		dstAmount, err := ParseAtomic(op.Amount)
		if err != nil {
			return nil, fmt.Errorf("operation %s: %w", op.ID, err)
		}
		switch {
		case op.From == wallet && op.To == wallet:
			// Wallet is both source and destination: a currency swap.
			// The two legs keep their own amounts; this also covers the
			// degenerate same-asset arbitrage payment.
			running[src] -= srcAmount
			running[dst] += dstAmount
			return []Operation{Swap{Source: src, SourceAmount: srcAmount, Destination: dst, DestinationAmount: dstAmount}}, nil
		case op.To == wallet:
			running[dst] += dstAmount
			return []Operation{Payment{Direction: In, From: op.From, To: op.To, Currency: dst, Amount: dstAmount}}, nil
		case op.From == wallet:
			running[src] -= srcAmount
			return []Operation{Payment{Direction: Out, From: op.From, To: op.To, Currency: src, Amount: srcAmount}}, nil
		default:
			return nil, fmt.Errorf("operation %s: path payment does not involve wallet", op.ID)
		}

	case "invoke_host_function":
		var summaries []Operation
		for _, bc := range op.AssetBalanceChanges {
			if bc.Type != "transfer" {
				continue
			}
			cur, err := ParseAsset(bc.AssetType, bc.AssetCode)
			if err != nil {
				return nil, fmt.Errorf("operation %s: %w", op.ID, err)
			}
			amount, err := ParseAtomic(bc.Amount)
			if err != nil {
				return nil, fmt.Errorf("operation %s: %w", op.ID, err)
			}
			switch {
			case bc.From == wallet:
				running[cur] -= amount
				summaries = append(summaries, BlendDeposit{From: bc.From, To: bc.To, Currency: cur, Amount: amount})
			case bc.To == wallet:
				running[cur] += amount
				summaries = append(summaries, BlendWithdraw{From: bc.From, To: bc.To, Currency: cur, Amount: amount})
			}
		}
		if summaries == nil {
			summaries = []Operation{Audit{Type: op.Type}}
		}
		return summaries, nil

	case "change_trust", "set_options", "manage_data", "set_trust_line_flags",
		"create_claimable_balance":
		// No balance effect, recorded for audit only.
		return []Operation{Audit{Type: op.Type}}, nil

	default:
		return nil, fmt.Errorf("operation %s: unrecognized operation type %q", op.ID, op.Type)
	}
}
