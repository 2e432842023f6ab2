package wallet

import "fmt"

// OpKind is a typed string identifying the kind of a normalized operation.
type OpKind string

// Operation kinds produced by the ledger builder.
const (
	OpCreateAccount OpKind = "create_account"
	OpPayment       OpKind = "payment"
	OpSwap          OpKind = "swap"
	OpBlendDeposit  OpKind = "blend_deposit"
	OpBlendWithdraw OpKind = "blend_withdraw"
	OpAudit         OpKind = "audit"
)

// Direction tags which way a payment moved relative to this wallet.
type Direction string

const (
	In  Direction = "in"
	Out Direction = "out"
)

// Operation is the common interface for all normalized operation summaries
// held by a TxRow. Each kind carries only the fields relevant to it; consumers
// dispatch with an exhaustive type switch.
type Operation interface {
	Kind() OpKind
}

// CreateAccount records the funding of this wallet: the native asset credited
// by the creating account.
type CreateAccount struct {
	From   string `json:"from"` // funder account
	To     string `json:"to"`   // this wallet
	Amount int64  `json:"amount"` // atomic XLM
}

func (CreateAccount) Kind() OpKind { return OpCreateAccount }

func (o CreateAccount) String() string {
	return fmt.Sprintf("create_account %s XLM from %s", FormatAtomic(o.Amount), o.From)
}

// Payment records a single-currency transfer touching this wallet. Only the
// effect on this wallet's balance is recorded; the other side is irrelevant.
type Payment struct {
	Direction Direction `json:"direction"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Currency  Currency  `json:"currency"`
	Amount    int64     `json:"amount"` // atomic
}

func (Payment) Kind() OpKind { return OpPayment }

func (o Payment) String() string {
	return fmt.Sprintf("payment %s %s %s", o.Direction, FormatAtomic(o.Amount), o.Currency)
}

// Swap records a cross-currency path payment where this wallet is both source
// and destination: one currency debited, another credited, within the same
// transaction. The two amounts are independent; a swap is not assumed to
// preserve any exchange rate.
type Swap struct {
	Source            Currency `json:"source"`
	SourceAmount      int64    `json:"source_amount"` // atomic
	Destination       Currency `json:"destination"`
	DestinationAmount int64    `json:"destination_amount"` // atomic
}

func (Swap) Kind() OpKind { return OpSwap }

func (o Swap) String() string {
	return fmt.Sprintf("swap %s %s -> %s %s",
		FormatAtomic(o.SourceAmount), o.Source,
		FormatAtomic(o.DestinationAmount), o.Destination)
}

// BlendDeposit records a transfer into the Blend pooling protocol, modeled as
// an ordinary disposal.
type BlendDeposit struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Currency Currency `json:"currency"`
	Amount   int64    `json:"amount"` // atomic
}

func (BlendDeposit) Kind() OpKind { return OpBlendDeposit }

func (o BlendDeposit) String() string {
	return fmt.Sprintf("blend_deposit %s %s", FormatAtomic(o.Amount), o.Currency)
}

// BlendWithdraw records a transfer out of the Blend pooling protocol, modeled
// as an ordinary acquisition.
type BlendWithdraw struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Currency Currency `json:"currency"`
	Amount   int64    `json:"amount"` // atomic
}

func (BlendWithdraw) Kind() OpKind { return OpBlendWithdraw }

func (o BlendWithdraw) String() string {
	return fmt.Sprintf("blend_withdraw %s %s", FormatAtomic(o.Amount), o.Currency)
}

// Audit records a non-financial operation (trust-line changes, option
// changes, claimable-balance creation). It carries no balance effect and is
// kept for audit only.
type Audit struct {
	Type string `json:"type"` // the raw Horizon operation type
}

func (Audit) Kind() OpKind { return OpAudit }

func (o Audit) String() string { return "audit " + o.Type }
