// Package wallet computes FIFO cost-basis accounting for a Stellar wallet,
// expressed in Euro cents, suitable for a tax report.
//
// The core pipeline is:
//   - Ledger Builder: raw Horizon transactions and operations are normalized
//     into chronological TxRow values, each holding typed operation summaries
//     and a running balance snapshot for every supported currency.
//   - Price Book: a day-granularity table mapping each tradable currency to a
//     Euro price in micro-Euro, built and cached before the accounting pass.
//   - FIFO Engine: replays the TxRow list against the price book, producing
//     acquisition batches and disposal fills with realized gain/loss.
//   - Valuation: re-values balances and per-transaction cash flow in Euro
//     cents using the same price book.
//
// All quantities are exact integers: atomic units (10^7 per nominal unit) for
// amounts and micro-Euro (10^6 per Euro) for prices. No floating point enters
// the pipeline; the single rounding point is the half-up conversion to cents.
//
// Only three currencies are supported: XLM (the network-native asset), USDC
// (USD-pegged) and EURC (EUR-pegged). EURC is valued at par (1 EURC = 1 EUR)
// throughout, so its ordinary disposals never realize a gain or loss.
//
// This package is the foundational logic for the `swe` command-line tool.
package wallet
