package wallet

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// This file persists the fetch cache and the normalized ledger as JSONL,
// one record per line, human-readable and git-friendly.

// EncodeTransactions writes raw transactions as JSONL, one per line.
func EncodeTransactions(w io.Writer, txs []RawTransaction) error {
	enc := json.NewEncoder(w)
	for i := range txs {
		if err := enc.Encode(&txs[i]); err != nil {
			return fmt.Errorf("encoding transaction %s: %w", txs[i].Hash, err)
		}
	}
	return nil
}

// DecodeTransactions reads a JSONL stream of raw transactions, skipping
// blank lines.
func DecodeTransactions(r io.Reader) ([]RawTransaction, error) {
	var txs []RawTransaction
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var tx RawTransaction
		if err := json.Unmarshal(line, &tx); err != nil {
			return nil, fmt.Errorf("format error on line %q: %w", string(line), err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}

// marshalOperation renders one operation summary as a JSON object whose
// first field is the operation kind, then the variant's own fields in
// declaration order.
func marshalOperation(op Operation) ([]byte, error) {
	w := new(jsonObjectWriter)
	w.Append("op", op.Kind())
	w.EmbedFrom(op)
	return w.MarshalJSON()
}

// EncodeRows writes normalized ledger rows as JSONL with a stable field
// order, so two runs over the same history diff clean.
func EncodeRows(w io.Writer, rows []TxRow) error {
	bw := bufio.NewWriter(w)
	for i := range rows {
		row := &rows[i]
		ops := make([]json.RawMessage, 0, len(row.Operations))
		for _, op := range row.Operations {
			b, err := marshalOperation(op)
			if err != nil {
				return fmt.Errorf("encoding row %s: %w", row.Hash, err)
			}
			ops = append(ops, b)
		}
		jw := new(jsonObjectWriter)
		jw.Append("hash", row.Hash)
		jw.Append("time", row.Time.UTC())
		jw.Optional("fee", row.FeeAtomic)
		jw.Append("operations", ops)
		jw.Append("balances", row.Balances)
		line, err := jw.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encoding row %s: %w", row.Hash, err)
		}
		bw.Write(line)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// SaveTransactions writes the fetch cache file, creating parent directories
// as needed.
func SaveTransactions(path string, txs []RawTransaction) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create %q: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot open %q for writing: %w", path, err)
	}
	defer f.Close()
	return EncodeTransactions(f, txs)
}

// LoadTransactions reads the fetch cache file.
func LoadTransactions(path string) ([]RawTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %q for reading: %w", path, err)
	}
	defer f.Close()
	return DecodeTransactions(f)
}

// SavePriceBook writes the price book file, creating parent directories as
// needed.
func SavePriceBook(path string, book *PriceBook) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create %q: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot open %q for writing: %w", path, err)
	}
	defer f.Close()
	return book.Encode(f)
}

// LoadPriceBook reads the price book file. A missing file is an empty book,
// so a fresh workspace starts clean.
func LoadPriceBook(path string) (*PriceBook, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewPriceBook(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open %q for reading: %w", path, err)
	}
	defer f.Close()
	return DecodePriceBook(f)
}
