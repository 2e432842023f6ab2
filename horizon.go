package wallet

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DefaultHorizonURL is the public Horizon instance for the Stellar mainnet.
const DefaultHorizonURL = "https://horizon.stellar.org"

// horizonPageLimit is Horizon's maximum page size.
const horizonPageLimit = 200

// diskCache implements a simple disk cache for HTTP responses
type diskCache struct {
	base http.RoundTripper
	dir  string
}

func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	// get from disk
	// diskcache implements a unique key per day, so the local cache expires every day.
	key := fmt.Sprintf("%s %s %s", Today().String(), req.Method, req.URL.String())
	key = fmt.Sprintf("%x", sha1.Sum([]byte(key)))

	cachedResp, err := c.get(key, req)
	if err == nil { // Cache hit
		return cachedResp, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v/%v %v", resp.Request.Method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	// otherwise attempt to store it in cache

	if err := c.put(key, resp); err != nil {
		log.Printf("cache write err (ignored): %v\n", err)
	}
	return resp, nil
}

// get retrieves a cached response from disk
func (c *diskCache) get(key string, req *http.Request) (resp *http.Response, err error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to disk cache
func (c *diskCache) put(key string, resp *http.Response) (err error) {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(c.dir, key))
	if err != nil {
		return err
	}
	_, err = f.Write(content)
	f.Close()
	return err
}

// daily returns a client caching every response on disk with daily expiry.
// An empty cacheDir falls back to the system temp directory.
func daily(cacheDir string) *http.Client {
	if cacheDir == "" {
		cacheDir = os.TempDir()
	}
	client := new(http.Client)
	client.Transport = &diskCache{base: http.DefaultTransport, dir: cacheDir}
	return client
}

// jwget performs an HTTP GET request and unmarshals the JSON response into the provided data structure.
func jwget(client *http.Client, addr string, data interface{}) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp.Body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return json.Unmarshal(buf.Bytes(), data)
}

// Horizon fetches an account's history from a Horizon API server.
type Horizon struct {
	BaseURL string
	Client  *http.Client
}

// NewHorizon returns a fetcher against base backed by the daily disk cache
// in cacheDir.
func NewHorizon(base, cacheDir string) *Horizon {
	if base == "" {
		base = DefaultHorizonURL
	}
	return &Horizon{BaseURL: base, Client: daily(cacheDir)}
}

// horizonTx is a transaction record as the /transactions endpoint returns it.
type horizonTx struct {
	Hash        string    `json:"hash"`
	PagingToken string    `json:"paging_token"`
	Successful  bool      `json:"successful"`
	CreatedAt   time.Time `json:"created_at"`
	FeeCharged  string    `json:"fee_charged"`
	FeeAccount  string    `json:"fee_account"`
}

// Transactions pages through every transaction touching the account, in
// ascending ledger order. Failed transactions are dropped: their operations
// had no effect on chain.
func (h *Horizon) Transactions(account string) ([]RawTransaction, error) {
	var out []RawTransaction
	cursor := ""
	for {
		addr := fmt.Sprintf("%s/accounts/%s/transactions?order=asc&limit=%d&cursor=%s",
			h.BaseURL, url.PathEscape(account), horizonPageLimit, url.QueryEscape(cursor))

		var page struct {
			Embedded struct {
				Records []horizonTx `json:"records"`
			} `json:"_embedded"`
		}
		if err := jwget(h.Client, addr, &page); err != nil {
			return nil, fmt.Errorf("fetching transactions for %s: %w", account, err)
		}
		for _, tx := range page.Embedded.Records {
			cursor = tx.PagingToken
			if !tx.Successful {
				continue
			}
			out = append(out, RawTransaction{
				Hash:       tx.Hash,
				CreatedAt:  tx.CreatedAt.UTC(),
				FeeCharged: tx.FeeCharged,
				FeeAccount: tx.FeeAccount,
			})
		}
		if len(page.Embedded.Records) < horizonPageLimit {
			return out, nil
		}
	}
}

// Operations pages through every operation touching the account, in
// ascending ledger order.
func (h *Horizon) Operations(account string) ([]RawOperation, error) {
	var out []RawOperation
	cursor := ""
	for {
		addr := fmt.Sprintf("%s/accounts/%s/operations?order=asc&limit=%d&cursor=%s",
			h.BaseURL, url.PathEscape(account), horizonPageLimit, url.QueryEscape(cursor))

		var page struct {
			Embedded struct {
				Records []RawOperation `json:"records"`
			} `json:"_embedded"`
		}
		if err := jwget(h.Client, addr, &page); err != nil {
			return nil, fmt.Errorf("fetching operations for %s: %w", account, err)
		}
		for _, op := range page.Embedded.Records {
			cursor = op.PagingToken
			out = append(out, op)
		}
		if len(page.Embedded.Records) < horizonPageLimit {
			return out, nil
		}
	}
}

// History fetches the account's transactions and operations and groups the
// operations under their transaction, dropping dust payments below
// dustAtomic atomic units. The result is sorted ascending by timestamp,
// ready for BuildLedger.
func (h *Horizon) History(account string, dustAtomic int64) ([]RawTransaction, error) {
	txs, err := h.Transactions(account)
	if err != nil {
		return nil, err
	}
	ops, err := h.Operations(account)
	if err != nil {
		return nil, err
	}

	byHash := make(map[string]*RawTransaction, len(txs))
	for i := range txs {
		byHash[txs[i].Hash] = &txs[i]
	}
	for _, op := range ops {
		tx, ok := byHash[op.TransactionHash]
		if !ok {
			// operation of a failed transaction
			continue
		}
		if isDust(op, account, dustAtomic) {
			continue
		}
		tx.Operations = append(tx.Operations, op)
	}

	// Dust-spam transactions the wallet neither initiated nor paid for end
	// up empty; keep only rows that affect this wallet.
	kept := txs[:0]
	for _, tx := range txs {
		if len(tx.Operations) == 0 && tx.FeeAccount != account {
			continue
		}
		kept = append(kept, tx)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].CreatedAt.Before(kept[j].CreatedAt) })
	return kept, nil
}

// isDust reports whether op is an inbound payment below the threshold.
// Spam airdrops of a few stroops would otherwise pollute the batch list.
func isDust(op RawOperation, account string, dustAtomic int64) bool {
	if dustAtomic <= 0 || op.Type != "payment" || op.To != account {
		return false
	}
	amt, err := ParseAtomic(op.Amount)
	if err != nil {
		return false
	}
	return amt < dustAtomic
}
