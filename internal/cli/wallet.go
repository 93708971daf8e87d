package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	addresscodec "github.com/LeJamon/coveredcall/internal/codec/address-codec"
	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/LeJamon/coveredcall/internal/crypto"
	"github.com/spf13/cobra"
)

func newKeygenCmd() *cobra.Command {
	var passphrase string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an account key pair",
		Long: `Generate a secp256k1 key pair and print its address, seed and public key.
With --passphrase the key is derived deterministically.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var seed []byte
			if passphrase != "" {
				seed = crypto.SeedFromPassphrase(passphrase)
			} else {
				var err error
				if seed, err = crypto.RandomSeed(); err != nil {
					return err
				}
			}
			kp, err := crypto.KeyPairFromSeed(seed)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{
				"account_id":     addresscodec.EncodeAccountID(kp.AccountID()),
				"master_seed":    addresscodec.EncodeSeed(seed),
				"public_key_hex": kp.PublicKeyHex(),
			})
		},
	}
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "derive the key from a passphrase")
	return cmd
}

func keyPairFromSecret(secret string) (*crypto.KeyPair, error) {
	seed, err := addresscodec.DecodeSeed(secret)
	if err != nil {
		return nil, fmt.Errorf("invalid secret: %w", err)
	}
	return crypto.KeyPairFromSeed(seed)
}

func newSignCmd() *cobra.Command {
	var (
		secret   string
		sequence uint32
	)

	cmd := &cobra.Command{
		Use:   "sign <tx-json>",
		Short: "Sign a transaction offline",
		Long: `Sign a transaction with an account seed and print the signed tx_json and
its hash. The transaction is a JSON object, "-" for standard input or @file.
An empty Account is filled from the key.`,
		Example: `  coveredcalld sign --secret s... --sequence 4 '{"TransactionType":"MintCreate","Account":"r...","Decimals":6}'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseJSONArg(cmd, args[0])
			if err != nil {
				return err
			}
			kp, err := keyPairFromSecret(secret)
			if err != nil {
				return err
			}
			transaction, err := tx.FromJSON(raw)
			if err != nil {
				return err
			}

			common := transaction.GetCommon()
			if common.Account == "" {
				common.Account = addresscodec.EncodeAccountID(kp.AccountID())
			}
			if cmd.Flags().Changed("sequence") {
				common.Sequence = sequence
			}
			if common.Sequence == 0 {
				return fmt.Errorf("transaction needs a Sequence; pass --sequence")
			}
			if err := tx.Sign(transaction, kp); err != nil {
				return err
			}

			hash, err := tx.TransactionHash(transaction)
			if err != nil {
				return err
			}
			signed, err := tx.ToJSON(transaction)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"tx_json": json.RawMessage(signed),
				"hash":    tx.EncodeID(hash[:]),
			})
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "account seed used to sign")
	cmd.Flags().Uint32Var(&sequence, "sequence", 0, "account sequence to sign with")
	_ = cmd.MarkFlagRequired("secret")
	return cmd
}

func newSubmitCmd(opts *rootOptions) *cobra.Command {
	var (
		secret  string
		url     string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "submit <tx-json>",
		Short: "Submit a transaction",
		Long: `Submit a transaction to the local ledger, or to a running node with --url.
A signed transaction is applied as is. With --secret the node fills the
sequence and signs first, which a remote node only allows for admin clients.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseJSONArg(cmd, args[0])
			if err != nil {
				return err
			}
			params := map[string]interface{}{"tx_json": raw}
			if secret != "" {
				params["secret"] = secret
			}
			if url == "" {
				return opts.callLocal(cmd, "submit", params)
			}
			return callRemote(cmd, url, timeout, "submit", params)
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "sign with this account seed before applying")
	cmd.Flags().StringVar(&url, "url", "", "JSON-RPC endpoint of a running node")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout for --url")
	return cmd
}

// callRemote posts a JSON-RPC request and prints the result.
func callRemote(cmd *cobra.Command, url string, timeout time.Duration, method string, params interface{}) error {
	body, err := json.Marshal(map[string]interface{}{
		"method": method,
		"params": []interface{}{params},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := (&http.Client{Timeout: timeout}).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}

	var reply struct {
		Result map[string]interface{} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	if reply.Result["status"] == "error" {
		return fmt.Errorf("%v: %v", reply.Result["error"], reply.Result["error_message"])
	}
	return printJSON(cmd.OutOrStdout(), reply.Result)
}
