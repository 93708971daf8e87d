// Package cli implements the coveredcalld command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/LeJamon/coveredcall/internal/config"
	"github.com/LeJamon/coveredcall/internal/di"
	"github.com/LeJamon/coveredcall/internal/rpc/rpc_types"
	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "0.1.0-dev"

// rootOptions holds the global flags.
type rootOptions struct {
	configFile string
	debug      bool
	quiet      bool
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "coveredcalld",
		Short: "coveredcalld - covered call options on a standalone ledger",
		Long: `coveredcalld runs a standalone ledger of fungible tokens, price feeds
and covered call options. Sellers escrow base tokens and buyers pay a premium
for the right to buy them at a strike before expiry. Options settle either
against an oracle mark or by physical exchange.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "only log warnings and errors")

	serve := newServeCmd(opts)
	rootCmd.AddCommand(
		newVersionCmd(),
		serve,
		newGenesisCmd(opts),
		newKeygenCmd(),
		newSignCmd(),
		newSubmitCmd(opts),
		newRPCCmd(opts),
		newAccountCmd(opts),
		newOptionCmd(opts),
		newMarkCmd(opts),
		newFeedCmd(opts),
		newStrikeCmd(),
	)
	// Serving is the default action.
	rootCmd.RunE = serve.RunE
	rootCmd.Flags().AddFlagSet(serve.Flags())
	return rootCmd
}

// Execute runs the command line. This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads --conf, or defaults and the environment when it is unset.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(config.ConfigPaths{Main: o.configFile})
	if err != nil {
		return nil, err
	}
	switch {
	case o.debug:
		cfg.Logging.Level = "debug"
	case o.quiet:
		cfg.Logging.Level = "warn"
	}
	return cfg, nil
}

// openNode wires a node from the configuration. Callers close the returned
// container.
func (o *rootOptions) openNode() (*di.Container, *di.Node, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	container := di.New()
	provider := di.NewProvider(container, cfg, Version)
	if err := provider.RegisterAll(); err != nil {
		return nil, nil, err
	}
	node, err := provider.Node()
	if err != nil {
		_ = container.Close()
		return nil, nil, err
	}
	return container, node, nil
}

// callLocal runs an RPC method against the local ledger with the admin role
// and prints its result.
func (o *rootOptions) callLocal(cmd *cobra.Command, method string, params interface{}) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal parameters: %w", err)
	}

	container, node, err := o.openNode()
	if err != nil {
		return err
	}
	defer container.Close()

	result, rpcErr := node.RPC.Call(cmd.Context(), rpc_types.RoleAdmin, method, raw)
	if rpcErr != nil {
		return rpcError(rpcErr)
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func rpcError(e *rpc_types.RpcError) error {
	return fmt.Errorf("%s: %s", e.ErrorString, e.Message)
}

func printJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// parseJSONArg returns the JSON text of arg. "-" reads standard input and a
// leading "@" reads a file.
func parseJSONArg(cmd *cobra.Command, arg string) (json.RawMessage, error) {
	var data []byte
	var err error
	switch {
	case arg == "-":
		data, err = io.ReadAll(cmd.InOrStdin())
	case len(arg) > 1 && arg[0] == '@':
		data, err = os.ReadFile(arg[1:])
	default:
		data = []byte(arg)
	}
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	return json.RawMessage(data), nil
}
