package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newGenesisCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "genesis",
		Short: "Create the genesis ledger if the store is empty",
		Long: `Create the genesis ledger from the [genesis] configuration section and print
its summary. An existing ledger is left untouched and its genesis is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, node, err := opts.openNode()
			if err != nil {
				return err
			}
			defer container.Close()
			return printJSON(cmd.OutOrStdout(), node.Genesis)
		},
	}
}

func newRPCCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rpc <method> [params]",
		Short: "Run an RPC method against the local ledger",
		Long: `Run an RPC method by calling the same handlers the server uses, with the
admin role. params is a JSON object, "-" for standard input or @file.`,
		Example: `  coveredcalld rpc server_info
  coveredcalld rpc ledger_data '{"type":"option","limit":10}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var params interface{} = map[string]interface{}{}
			if len(args) == 2 {
				raw, err := parseJSONArg(cmd, args[1])
				if err != nil {
					return err
				}
				params = raw
			}
			return opts.callLocal(cmd, args[0], params)
		},
	}
}

func newAccountCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Inspect accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <address>",
		Short: "Show an account root and its native balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.callLocal(cmd, "account_info", map[string]interface{}{"account": args[0]})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "tx <address>",
		Short: "List journaled transactions sent by an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.callLocal(cmd, "account_tx", map[string]interface{}{"account": args[0]})
		},
	})
	return cmd
}

func newOptionCmd(opts *rootOptions) *cobra.Command {
	var exponent int32

	show := &cobra.Command{
		Use:   "show <option-index>",
		Short: "Show an option contract, its vaults and settlement outlook",
		Long: `Show an option contract. When the expiry mark exists, or --exponent is
given, the strike is shown in oracle price units.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]interface{}{"option": args[0]}
			if cmd.Flags().Changed("exponent") {
				params["exponent"] = exponent
			}
			return opts.callLocal(cmd, "option_info", params)
		},
	}
	show.Flags().Int32Var(&exponent, "exponent", 0, "oracle price exponent used to express the strike")

	cmd := &cobra.Command{
		Use:   "option",
		Short: "Inspect option contracts",
	}
	cmd.AddCommand(show)
	return cmd
}

func newMarkCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mark",
		Short: "Inspect expiry marks",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <expiry>",
		Short: "Show the settlement mark recorded for an expiry (unix seconds)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expiry, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid expiry %q: %w", args[0], err)
			}
			return opts.callLocal(cmd, "mark_info", map[string]interface{}{"expiry": expiry})
		},
	})
	return cmd
}

func newFeedCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Inspect price feeds",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <publisher> <feed-id>",
		Short: "Show the latest price published on a feed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.callLocal(cmd, "feed_info", map[string]interface{}{
				"publisher": args[0],
				"feed_id":   args[1],
			})
		},
	})
	return cmd
}
