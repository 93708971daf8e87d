package cli

import (
	"github.com/LeJamon/coveredcall/internal/core/settlement"
	"github.com/spf13/cobra"
)

func newStrikeCmd() *cobra.Command {
	var (
		base, quote   uint64
		baseDecimals  uint8
		quoteDecimals uint8
		exponent      int32
		mark          int64
	)

	cmd := &cobra.Command{
		Use:   "strike",
		Short: "Compute an option's strike and settlement split",
		Long: `Compute the strike of an option escrowing --base minor units against
--quote minor units, in oracle price units with --exponent. With --mark the
split of the base vault at that settlement price is shown too.`,
		Example: `  coveredcalld strike --base 1000000 --quote 130000000 --base-decimals 6 --quote-decimals 6 --exponent -8 --mark 14000000000`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scale := settlement.Scale{
				BaseDecimals:  baseDecimals,
				QuoteDecimals: quoteDecimals,
				Exponent:      exponent,
			}
			strike, err := settlement.CalcStrike(base, quote, scale)
			if err != nil {
				return err
			}

			out := map[string]interface{}{
				"strike":       strike,
				"strike_price": settlement.DisplayStrike(strike, scale).String(),
				"base":         settlement.DisplayAmount(base, baseDecimals).String(),
				"quote":        settlement.DisplayAmount(quote, quoteDecimals).String(),
			}
			if cmd.Flags().Changed("mark") {
				seller, buyer := settlement.Settlements(strike, mark, base)
				out["mark"] = mark
				out["mark_price"] = settlement.DisplayPrice(mark, exponent).String()
				out["in_the_money"] = settlement.InTheMoney(strike, mark)
				out["seller_share"] = seller
				out["buyer_share"] = buyer
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().Uint64Var(&base, "base", 0, "base amount in minor units")
	cmd.Flags().Uint64Var(&quote, "quote", 0, "quote amount in minor units")
	cmd.Flags().Uint8Var(&baseDecimals, "base-decimals", 0, "decimals of the base token")
	cmd.Flags().Uint8Var(&quoteDecimals, "quote-decimals", 0, "decimals of the quote token")
	cmd.Flags().Int32Var(&exponent, "exponent", -8, "oracle price exponent")
	cmd.Flags().Int64Var(&mark, "mark", 0, "settlement price in oracle units")
	_ = cmd.MarkFlagRequired("base")
	_ = cmd.MarkFlagRequired("quote")
	return cmd
}
