package cli

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/LeJamon/coveredcall/internal/core/tx"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version information for coveredcalld including the Go version and supported transaction types.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "coveredcalld version %s\n", Version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)

			types := tx.SupportedTypes()
			names := make([]string, len(types))
			for i, t := range types {
				names[i] = t.String()
			}
			fmt.Fprintf(out, "Transaction types: %s\n", strings.Join(names, ", "))
		},
	}
}
