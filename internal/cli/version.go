package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dynplug-dev/dynplug-sdk/domain/entities"
)

// Version is the SDK release version.
const Version = "0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dynplug version and supported ABI",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dynplug %s (abi v%d)\n", Version, entities.ABIVersion)
		},
	}
}
