package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dynplug-dev/dynplug-sdk/config"
	"github.com/dynplug-dev/dynplug-sdk/host"
)

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <plugin>",
		Short: "Load a plugin and print its descriptor metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ResolvePlugin(cfg, args[0])
			if err != nil {
				return err
			}

			ex := host.NewExecutor(host.WithLogger(log))
			defer ex.Close(cmd.Context())

			inst, err := ex.Load(cmd.Context(), path)
			if err != nil {
				return err
			}

			desc := inst.Describe()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "name:        %s\n", desc.Name)
			fmt.Fprintf(out, "abi_version: %d\n", desc.ABIVersion)
			fmt.Fprintf(out, "reentrant:   %t\n", desc.Reentrant)
			fmt.Fprintf(out, "path:        %s\n", inst.Path())
			return nil
		},
	}
}
