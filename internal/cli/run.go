package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dynplug-dev/dynplug-sdk/config"
	"github.com/dynplug-dev/dynplug-sdk/domain/entities"
	"github.com/dynplug-dev/dynplug-sdk/host"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <plugin> <input> <repeat-count>",
		Short: "Load a plugin, invoke it once, and print the result",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			repeat, err := strconv.ParseUint(args[2], 10, 32)
			if err != nil {
				return fmt.Errorf("repeat-count must be a non-negative 32-bit integer: %w", err)
			}

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

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.InvokeTimeout.Std())
			defer cancel()

			res, err := inst.InvokeDetached(ctx, entities.InvocationRequest{
				Input:  args[1],
				Repeat: uint32(repeat),
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Output)
			return nil
		},
	}
}
