package commands

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func RestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Replay a backup file to the controller",
		Long: "Replay the macro definitions and register values of a backup file to the\n" +
			"controller. System parameters are not restored. Lines that are neither macro\n" +
			"definitions nor register values are skipped.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err != nil {
				return err
			}

			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			profile, err := e.resolveProfile(cmd)
			if err != nil {
				return err
			}

			yes, err := cmd.Flags().GetBool(flagYes)
			if err != nil {
				return err
			}
			if !yes {
				if !isTerminal() {
					return fmt.Errorf("refusing to overwrite the controller without confirmation. Use --yes")
				}
				prompt := promptui.Prompt{
					Label:     fmt.Sprintf("Overwrite macros and registers on %s from %s", profile.Address(), path),
					IsConfirm: true,
				}
				if _, err := prompt.Run(); err != nil {
					return fmt.Errorf("restore aborted")
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			verbose, err := cmd.Flags().GetBool(flagVerbose)
			if err != nil {
				return err
			}
			sink := newConsoleSink(cmd.OutOrStdout(), isTerminal() && !verbose, verbose)
			res, err := e.maint.Restore(ctx, profile, path, sink)
			sink.Finish()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored from %s (%s)\n", res.Path, res.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().BoolP(flagYes, "y", false, "do not ask for confirmation")
	return cmd
}
