package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"lac1tool/internal/service/maintenance"
)

func BackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup [file]",
		Short: "Save macros, system parameters and registers of the controller to a file",
		Long: "Save macros (TM-1), system parameters (TK1) and registers TR0..TR511 to a\n" +
			"text file. Without a file name, lac1_backup_<date>_<time>.txt is created in the\n" +
			"configured backup directory.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			profile, err := e.resolveProfile(cmd)
			if err != nil {
				return err
			}

			path := maintenance.DefaultBackupName(time.Now())
			if len(args) == 1 {
				path = args[0]
			} else if e.settings.BackupDir != "" {
				path = filepath.Join(e.settings.BackupDir, path)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			verbose, err := cmd.Flags().GetBool(flagVerbose)
			if err != nil {
				return err
			}
			sink := newConsoleSink(cmd.OutOrStdout(), isTerminal() && !verbose, verbose)
			res, err := e.maint.Backup(ctx, profile, path, sink)
			sink.Finish()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup saved as %s (%s)\n", res.Path, res.Duration.Round(time.Millisecond))
			return nil
		},
	}
	return cmd
}
