package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func VersionCmd(info Info) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "version",
		Short:        "Print the version of lac1",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lac1 version:\t%s\n", info.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Build date:\t%s\n", info.Date)
			fmt.Fprintf(cmd.OutOrStdout(), "Platform:\t%s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
	return cmd
}
