// Package commands - консольный интерфейс lac1tool: резервное копирование
// и восстановление SMAC LAC-1 без графического окна.
package commands

import (
	"github.com/spf13/cobra"
)

// Имена общих флагов.
const (
	flagConfig   = "config"
	flagPort     = "port"
	flagBaud     = "baud"
	flagTCP      = "tcp"
	flagCharset  = "charset"
	flagSimulate = "simulate"
	flagLogLevel = "log-level"
	flagVerbose  = "verbose"
	flagOutput   = "output"
	flagAll      = "all"
	flagYes      = "yes"
)

type Info struct {
	Version string `mapstructure:"version" yaml:"version" json:"version"`
	Date    string `mapstructure:"date" yaml:"date" json:"date"`
}

func LAC1Cmd(info Info) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lac1",
		Short: "Backup and restore of SMAC LAC-1 controllers",
		Long: "lac1 saves the macro table, system parameters and registers of a SMAC LAC-1\n" +
			"motion controller to a text file and replays such a file back to a controller.\n" +
			"The controller is reached over a serial port or a serial-to-TCP bridge.",
	}

	flags := cmd.PersistentFlags()
	flags.String(flagConfig, "", "path to the config file (default: user config dir)")
	flags.StringP(flagPort, "p", "", "serial port, e.g. COM3 or /dev/ttyUSB0")
	flags.Int(flagBaud, 0, "baud rate (default from config, 9600)")
	flags.String(flagTCP, "", "serial-to-TCP bridge address host:port")
	flags.String(flagCharset, "", "charset of the controller output (default from config, utf-8)")
	flags.Bool(flagSimulate, false, "talk to a built-in LAC-1 simulator instead of a real port")
	flags.String(flagLogLevel, "", "log level: debug, info, warn, error")
	flags.BoolP(flagVerbose, "v", false, "print every command sent and every response received")

	cmd.AddCommand(
		BackupCmd(),
		RestoreCmd(),
		PortsCmd(),
		SetPortCmd(),
		ConfigCmd(),
		VersionCmd(info),
	)
	return cmd
}
