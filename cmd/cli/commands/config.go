package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lac1tool/internal/config"
	"lac1tool/pkg/lac1"
)

func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configure lac1",
		Long:  "Show and change the settings of the lac1 command line tool.",
	}

	cmd.AddCommand(
		ConfigShowCmd(),
		ConfigSetBaudCmd(),
		ConfigSetCharsetCmd(),
		ConfigSetBackupDirCmd(),
	)
	return cmd
}

func ConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "show",
		Short:        "Print the effective settings",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cmd.Flags().GetString(flagOutput)
			if err != nil {
				return err
			}
			if output == "short" {
				return fmt.Errorf("--output short is not supported for settings")
			}
			enc, err := newEncoder(cmd.OutOrStdout(), output)
			if err != nil {
				return err
			}
			cfg, err := GetConfig(cmd)
			if err != nil {
				return err
			}
			settings, err := config.Decode(cfg)
			if err != nil {
				return err
			}
			return enc.Encode(settingsView(settings))
		},
	}
	cmd.Flags().StringP(flagOutput, "o", "yaml", "set output format to json or yaml")
	return cmd
}

// settingsView - настройки с длительностями в виде строк.
func settingsView(s config.Settings) map[string]interface{} {
	t := s.Timing
	l := s.Limits
	return map[string]interface{}{
		config.KeyPort:      s.Port,
		config.KeyBaudRate:  s.BaudRate,
		config.KeyCharset:   s.Charset,
		config.KeyLogLevel:  s.LogLevel,
		config.KeyBackupDir: s.BackupDir,
		config.KeyTiming: map[string]string{
			"read_timeout":        t.ReadTimeout.String(),
			"settle":              t.Settle.String(),
			"reset_wait":          t.ResetWait.String(),
			"dump_wait":           t.DumpWait.String(),
			"register_pace":       t.RegisterPace.String(),
			"macro_pace":          t.MacroPace.String(),
			"register_write_pace": t.RegisterWritePace.String(),
		},
		config.KeyLimits: map[string]int{
			"handshake":      l.Handshake,
			"macro_dump":     l.MacroDump,
			"parameter_dump": l.ParameterDump,
			"registers":      l.Registers,
		},
	}
}

func ConfigSetBaudCmd() *cobra.Command {
	return setValueCmd("set-baud <rate>", "Set the default baud rate", func(v string) (interface{}, string, error) {
		baud, err := strconv.Atoi(v)
		if err != nil || baud <= 0 {
			return nil, "", fmt.Errorf("invalid baud rate %q", v)
		}
		return baud, config.KeyBaudRate, nil
	})
}

func ConfigSetCharsetCmd() *cobra.Command {
	return setValueCmd("set-charset <name>", "Set the charset of the controller output", func(v string) (interface{}, string, error) {
		if _, err := lac1.LookupCharset(v); err != nil {
			return nil, "", err
		}
		return v, config.KeyCharset, nil
	})
}

func ConfigSetBackupDirCmd() *cobra.Command {
	return setValueCmd("set-backup-dir <dir>", "Set the directory for backups without an explicit file name", func(v string) (interface{}, string, error) {
		return v, config.KeyBackupDir, nil
	})
}

func setValueCmd(use, short string, parse func(string) (interface{}, string, error)) *cobra.Command {
	return &cobra.Command{
		Use:          use,
		Short:        short,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			value, key, err := parse(args[0])
			if err != nil {
				return err
			}
			cfg, err := GetConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Set(key, value)
			return config.WriteConfig(cfg)
		},
	}
}
