package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"lac1tool/internal/config"
	"lac1tool/internal/domain/models"
)

type portEntry struct {
	Name         string `yaml:"name" json:"name"`
	USB          bool   `yaml:"usb" json:"usb"`
	VID          string `yaml:"vid,omitempty" json:"vid,omitempty"`
	PID          string `yaml:"pid,omitempty" json:"pid,omitempty"`
	SerialNumber string `yaml:"serialNumber,omitempty" json:"serialNumber,omitempty"`
	Product      string `yaml:"product,omitempty" json:"product,omitempty"`
	Configured   bool   `yaml:"configured" json:"configured"`
}

func (p portEntry) Short() string {
	desc := models.PortInfo{Name: p.Name, IsUSB: p.USB, VID: p.VID, PID: p.PID, Product: p.Product}.Description()
	if p.Configured {
		desc += " *"
	}
	return desc
}

type portList struct {
	Ports []portEntry `yaml:"ports" json:"ports"`
}

func (l portList) Elements() []Short {
	res := make([]Short, len(l.Ports))
	for i, p := range l.Ports {
		res[i] = p
	}
	return res
}

func newPortList(list []models.PortInfo, configured string) portList {
	res := portList{Ports: []portEntry{}}
	for _, p := range list {
		res.Ports = append(res.Ports, portEntry{
			Name:         p.Name,
			USB:          p.IsUSB,
			VID:          p.VID,
			PID:          p.PID,
			SerialNumber: p.SerialNumber,
			Product:      p.Product,
			Configured:   p.Name == configured,
		})
	}
	return res
}

func PortsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ports",
		Short:        "List serial ports (the configured one is marked with *)",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := cmd.Flags().GetBool(flagAll)
			if err != nil {
				return err
			}
			enc, err := parseOutputFlag(cmd)
			if err != nil {
				return err
			}
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			list, err := e.conn.GetSystemPorts(all)
			if err != nil {
				return err
			}
			return enc.Encode(newPortList(list, e.settings.Port))
		},
	}

	cmd.Flags().Bool(flagAll, false, "if set, will show all available ports")
	cmd.Flags().StringP(flagOutput, "o", "short", "set output format to json, yaml or short")
	return cmd
}

func SetPortCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "set-port [port]",
		Short:        "Select the serial port you want to use",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := cmd.Flags().GetBool(flagAll)
			if err != nil {
				return err
			}
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}

			var port string
			if len(args) == 1 {
				port = args[0]
				exists, err := e.conn.PortExists(port)
				if err != nil {
					return err
				}
				if !exists {
					e.log.Warn("port %s is not present right now", port)
				}
			} else {
				if !isTerminal() {
					return fmt.Errorf("no port given and stdin is not a terminal")
				}
				if port, err = pickPort(e.conn, all); err != nil {
					return err
				}
			}

			e.cfg.Set(config.KeyPort, port)
			if err := config.WriteConfig(e.cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Port set to %s\n", port)
			return nil
		},
	}

	cmd.Flags().Bool(flagAll, false, "if set, will show all available ports")
	return cmd
}
