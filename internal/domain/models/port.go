package models

// PortInfo описывает системный последовательный порт.
type PortInfo struct {
	Name         string `json:"name" yaml:"name"`
	IsUSB        bool   `json:"isUsb" yaml:"is_usb"`
	VID          string `json:"vid,omitempty" yaml:"vid,omitempty"`
	PID          string `json:"pid,omitempty" yaml:"pid,omitempty"`
	SerialNumber string `json:"serialNumber,omitempty" yaml:"serial_number,omitempty"`
	Product      string `json:"product,omitempty" yaml:"product,omitempty"`
}

// Description - строка для списков выбора.
func (p PortInfo) Description() string {
	if !p.IsUSB {
		return p.Name
	}
	desc := p.Name + " [USB " + p.VID + ":" + p.PID
	if p.Product != "" {
		desc += " " + p.Product
	}
	return desc + "]"
}
