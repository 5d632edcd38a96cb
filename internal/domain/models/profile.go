package models

import (
	"net"
	"strconv"
	"time"
)

// Типы подключения к контроллеру.
const (
	ConnectionCOM = 0 // локальный COM/tty
	ConnectionTCP = 6 // TCP-мост к последовательному порту
)

// ConnectionProfile представляет профиль подключения к LAC-1
type ConnectionProfile struct {
	Name           string    `json:"name"`                // Имя профиля (по умолчанию - адрес)
	ConnectionType int       `json:"connectionType"`      // 0 = COM, 6 = TCP
	ComName        string    `json:"comName,omitempty"`   // Например "COM3" или "/dev/ttyUSB0"
	BaudRate       int       `json:"baudRate,omitempty"`  // Например 9600
	IPAddress      string    `json:"ipAddress,omitempty"` // Например "192.168.1.100"
	TCPPort        int       `json:"tcpPort,omitempty"`   // Например 4001
	LastUsed       time.Time `json:"lastUsed"`            // Время последнего успешного подключения
}

// Address возвращает адрес подключения: имя порта или host:port.
func (p ConnectionProfile) Address() string {
	if p.ConnectionType == ConnectionTCP {
		return net.JoinHostPort(p.IPAddress, strconv.Itoa(p.TCPPort))
	}
	return p.ComName
}

// Key - идентификатор профиля в хранилище.
func (p ConnectionProfile) Key() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Address()
}
