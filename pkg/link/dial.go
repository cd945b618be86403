package link

import (
	"net"
	"strings"
	"time"

	"go.bug.st/serial"
	"golang.org/x/net/websocket"
)

// DialTimeout bounds connecting to network transports.
const DialTimeout = 5 * time.Second

// Dial opens a Port according to the address scheme:
//
//	tcp://host:port       raw TCP (e.g. ser2net)
//	ws://host/path        websocket with binary frames
//	wss://host/path       websocket over TLS
//	serial:///dev/ttyUSB0 or /dev/ttyUSB0, COM3  serial device
func Dial(address string) (Port, error) {
	switch {
	case strings.HasPrefix(address, "tcp://"):
		return DialTCP(strings.TrimPrefix(address, "tcp://"))
	case strings.HasPrefix(address, "ws://"), strings.HasPrefix(address, "wss://"):
		return DialWebsocket(address)
	}
	return OpenSerial(strings.TrimPrefix(address, "serial://"))
}

// OpenSerial opens a serial device with the reader line settings (8N1).
func OpenSerial(name string) (Port, error) {
	return serial.Open(name, &serial.Mode{
		BaudRate: BaudRate,
		DataBits: DataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
}

// ListPorts lists serial devices on the system.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}

// DialTCP connects to a serial-over-TCP gateway.
func DialTCP(hostport string) (Port, error) {
	conn, err := net.DialTimeout("tcp", hostport, DialTimeout)
	if err != nil {
		return nil, err
	}
	return NewNetPort(conn), nil
}

// DialWebsocket connects to a serial-over-websocket gateway.
func DialWebsocket(url string) (Port, error) {
	origin := "http://localhost/"
	if strings.HasPrefix(url, "wss://") {
		origin = "https://localhost/"
	}
	conn, err := websocket.Dial(url, "", origin)
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return newMessagePort(
		func() (data []byte, err error) {
			err = websocket.Message.Receive(conn, &data)
			return
		},
		func(data []byte) error {
			return websocket.Message.Send(conn, data)
		},
		conn.Close,
	), nil
}
