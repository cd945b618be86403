package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"reflect"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/redrcp.go/pkg/driver"
	"github.com/robotalks/redrcp.go/pkg/emulator"
	"github.com/robotalks/redrcp.go/pkg/rcp"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	// Port is connected before running commands if not empty.
	Port string

	Shell  *ishell.Shell
	Driver *driver.Driver
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
	emulatorAddress   = "emulator"
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	emulate    bool
	portName   string

	// commands
	commands = []*ishell.Cmd{
		&PortsCmd,
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.BoolVar(&emulate, "emulate", emulate, "Talk to an emulated reader.")
	flag.StringVar(&portName, "port", portName, "Connect to the port before running commands.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(d *driver.Driver) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Port:        portName,

		Shell:  ishell.New(),
		Driver: d,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	d.SetNotificationHandler(driver.HandleNotificationFunc(s.printNotification))
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if !ShellFrom(c).Driver.IsConnected() {
			c.Err(driver.ErrNotConnected)
			return
		}
		fn(c)
	}
}

// Context returns a context bounded by the driver timeout.
func (s *Shell) Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.Driver.Timeout()*4)
}

// Format converts a result into display text.
func (s *Shell) Format(v interface{}) (string, error) {
	if s.OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	switch val := v.(type) {
	case nil:
		return "OK", nil
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case fmt.Stringer:
		return val.String(), nil
	}
	return fmt.Sprintf("%s %+v", reflect.Indirect(reflect.ValueOf(v)).Type().Name(), v), nil
}

// Print prints a result or reports err.
func Print(c *ishell.Context, v interface{}, err error) {
	if err != nil {
		c.Err(err)
		return
	}
	out, err := ShellFrom(c).Format(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(out)
}

// notificationOutput is the JSON form of a notification.
type notificationOutput struct {
	Kind string           `json:"kind"`
	Data rcp.Notification `json:"data"`
}

// FormatNotification converts a notification into display text.
func (s *Shell) FormatNotification(n rcp.Notification) string {
	if s.OutputJSON {
		kind := reflect.Indirect(reflect.ValueOf(n)).Type().Name()
		out, err := json.Marshal(&notificationOutput{Kind: kind, Data: n})
		if err != nil {
			return fmt.Sprintf("notification %02x: %v", n.NotificationCode(), err)
		}
		return string(out)
	}
	return fmt.Sprintf("%v", n)
}

func (s *Shell) printNotification(n rcp.Notification) {
	s.Shell.Println(s.FormatNotification(n))
}

// Connect connects the reader at address.
func (s *Shell) Connect(address string) error {
	if err := s.Driver.Connect(address); err != nil {
		return err
	}
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", address))
	return nil
}

// Disconnect disconnects current reader.
func (s *Shell) Disconnect() error {
	err := s.Driver.Disconnect()
	s.Shell.SetPrompt(unconnectedPrompt)
	return err
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer s.Driver.Close()
	if s.Port != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Port)
		}
		if err := s.Connect(s.Port); err != nil {
			log.Fatalf("connect %q failed: %v", s.Port, err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// NewDriver creates the driver selected by flags.
func NewDriver() *driver.Driver {
	if !emulate {
		return driver.New()
	}
	reader := emulator.New()
	reader.AddTags(SampleTags()...)
	if portName == "" {
		portName = emulatorAddress
	}
	return driver.New(driver.WithDialer(reader.Dialer()))
}

// SampleTags are placed in the field of the emulated reader.
func SampleTags() []*emulator.Tag {
	return []*emulator.Tag{
		{
			EPC:  []byte{0xe2, 0x00, 0x68, 0x11, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01},
			TID:  []byte{0xe2, 0x80, 0x11, 0x05, 0x20, 0x00, 0x00, 0x01},
			RSSI: -58,
			Memory: map[rcp.MemoryBank][]byte{
				rcp.BankUser: make([]byte, 32),
			},
		},
		{
			EPC:  []byte{0xe2, 0x00, 0x68, 0x11, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x02},
			TID:  []byte{0xe2, 0x80, 0x11, 0x05, 0x20, 0x00, 0x00, 0x02},
			RSSI: -66,
		},
	}
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(NewDriver()).Run(flag.Args()...)
}
