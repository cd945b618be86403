package sh

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/redrcp.go/pkg/driver"
	"github.com/robotalks/redrcp.go/pkg/link"
	"github.com/robotalks/redrcp.go/pkg/rcp"
)

// CommandFunc runs a reader command and returns the result to print.
type CommandFunc func(ctx context.Context, d *driver.Driver, args []string) (interface{}, error)

// ReaderCmd wraps fn into a command func which requires a connection.
func ReaderCmd(fn CommandFunc) func(c *ishell.Context) {
	return MustBeConnected(func(c *ishell.Context) {
		s := ShellFrom(c)
		ctx, cancel := s.Context()
		defer cancel()
		v, err := fn(ctx, s.Driver, c.Args)
		Print(c, v, err)
	})
}

// Info is the identity of the reader.
type Info struct {
	Model           string `json:"model"`
	FirmwareVersion string `json:"firmware"`
	Manufacturer    string `json:"manufacturer"`
}

func infoCmd(ctx context.Context, d *driver.Driver, args []string) (interface{}, error) {
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "model":
			return d.InfoModel(ctx)
		case "firmware", "fw":
			return d.InfoFirmwareVersion(ctx)
		case "manufacturer":
			return d.InfoManufacturer(ctx)
		case "detail":
			return d.InfoDetail(ctx)
		}
		return nil, fmt.Errorf("unknown info %q", args[0])
	}
	var info Info
	var err error
	if info.Model, err = d.InfoModel(ctx); err != nil {
		return nil, err
	}
	if info.FirmwareVersion, err = d.InfoFirmwareVersion(ctx); err != nil {
		return nil, err
	}
	if info.Manufacturer, err = d.InfoManufacturer(ctx); err != nil {
		return nil, err
	}
	return &info, nil
}

func regionCmd(ctx context.Context, d *driver.Driver, args []string) (interface{}, error) {
	if len(args) == 0 {
		return d.Region(ctx)
	}
	region, err := rcp.ParseRegion(args[0])
	if err != nil {
		return nil, err
	}
	return nil, d.SetRegion(ctx, region)
}

func powerCmd(ctx context.Context, d *driver.Driver, args []string) (interface{}, error) {
	if len(args) == 0 {
		return d.TxPower(ctx)
	}
	dbm, err := parseFloat("DBM", args[0])
	if err != nil {
		return nil, err
	}
	return nil, d.SetTxPower(ctx, dbm)
}

func cwCmd(ctx context.Context, d *driver.Driver, args []string) (interface{}, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("on or off required")
	}
	on, err := parseOnOff(args[0])
	if err != nil {
		return nil, err
	}
	return nil, d.SetCW(ctx, on)
}

func inventoryCmd(ctx context.Context, d *driver.Driver, args []string) (interface{}, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("start or stop required")
	}
	mode := "read2"
	if len(args) > 1 {
		mode = strings.ToLower(args[1])
	}
	var start func(context.Context, rcp.AutoRead) error
	var stop func(context.Context) error
	switch mode {
	case "read2":
		start, stop = d.StartAutoRead2, d.StopAutoRead2
	case "tid":
		start, stop = d.StartAutoReadTID, d.StopAutoReadTID
	case "rssi":
		start, stop = d.StartAutoReadRSSI, d.StopAutoReadRSSI
	default:
		return nil, fmt.Errorf("unknown inventory mode %q", mode)
	}
	switch strings.ToLower(args[0]) {
	case "start":
		var rest []string
		if len(args) > 2 {
			rest = args[2:]
		}
		a, err := parseAutoRead(rest)
		if err != nil {
			return nil, err
		}
		return nil, start(ctx, a)
	case "stop":
		return nil, stop(ctx)
	}
	return nil, fmt.Errorf("start or stop required, got %q", args[0])
}

func readCmd(ctx context.Context, d *driver.Driver, args []string) (interface{}, error) {
	if len(args) < 4 {
		return nil, fmt.Errorf("EPC BANK WORDPTR WORDCOUNT [PASSWORD] required")
	}
	access := append(append([]string{}, args[:3]...), args[4:]...)
	a, err := parseAccess(access)
	if err != nil {
		return nil, err
	}
	count, err := parseUint("WORDCOUNT", args[3], 16)
	if err != nil {
		return nil, err
	}
	a.WordCount = uint16(count)
	data, err := d.ReadTag(ctx, a)
	if err != nil {
		return nil, err
	}
	return hex.EncodeToString(data), nil
}

func writeCmd(ctx context.Context, d *driver.Driver, args []string) (interface{}, error) {
	if len(args) < 4 {
		return nil, fmt.Errorf("EPC BANK WORDPTR DATA [PASSWORD] required")
	}
	access := append(append([]string{}, args[:3]...), args[4:]...)
	a, err := parseAccess(access)
	if err != nil {
		return nil, err
	}
	data, err := parseHex(args[3])
	if err != nil {
		return nil, err
	}
	return nil, d.WriteTag(ctx, a, data)
}

// parseQuery applies NAME VALUE pairs to q.
func parseQuery(q *rcp.QueryParameters, args []string) error {
	if len(args)%2 != 0 {
		return fmt.Errorf("NAME VALUE pairs expected")
	}
	for n := 0; n < len(args); n += 2 {
		name, val := strings.ToLower(args[n]), args[n+1]
		if name == "target" {
			switch strings.ToLower(val) {
			case "a":
				q.Target = rcp.TargetA
			case "b":
				q.Target = rcp.TargetB
			default:
				return fmt.Errorf("target must be a or b, got %q", val)
			}
			continue
		}
		v, err := parseUint(name, val, 8)
		if err != nil {
			return err
		}
		switch name {
		case "q":
			q.Q = uint8(v)
		case "session":
			q.Session = rcp.Session(v)
		case "sel":
			q.Sel = rcp.Sel(v)
		case "dr":
			q.DivideRatio = rcp.DivideRatio(v)
		case "m":
			q.Modulation = rcp.Modulation(v)
		case "trext":
			q.PilotTone = v != 0
		case "toggle":
			q.TargetToggle = v != 0
		default:
			return fmt.Errorf("unknown query parameter %q", name)
		}
	}
	return nil
}

func queryCmd(ctx context.Context, d *driver.Driver, args []string) (interface{}, error) {
	q, err := d.QueryParameters(ctx)
	if err != nil || len(args) == 0 {
		return q, err
	}
	if err := parseQuery(&q, args); err != nil {
		return nil, err
	}
	return nil, d.SetQueryParameters(ctx, q)
}

func antiCollisionCmd(ctx context.Context, d *driver.Driver, args []string) (interface{}, error) {
	if len(args) == 0 {
		return d.AntiCollision(ctx)
	}
	a, err := parseAntiCollision(args)
	if err != nil {
		return nil, err
	}
	return nil, d.SetAntiCollision(ctx, a)
}

func modulationCmd(ctx context.Context, d *driver.Driver, args []string) (interface{}, error) {
	if len(args) == 0 {
		return d.Modulation(ctx)
	}
	if len(args) < 3 {
		return nil, fmt.Errorf("BLF M DR required")
	}
	var v [3]uint64
	var err error
	for n, name := range []string{"BLF", "M", "DR"} {
		bits := 8
		if n == 0 {
			bits = 16
		}
		if v[n], err = parseUint(name, args[n], bits); err != nil {
			return nil, err
		}
	}
	return nil, d.SetModulation(ctx, rcp.ModulationMode{
		BLF:         uint16(v[0]),
		Modulation:  rcp.Modulation(v[1]),
		DivideRatio: rcp.DivideRatio(v[2]),
	})
}

func filterCmd(ctx context.Context, d *driver.Driver, args []string) (interface{}, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("INDEX required")
	}
	if len(args) == 1 {
		index, err := parseUint("INDEX", args[0], 8)
		if err != nil {
			return nil, err
		}
		return d.SelectFilter(ctx, uint8(index))
	}
	f, err := parseSelectFilter(args)
	if err != nil {
		return nil, err
	}
	return nil, d.SetSelectFilter(ctx, f)
}

func enablesCmd(ctx context.Context, d *driver.Driver, args []string) (interface{}, error) {
	if len(args) == 0 {
		return d.SelectionEnables(ctx)
	}
	mask, err := parseUint("MASK", args[0], 8)
	if err != nil {
		return nil, err
	}
	enables := make(rcp.SelectionEnables, rcp.MaxSelectFilters)
	for n := range enables {
		enables[n] = mask&(1<<uint(n)) != 0
	}
	return nil, d.SetSelectionEnables(ctx, enables)
}

func fhLbtCmd(ctx context.Context, d *driver.Driver, args []string) (interface{}, error) {
	if len(args) == 0 {
		return d.FhLbtParameters(ctx)
	}
	p, err := parseFhLbt(args)
	if err != nil {
		return nil, err
	}
	return nil, d.SetFhLbtParameters(ctx, p)
}

func init() {
	AddCmds(
		&ResetCmd,
		&InfoCmd,
		&RegionCmd,
		&PowerCmd,
		&ChannelCmd,
		&HoppingCmd,
		&RSSICmd,
		&CWCmd,
		&InventoryCmd,
		&ReadCmd,
		&WriteCmd,
		&QueryCmd,
		&AntiCollisionCmd,
		&ModulationCmd,
		&FilterCmd,
		&EnablesCmd,
		&FhLbtCmd,
	)
}

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ports, err := link.ListPorts()
			if err == nil && ports == nil {
				ports = []string{}
			}
			if err != nil || ShellFrom(c).OutputJSON {
				Print(c, ports, err)
				return
			}
			if len(ports) == 0 {
				c.Println("No serial ports found")
				return
			}
			for _, port := range ports {
				c.Println(port)
			}
		},
	}

	// ConnectCmd connects a reader.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "PORT|tcp://HOST:PORT|ws://HOST/PATH",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			address := s.Port
			if len(c.Args) > 0 {
				address = c.Args[0]
			}
			if address == "" {
				c.Err(fmt.Errorf("address required"))
				return
			}
			if err := s.Connect(address); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current reader.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).Disconnect(); err != nil {
				c.Err(err)
			}
		},
	}

	// ResetCmd resets the reader.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Help: "",
		Func: ReaderCmd(func(ctx context.Context, d *driver.Driver, args []string) (interface{}, error) {
			return nil, d.SoftwareReset(ctx)
		}),
	}

	// InfoCmd queries reader information.
	InfoCmd = ishell.Cmd{
		Name:    "info",
		Aliases: []string{"i"},
		Help:    "[model|firmware|manufacturer|detail]",
		Func:    ReaderCmd(infoCmd),
	}

	// RegionCmd gets or sets the region.
	RegionCmd = ishell.Cmd{
		Name: "region",
		Help: "[korea|us|us2|europe|japan|china1|china2]",
		Func: ReaderCmd(regionCmd),
	}

	// PowerCmd gets or sets the TX power.
	PowerCmd = ishell.Cmd{
		Name:    "power",
		Aliases: []string{"txpower"},
		Help:    "[DBM]",
		Func:    ReaderCmd(powerCmd),
	}

	// ChannelCmd gets the current channel.
	ChannelCmd = ishell.Cmd{
		Name: "channel",
		Help: "",
		Func: ReaderCmd(func(ctx context.Context, d *driver.Driver, args []string) (interface{}, error) {
			return d.CurrentChannel(ctx)
		}),
	}

	// HoppingCmd gets the frequency hopping table.
	HoppingCmd = ishell.Cmd{
		Name: "hopping",
		Help: "",
		Func: ReaderCmd(func(ctx context.Context, d *driver.Driver, args []string) (interface{}, error) {
			return d.HoppingTable(ctx)
		}),
	}

	// RSSICmd gets the RSSI of the current channel.
	RSSICmd = ishell.Cmd{
		Name: "rssi",
		Help: "",
		Func: ReaderCmd(func(ctx context.Context, d *driver.Driver, args []string) (interface{}, error) {
			return d.RSSI(ctx)
		}),
	}

	// CWCmd turns the continuous wave on or off.
	CWCmd = ishell.Cmd{
		Name: "cw",
		Help: "on|off",
		Func: ReaderCmd(cwCmd),
	}

	// InventoryCmd starts or stops automatic reads.
	InventoryCmd = ishell.Cmd{
		Name:    "inventory",
		Aliases: []string{"inv"},
		Help:    "start|stop [read2|tid|rssi] [MAX_TAGS [MAX_TIME [REPEAT]]]",
		Func:    ReaderCmd(inventoryCmd),
	}

	// ReadCmd reads tag memory.
	ReadCmd = ishell.Cmd{
		Name: "read",
		Help: "EPC BANK WORDPTR WORDCOUNT [PASSWORD]",
		Func: ReaderCmd(readCmd),
	}

	// WriteCmd writes tag memory.
	WriteCmd = ishell.Cmd{
		Name: "write",
		Help: "EPC BANK WORDPTR DATA [PASSWORD]",
		Func: ReaderCmd(writeCmd),
	}

	// QueryCmd gets or updates the Query parameters.
	QueryCmd = ishell.Cmd{
		Name: "query",
		Help: "[q|session|sel|target|dr|m|trext|toggle VALUE]...",
		Func: ReaderCmd(queryCmd),
	}

	// AntiCollisionCmd gets or sets the anti-collision mode.
	AntiCollisionCmd = ishell.Cmd{
		Name:    "anticollision",
		Aliases: []string{"ac"},
		Help:    "[fixed|dynamic START MIN MAX]",
		Func:    ReaderCmd(antiCollisionCmd),
	}

	// ModulationCmd gets or sets the modulation mode.
	ModulationCmd = ishell.Cmd{
		Name: "modulation",
		Help: "[BLF M DR]",
		Func: ReaderCmd(modulationCmd),
	}

	// FilterCmd gets or sets a select filter.
	FilterCmd = ishell.Cmd{
		Name: "filter",
		Help: "INDEX [TARGET ACTION BANK POINTER LENGTH [MASK]]",
		Func: ReaderCmd(filterCmd),
	}

	// EnablesCmd gets or sets the select filter enable mask.
	EnablesCmd = ishell.Cmd{
		Name: "enables",
		Help: "[MASK]",
		Func: ReaderCmd(enablesCmd),
	}

	// FhLbtCmd gets or sets the FH/LBT parameters.
	FhLbtCmd = ishell.Cmd{
		Name: "fhlbt",
		Help: "[DWELL IDLE SENSE LBT fh|lbt|fhlbt]",
		Func: ReaderCmd(fhLbtCmd),
	}
)
