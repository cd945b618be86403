package driver

import (
	"context"
	"encoding"
	"fmt"

	"github.com/robotalks/redrcp.go/pkg/rcp"
)

// set issues a set-type command which replies a success status.
func (d *Driver) set(ctx context.Context, cmd *rcp.Command, err error) error {
	if err != nil {
		return err
	}
	r, err := d.Do(ctx, cmd)
	if err != nil {
		return err
	}
	if err := r.OK(); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return nil
}

// get issues a command and decodes its reply into v.
func (d *Driver) get(ctx context.Context, cmd *rcp.Command, v encoding.BinaryUnmarshaler) error {
	r, err := d.Do(ctx, cmd)
	if err != nil {
		return err
	}
	if err := r.Unmarshal(v); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return nil
}

func (d *Driver) text(ctx context.Context, typ rcp.InfoType) (string, error) {
	cmd := rcp.GetReaderInfo(typ)
	r, err := d.Do(ctx, cmd)
	if err != nil {
		return "", err
	}
	s, err := r.Text()
	if err != nil {
		return "", fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return s, nil
}

// SoftwareReset restarts the reader. The reader acknowledges the command,
// then replies again once the reset has completed.
func (d *Driver) SoftwareReset(ctx context.Context) error {
	cmd := rcp.SystemReset()
	replies, err := d.transact(ctx, cmd, 2)
	if err != nil {
		return err
	}
	if err := replies[len(replies)-1].OK(); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return nil
}

// InfoModel returns the model name.
func (d *Driver) InfoModel(ctx context.Context) (string, error) {
	return d.text(ctx, rcp.InfoModel)
}

// InfoFirmwareVersion returns the firmware version.
func (d *Driver) InfoFirmwareVersion(ctx context.Context) (string, error) {
	return d.text(ctx, rcp.InfoFirmwareVersion)
}

// InfoManufacturer returns the manufacturer.
func (d *Driver) InfoManufacturer(ctx context.Context) (string, error) {
	return d.text(ctx, rcp.InfoManufacturer)
}

// InfoDetail returns the detailed reader information.
func (d *Driver) InfoDetail(ctx context.Context) (detail rcp.ReaderDetail, err error) {
	err = d.get(ctx, rcp.GetReaderInfo(rcp.InfoDetail), &detail)
	return
}

// Region returns the regulatory region.
func (d *Driver) Region(ctx context.Context) (rcp.Region, error) {
	cmd := rcp.GetRegion()
	r, err := d.Do(ctx, cmd)
	if err != nil {
		return 0, err
	}
	region, err := r.Region()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return region, nil
}

// SetRegion changes the regulatory region.
func (d *Driver) SetRegion(ctx context.Context, region rcp.Region) error {
	cmd, err := rcp.SetRegion(region)
	return d.set(ctx, cmd, err)
}

// TxPower returns the transmit power level.
func (d *Driver) TxPower(ctx context.Context) (level rcp.TxPowerLevel, err error) {
	err = d.get(ctx, rcp.GetTxPower(), &level)
	return
}

// SetTxPower changes the transmit power in dBm.
func (d *Driver) SetTxPower(ctx context.Context, dbm float64) error {
	cmd, err := rcp.SetTxPower(dbm)
	return d.set(ctx, cmd, err)
}

// CurrentChannel returns the current RF channel.
func (d *Driver) CurrentChannel(ctx context.Context) (ch rcp.Channel, err error) {
	err = d.get(ctx, rcp.GetChannel(), &ch)
	return
}

// HoppingTable returns the frequency hopping table.
func (d *Driver) HoppingTable(ctx context.Context) (table rcp.HoppingTable, err error) {
	err = d.get(ctx, rcp.GetHoppingTable(), &table)
	return
}

// AntiCollision returns the anti-collision mode.
func (d *Driver) AntiCollision(ctx context.Context) (a rcp.AntiCollision, err error) {
	err = d.get(ctx, rcp.GetAntiCollision(), &a)
	return
}

// SetAntiCollision changes the anti-collision mode.
func (d *Driver) SetAntiCollision(ctx context.Context, a rcp.AntiCollision) error {
	cmd, err := rcp.SetAntiCollision(a)
	return d.set(ctx, cmd, err)
}

// Modulation returns the modulation mode.
func (d *Driver) Modulation(ctx context.Context) (m rcp.ModulationMode, err error) {
	err = d.get(ctx, rcp.GetModulation(), &m)
	return
}

// SetModulation changes the modulation mode.
func (d *Driver) SetModulation(ctx context.Context, m rcp.ModulationMode) error {
	cmd, err := rcp.SetModulation(m)
	return d.set(ctx, cmd, err)
}

// QueryParameters returns the Gen2 Query parameters.
func (d *Driver) QueryParameters(ctx context.Context) (q rcp.QueryParameters, err error) {
	err = d.get(ctx, rcp.GetQueryParameters(), &q)
	return
}

// SetQueryParameters changes the Gen2 Query parameters.
func (d *Driver) SetQueryParameters(ctx context.Context, q rcp.QueryParameters) error {
	cmd, err := rcp.SetQueryParameters(q)
	return d.set(ctx, cmd, err)
}

// SelectFilter returns the select filter at index.
func (d *Driver) SelectFilter(ctx context.Context, index uint8) (f rcp.SelectFilter, err error) {
	cmd, err := rcp.GetSelectFilter(index)
	if err != nil {
		return f, err
	}
	err = d.get(ctx, cmd, &f)
	return
}

// SetSelectFilter changes a select filter.
func (d *Driver) SetSelectFilter(ctx context.Context, f rcp.SelectFilter) error {
	cmd, err := rcp.SetSelectFilter(f)
	return d.set(ctx, cmd, err)
}

// SelectionEnables returns which select filters are enabled.
func (d *Driver) SelectionEnables(ctx context.Context) (e rcp.SelectionEnables, err error) {
	err = d.get(ctx, rcp.GetSelectionEnables(), &e)
	return
}

// SetSelectionEnables enables or disables select filters.
func (d *Driver) SetSelectionEnables(ctx context.Context, e rcp.SelectionEnables) error {
	cmd, err := rcp.SetSelectionEnables(e)
	return d.set(ctx, cmd, err)
}

// FhLbtParameters returns the frequency hopping and listen-before-talk parameters.
func (d *Driver) FhLbtParameters(ctx context.Context) (p rcp.FhLbtParameters, err error) {
	err = d.get(ctx, rcp.GetFhLbtParameters(), &p)
	return
}

// SetFhLbtParameters changes the frequency hopping and listen-before-talk parameters.
func (d *Driver) SetFhLbtParameters(ctx context.Context, p rcp.FhLbtParameters) error {
	cmd, err := rcp.SetFhLbtParameters(p)
	return d.set(ctx, cmd, err)
}

// RSSI returns the received signal strength in dBm.
func (d *Driver) RSSI(ctx context.Context) (float64, error) {
	cmd := rcp.GetRSSI()
	r, err := d.Do(ctx, cmd)
	if err != nil {
		return 0, err
	}
	v, err := r.RSSI()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return v, nil
}

// SetCW turns the continuous wave on or off.
func (d *Driver) SetCW(ctx context.Context, on bool) error {
	return d.set(ctx, rcp.SetCW(on), nil)
}

// StartAutoRead2 starts an automatic inventory reporting rcp.TagRead.
func (d *Driver) StartAutoRead2(ctx context.Context, a rcp.AutoRead) error {
	cmd, err := rcp.StartAutoRead2(a)
	return d.set(ctx, cmd, err)
}

// StopAutoRead2 stops the automatic inventory.
func (d *Driver) StopAutoRead2(ctx context.Context) error {
	return d.set(ctx, rcp.StopAutoRead2(), nil)
}

// StartAutoReadTID starts an automatic inventory reporting rcp.TagReadTID.
func (d *Driver) StartAutoReadTID(ctx context.Context, a rcp.AutoRead) error {
	cmd, err := rcp.StartAutoReadTID(a)
	return d.set(ctx, cmd, err)
}

// StopAutoReadTID stops the automatic TID inventory.
func (d *Driver) StopAutoReadTID(ctx context.Context) error {
	return d.set(ctx, rcp.StopAutoReadTID(), nil)
}

// StartAutoReadRSSI starts an automatic inventory reporting rcp.TagReadRSSI.
func (d *Driver) StartAutoReadRSSI(ctx context.Context, a rcp.AutoRead) error {
	cmd, err := rcp.StartAutoReadRSSI(a)
	return d.set(ctx, cmd, err)
}

// StopAutoReadRSSI stops the automatic RSSI inventory.
func (d *Driver) StopAutoReadRSSI(ctx context.Context) error {
	return d.set(ctx, rcp.StopAutoReadRSSI(), nil)
}

// ReadTag reads a.WordCount words from a tag.
func (d *Driver) ReadTag(ctx context.Context, a rcp.TagAccess) ([]byte, error) {
	cmd, err := rcp.ReadTag(a)
	if err != nil {
		return nil, err
	}
	r, err := d.Do(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if len(r.Payload) != int(a.WordCount)*2 {
		return nil, fmt.Errorf("%s: %w: %d bytes for %d words", cmd.Name, rcp.ErrMalformed, len(r.Payload), a.WordCount)
	}
	return append([]byte(nil), r.Payload...), nil
}

// WriteTag writes data to a tag. The word count is derived from data.
func (d *Driver) WriteTag(ctx context.Context, a rcp.TagAccess, data []byte) error {
	cmd, err := rcp.WriteTag(a, data)
	return d.set(ctx, cmd, err)
}
