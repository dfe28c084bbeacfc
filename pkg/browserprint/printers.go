package browserprint

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// defaultPrinterLines is the minimum line count of a default printer
// descriptor: six key/value lines followed by the version line.
const defaultPrinterLines = 7

type availableResponse struct {
	Printer []json.RawMessage `json:"printer"`
}

// AvailablePrinters lists the printers the bridge knows about, exactly as the
// bridge returned them. Every failure is reported as ErrNoPrinters.
func (c *Client) AvailablePrinters(ctx context.Context) ([]json.RawMessage, error) {
	body, err := c.get(ctx, endpointAvailable)
	if err != nil {
		return nil, wrapAs(ErrNoPrinters, err)
	}

	var payload availableResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, wrapAs(ErrNoPrinters, fmt.Errorf("decode response: %w", err))
	}
	if len(payload.Printer) == 0 {
		return nil, ErrNoPrinters
	}
	return payload.Printer, nil
}

// AvailableDevices is AvailablePrinters decoded into Device records. Entries
// are not validated: a bridge that lists bare identifiers yields devices whose
// Name and UID are the identifier.
func (c *Client) AvailableDevices(ctx context.Context) ([]Device, error) {
	raw, err := c.AvailablePrinters(ctx)
	if err != nil {
		return nil, err
	}

	devices := make([]Device, 0, len(raw))
	for _, item := range raw {
		devices = append(devices, decodeListed(item))
	}
	return devices, nil
}

func decodeListed(item json.RawMessage) Device {
	var id string
	if err := json.Unmarshal(item, &id); err == nil {
		return Device{Name: id, UID: id}
	}

	// Type mismatches still leave the matching fields filled in.
	var dev Device
	_ = json.Unmarshal(item, &dev)
	if !dev.IsZero() {
		return dev
	}

	id = strings.TrimSpace(string(item))
	return Device{Name: id, UID: id}
}

// DefaultPrinter asks the bridge for the system default printer and selects
// it. A truncated descriptor fails with ErrInvalidPrinterData, anything else
// with ErrNoDefaultPrinter. When the device cannot be stored the current
// selection is kept.
func (c *Client) DefaultPrinter(ctx context.Context) (Device, error) {
	body, err := c.get(ctx, endpointDefault)
	if err != nil {
		return Device{}, wrapAs(ErrNoDefaultPrinter, err)
	}

	dev, err := parseDefaultPrinter(string(body))
	if err != nil {
		return Device{}, err
	}

	// Unlike SetPrinter, the selection only changes once it is stored.
	if err := c.persist(dev); err != nil {
		return Device{}, wrapAs(ErrNoDefaultPrinter, err)
	}
	c.setDevice(dev)
	c.logger.Infof("Selected default printer %q (%s)", dev.Name, dev.UID)
	return dev, nil
}

// Descriptors have the format:
// "Device: <name>"
// "Type: <deviceType>"
// "Connection: <connection>"
// "UID: <uid>"
// "Provider: <provider>"
// "Manufacturer: <manufacturer>"
// "Version: <version>"
// The version line is required but its value is ignored.
func parseDefaultPrinter(data string) (Device, error) {
	lines := strings.Split(data, "\n")
	if len(lines) < defaultPrinterLines {
		return Device{}, wrapAs(ErrInvalidPrinterData, fmt.Errorf("got %d lines, want %d", len(lines), defaultPrinterLines))
	}

	var values [6]string
	for i := range values {
		_, value, ok := strings.Cut(lines[i], ":")
		if !ok {
			return Device{}, wrapAs(ErrNoDefaultPrinter, fmt.Errorf("line %d has no separator: %q", i+1, lines[i]))
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return Device{}, wrapAs(ErrNoDefaultPrinter, fmt.Errorf("line %d has no value: %q", i+1, lines[i]))
		}
		values[i] = value
	}

	return Device{
		Name:         values[0],
		DeviceType:   values[1],
		Connection:   values[2],
		UID:          values[3],
		Provider:     values[4],
		Manufacturer: values[5],
		Version:      0,
	}, nil
}
