package browserprint

import (
	"context"

	"github.com/google/uuid"
)

type writeRequest struct {
	Device Device `json:"device"`
	Data   string `json:"data"`
}

type readRequest struct {
	Device Device `json:"device"`
}

// Write sends raw data to the selected printer. The bridge's reply is
// discarded.
func (c *Client) Write(ctx context.Context, data string) error {
	_, err := c.postJSON(ctx, endpointWrite, writeRequest{
		Device: c.Printer(),
		Data:   data,
	})
	return err
}

// Read returns whatever the selected printer has sent back since the last read.
func (c *Client) Read(ctx context.Context) (string, error) {
	body, err := c.postJSON(ctx, endpointRead, readRequest{
		Device: c.Printer(),
	})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Print sends text to the printer unchanged.
func (c *Client) Print(ctx context.Context, text string) error {
	return c.submit(ctx, text)
}

// PrintLabel wraps labelData in the profile's label template and prints it.
func (c *Client) PrintLabel(ctx context.Context, labelData string) error {
	return c.submit(ctx, c.profile.RenderLabel(labelData))
}

func (c *Client) submit(ctx context.Context, data string) error {
	logger := c.logger.WithField("job", uuid.NewString())
	logger.Debugf("Sending %d bytes to %q", len(data), c.Printer().Name)

	if err := c.Write(ctx, data); err != nil {
		logger.Warnf("Print job failed: %v", err)
		return err
	}
	logger.Info("Print job sent")
	return nil
}

// exchange writes a command and reads the printer's answer. Exchanges are
// serialized so concurrent callers do not read each other's replies.
func (c *Client) exchange(ctx context.Context, cmd string) (string, error) {
	c.ioMu.Lock()
	defer c.ioMu.Unlock()

	if err := c.Write(ctx, cmd); err != nil {
		return "", err
	}
	return c.Read(ctx)
}
