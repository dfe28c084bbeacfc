package browserprint

import (
	"context"
	"strings"
	"unicode"

	"zebraprint/pkg/metrics"
)

const (
	msgNoPrinter     = "No printer connected."
	msgConnected     = "Printer is connected"
	msgNotResponding = "Printer is not responding"
	msgConnError     = "Connection error: "
)

// CheckPrinterStatus sends the profile's status query and maps the codes in
// the reply to error labels.
func (c *Client) CheckPrinterStatus(ctx context.Context) (StatusResult, error) {
	raw, err := c.exchange(ctx, c.profile.StatusCommand)
	if err != nil {
		return StatusResult{}, err
	}

	errs := parseStatus(c.profile, raw)
	c.logger.Debugf("Status reply %q: errors %v", raw, errs)

	metrics.StatusChecks.Inc()
	for _, label := range errs {
		metrics.StatusErrors.WithLabelValues(label).Inc()
	}

	return StatusResult{
		IsReadyToPrint: len(errs) == 0,
		Errors:         errs,
	}, nil
}

// parseStatus keeps only digits and whitespace, splits on single spaces and
// looks every token up in the profile's status table. Unknown tokens are
// ignored. Replies that are not a status bitmap at all are not detected.
func parseStatus(p Profile, raw string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, raw)
	cleaned = strings.TrimSpace(cleaned)

	errs := []string{}
	for _, token := range strings.Split(cleaned, " ") {
		if label, ok := p.StatusLabel(token); ok {
			errs = append(errs, label)
		}
	}
	return errs
}

// CheckConnection probes the selected printer. It never fails; problems are
// reported in the result message.
func (c *Client) CheckConnection(ctx context.Context) ConnectionResult {
	if c.Printer().IsZero() {
		return ConnectionResult{IsConnected: false, Message: msgNoPrinter}
	}

	reply, err := c.exchange(ctx, c.profile.ProbeCommand)
	if err != nil {
		c.logger.Debugf("Connection probe failed: %v", err)
		return ConnectionResult{IsConnected: false, Message: msgConnError + err.Error()}
	}
	if reply == "" {
		return ConnectionResult{IsConnected: false, Message: msgNotResponding}
	}
	return ConnectionResult{IsConnected: true, Message: msgConnected}
}
