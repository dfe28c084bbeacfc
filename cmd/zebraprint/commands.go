package main

import (
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"

	"zebraprint/pkg/browserprint"
)

func printDevice(w io.Writer, dev browserprint.Device) {
	if dev.IsIdentifierOnly() {
		fmt.Fprintln(w, dev.UID)
		return
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", dev.Name, dev.UID, dev.Connection, dev.DeviceType)
}

func listPrinters(c *cli.Context, s *session) error {
	devices, err := s.client.AvailableDevices(c.Context)
	if err != nil {
		return err
	}
	for _, dev := range devices {
		printDevice(c.App.Writer, dev)
	}
	return nil
}

func showDefault(c *cli.Context, s *session) error {
	dev, err := s.client.DefaultPrinter(c.Context)
	if err != nil {
		return err
	}
	printDevice(c.App.Writer, dev)
	return nil
}

func showCurrent(c *cli.Context, s *session) error {
	dev := s.client.Printer()
	if dev.IsZero() {
		return fmt.Errorf("no printer selected")
	}
	printDevice(c.App.Writer, dev)
	return nil
}

func selectPrinter(c *cli.Context, s *session) error {
	uid := strings.TrimSpace(c.String("uid"))

	var dev browserprint.Device
	if uid == "" {
		// DefaultPrinter selects what it finds.
		d, err := s.client.DefaultPrinter(c.Context)
		if err != nil {
			return err
		}
		dev = d
	} else {
		devices, err := s.client.AvailableDevices(c.Context)
		if err != nil {
			return err
		}
		for _, d := range devices {
			if d.UID == uid {
				dev = d
				break
			}
		}
		if dev.IsZero() {
			return fmt.Errorf("no printer with uid %q", uid)
		}
		if err := s.client.SetPrinter(dev); err != nil {
			return err
		}
	}

	fmt.Fprintf(c.App.Writer, "Selected %s (%s)\n", dev.Name, dev.UID)
	return nil
}

// ensurePrinter falls back to the bridge default when nothing is selected yet.
func ensurePrinter(c *cli.Context, s *session) error {
	if !s.client.Printer().IsZero() {
		return nil
	}
	dev, err := s.client.DefaultPrinter(c.Context)
	if err != nil {
		return err
	}
	log.Infof("No printer selected, using default %q", dev.Name)
	return nil
}

func showStatus(c *cli.Context, s *session) error {
	if err := ensurePrinter(c, s); err != nil {
		return err
	}
	status, err := s.client.CheckPrinterStatus(c.Context)
	if err != nil {
		return err
	}
	if status.IsReadyToPrint {
		fmt.Fprintln(c.App.Writer, "Ready to print")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "Not ready: %s\n", strings.Join(status.Errors, ", "))
	return fmt.Errorf("printer is not ready")
}

func checkConnection(c *cli.Context, s *session) error {
	conn := s.client.CheckConnection(c.Context)
	fmt.Fprintln(c.App.Writer, conn.Message)
	if !conn.IsConnected {
		return fmt.Errorf("printer is not connected")
	}
	return nil
}

func joinArgs(c *cli.Context, name string) (string, error) {
	if c.NArg() == 0 {
		return "", fmt.Errorf("missing %s argument", name)
	}
	return strings.Join(c.Args().Slice(), " "), nil
}

func writeRaw(c *cli.Context, s *session) error {
	data, err := joinArgs(c, "data")
	if err != nil {
		return err
	}
	if err := ensurePrinter(c, s); err != nil {
		return err
	}
	return s.client.Write(c.Context, data)
}

func readRaw(c *cli.Context, s *session) error {
	if err := ensurePrinter(c, s); err != nil {
		return err
	}
	out, err := s.client.Read(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, out)
	return nil
}

func printText(c *cli.Context, s *session) error {
	text, err := joinArgs(c, "text")
	if err != nil {
		return err
	}
	if err := ensurePrinter(c, s); err != nil {
		return err
	}
	return s.client.Print(c.Context, text)
}

func printLabel(c *cli.Context, s *session) error {
	data, err := joinArgs(c, "data")
	if err != nil {
		return err
	}
	if err := ensurePrinter(c, s); err != nil {
		return err
	}
	return s.client.PrintLabel(c.Context, data)
}
