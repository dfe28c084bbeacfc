package browserprint

// Device identifies a printer known to the bridge. The JSON names are the
// bridge's wire format and are also what gets persisted.
type Device struct {
	Name         string `json:"name"`
	DeviceType   string `json:"deviceType"`
	Connection   string `json:"connection"`
	UID          string `json:"uid"`
	Provider     string `json:"provider"`
	Manufacturer string `json:"manufacturer"`
	Version      int    `json:"version"`
}

// IsZero reports whether no printer has been selected.
func (d Device) IsZero() bool {
	return d == Device{}
}

// IsIdentifierOnly reports whether d holds nothing but an identifier taken
// from the available list.
func (d Device) IsIdentifierOnly() bool {
	return d.UID != "" && d == Device{Name: d.UID, UID: d.UID}
}

// StatusResult is the outcome of a status query.
type StatusResult struct {
	IsReadyToPrint bool     `json:"isReadyToPrint"`
	Errors         []string `json:"errors"`
}

// ConnectionResult is the outcome of a connection probe.
type ConnectionResult struct {
	IsConnected bool   `json:"isConnected"`
	Message     string `json:"message"`
}
