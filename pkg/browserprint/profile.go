package browserprint

import "strings"

// LabelPlaceholder marks where label data goes in Profile.LabelTemplate.
const LabelPlaceholder = "{{data}}"

// Profile is the command set for one printer model family.
type Profile struct {
	Name          string            `toml:"name"`
	StatusCommand string            `toml:"status_command"`
	ProbeCommand  string            `toml:"probe_command"`
	LabelTemplate string            `toml:"label_template"`
	StatusCodes   map[string]string `toml:"status_codes"`
}

// ZPLProfile drives Zebra printers speaking ZPL II.
var ZPLProfile = Profile{
	Name:          "zpl",
	StatusCommand: "~HQES",
	ProbeCommand:  "~HS",
	LabelTemplate: "^XA^FO50,50^ADN,36,20^FD" + LabelPlaceholder + "^FS^XZ",
	StatusCodes: map[string]string{
		"1": "Paper Out",
		"2": "Printhead Issue",
		"3": "Printer Paused",
		"4": "Low Ink/Toner",
		"5": "Paper Jam",
		"6": "General Error",
	},
}

// RenderLabel substitutes data into the label template.
func (p Profile) RenderLabel(data string) string {
	return strings.ReplaceAll(p.LabelTemplate, LabelPlaceholder, data)
}

// StatusLabel returns the human readable label for a status token.
func (p Profile) StatusLabel(code string) (string, bool) {
	label, ok := p.StatusCodes[code]
	return label, ok
}
