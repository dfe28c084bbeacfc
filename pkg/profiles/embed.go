// Package profiles ships the printer profiles known to zebraprint.
package profiles

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"zebraprint/pkg/browserprint"
)

//go:embed *.toml
var FS embed.FS

// Names lists the embedded profiles.
func Names() ([]string, error) {
	files, err := fs.Glob(FS, "*.toml")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimSuffix(f, path.Ext(f)))
	}
	sort.Strings(names)
	return names, nil
}

// Load reads the named embedded profile. An empty name loads "zpl".
func Load(name string) (browserprint.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = browserprint.ZPLProfile.Name
	}

	data, err := FS.ReadFile(name + ".toml")
	if err != nil {
		return browserprint.Profile{}, fmt.Errorf("unknown profile %q", name)
	}
	return Parse(data)
}

// Parse decodes a profile and checks it is usable.
func Parse(data []byte) (browserprint.Profile, error) {
	var p browserprint.Profile
	if err := toml.Unmarshal(data, &p); err != nil {
		return browserprint.Profile{}, fmt.Errorf("parse profile: %w", err)
	}

	switch {
	case p.Name == "":
		return p, fmt.Errorf("profile has no name")
	case p.StatusCommand == "":
		return p, fmt.Errorf("profile %s: status_command is required", p.Name)
	case p.ProbeCommand == "":
		return p, fmt.Errorf("profile %s: probe_command is required", p.Name)
	case !strings.Contains(p.LabelTemplate, browserprint.LabelPlaceholder):
		return p, fmt.Errorf("profile %s: label_template must contain %s", p.Name, browserprint.LabelPlaceholder)
	}
	return p, nil
}
