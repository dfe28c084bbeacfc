package profiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zebraprint/pkg/browserprint"
)

func TestLoad_ZPLMatchesBuiltin(t *testing.T) {
	p, err := Load("zpl")
	require.NoError(t, err)
	assert.Equal(t, browserprint.ZPLProfile, p)

	p, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, browserprint.ZPLProfile, p)
}

func TestLoad_EveryEmbeddedProfile(t *testing.T) {
	names, err := Names()
	require.NoError(t, err)
	assert.Contains(t, names, "zpl")
	assert.Contains(t, names, "zpl-large")

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			p, err := Load(name)
			require.NoError(t, err)
			assert.Equal(t, name, p.Name)
			assert.NotEmpty(t, p.StatusCodes)
		})
	}
}

func TestLoad_Unknown(t *testing.T) {
	_, err := Load("escpos")
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		{
			name: "Valid",
			input: `name = "x"
status_command = "~HQES"
probe_command = "~HS"
label_template = "^XA^FD{{data}}^FS^XZ"`,
		},
		{
			name:        "Not TOML",
			input:       `name = [`,
			expectError: true,
		},
		{
			name:        "Missing name",
			input:       `status_command = "~HQES"`,
			expectError: true,
		},
		{
			name: "Missing probe command",
			input: `name = "x"
status_command = "~HQES"
label_template = "{{data}}"`,
			expectError: true,
		},
		{
			name: "Template without placeholder",
			input: `name = "x"
status_command = "~HQES"
probe_command = "~HS"
label_template = "^XA^XZ"`,
			expectError: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.input))
			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
