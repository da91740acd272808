package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseThermalZone(t *testing.T) {
	c, err := ParseThermalZone("48500\n")
	require.NoError(t, err)
	assert.Equal(t, 49, c)

	c, err = ParseThermalZone("47000")
	require.NoError(t, err)
	assert.Equal(t, 47, c)

	_, err = ParseThermalZone("")
	assert.Error(t, err)
}

const sensorsOut = `coretemp-isa-0000
Adapter: ISA adapter
Package id 0:  +52.0°C  (high = +100.0°C, crit = +100.0°C)
Core 0:        +49.6°C  (high = +100.0°C, crit = +100.0°C)
Core 1:        +51.0°C  (high = +100.0°C, crit = +100.0°C)

amdgpu-pci-0300
Adapter: PCI adapter
edge:         +43.0°C  (crit = +100.0°C, hyst = -273.1°C)
`

func TestParseSensors(t *testing.T) {
	tests := []struct {
		label   string
		want    int
		wantErr bool
	}{
		{label: "Core 0", want: 50},
		{label: "Core 1", want: 51},
		{label: "edge", want: 43},
		{label: "Tctl", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ParseSensors(sensorsOut, tt.label)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNvidiaValue(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "temperature", input: "61\n", want: 61},
		{name: "utilization with unit", input: "37 %\n", want: 37},
		{name: "first of two gpus", input: "40\n55\n", want: 40},
		{name: "not supported", input: "[N/A]\n", wantErr: true},
		{name: "driver failure", input: "NVIDIA-SMI has failed because it couldn't communicate with the NVIDIA driver.", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNvidiaValue(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePercentFile(t *testing.T) {
	v, err := ParsePercentFile("12\n")
	require.NoError(t, err)
	assert.Equal(t, 12, v)

	_, err = ParsePercentFile("250")
	assert.Error(t, err)
	_, err = ParsePercentFile("busy")
	assert.Error(t, err)
}
