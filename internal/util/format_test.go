package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMemoryKB(t *testing.T) {
	tests := []struct {
		kb   uint64
		want string
	}{
		{0, "0 KB"},
		{512, "512 KB"},
		{1023, "1023 KB"},
		{1024, "1.0 MB"},
		{2048, "2.0 MB"},
		{1536, "1.5 MB"},
		{1024 * 1024, "1.0 GB"},
		{2097152, "2.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMemoryKB(tt.kb))
		})
	}
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "0 Kbps", FormatRate(0))
	assert.Equal(t, "250 Kbps", FormatRate(0.25))
	assert.Equal(t, "1.0 Mbps", FormatRate(1))
	assert.Equal(t, "12.3 Mbps", FormatRate(12.34))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.50 KiB", FormatBytes(1536))
	assert.Equal(t, "2.00 MiB", FormatBytes(2*1024*1024))
	assert.Equal(t, "15.50 GiB", FormatBytes(15.5*1024*1024*1024))
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		name string
		ms   int64
		want string
	}{
		{"zero", 0, "0 mins"},
		{"under a minute", 59_000, "0 mins"},
		{"minutes", 5 * 60_000, "5 mins"},
		{"hours only", 2 * 3_600_000, "2 hours"},
		{"all parts", (3*86400 + 4*3600 + 7*60) * 1000, "3 days, 4 hours, 7 mins"},
		{"days and mins", (86400 + 60) * 1000, "1 days, 1 mins"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUptime(tt.ms))
		})
	}
}

func TestTruncate(t *testing.T) {
	long := "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz"
	got := Truncate(long, 40)
	assert.Len(t, got, 40)
	assert.Equal(t, long[:37]+"...", got)
	assert.Equal(t, "short", Truncate("short", 40))
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "entry", Pluralize(1, "entry", "entries"))
	assert.Equal(t, "entries", Pluralize(0, "entry", "entries"))
}
