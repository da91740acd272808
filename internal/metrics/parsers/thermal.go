package parsers

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ParseThermalZone converts a sysfs thermal zone reading in millidegrees
// to whole degrees Celsius.
func ParseThermalZone(output string) (int, error) {
	milli, err := strconv.ParseInt(strings.TrimSpace(output), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse thermal zone reading %q: %w", strings.TrimSpace(output), err)
	}
	return int(math.Round(float64(milli) / 1000)), nil
}

// ParseSensors finds the first "<label>:  +NN.N°C" reading in lm-sensors
// output and rounds it to whole degrees. Typical labels are "Core 0" for
// Intel CPUs and "edge" for AMD GPUs.
func ParseSensors(output, label string) (int, error) {
	re, err := regexp.Compile(regexp.QuoteMeta(label) + `:\s+\+(\d+\.\d+)`)
	if err != nil {
		return 0, err
	}
	m := re.FindStringSubmatch(output)
	if m == nil {
		return 0, fmt.Errorf("no %q reading in sensors output", label)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse sensors reading %q: %w", m[1], err)
	}
	return int(math.Round(v)), nil
}

// ParseNvidiaValue reads the first GPU's value from a single-field
// nvidia-smi csv query, such as temperature.gpu or utilization.gpu.
// Units ("%", "C") are tolerated. Unsupported fields ("[N/A]") and driver
// error text are reported as errors.
func ParseNvidiaValue(output string) (int, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return 0, fmt.Errorf("empty nvidia-smi output")
	}

	first := strings.TrimSpace(strings.SplitN(output, "\n", 2)[0])
	if first == "[N/A]" || first == "N/A" {
		return 0, fmt.Errorf("nvidia-smi reports the value as not available")
	}

	first = strings.TrimSpace(strings.TrimRight(first, "%C "))
	v, err := strconv.Atoi(first)
	if err != nil {
		return 0, fmt.Errorf("unexpected nvidia-smi output %q", first)
	}
	return v, nil
}

// ParsePercentFile reads a bare integer percentage such as
// /sys/class/drm/card0/device/gpu_busy_percent.
func ParsePercentFile(output string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(output))
	if err != nil {
		return 0, fmt.Errorf("failed to parse percentage %q: %w", strings.TrimSpace(output), err)
	}
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("percentage %d out of range", v)
	}
	return v, nil
}
