package detect

import (
	"bufio"
	"os"
	"strings"

	"github.com/nexsoft/nexup/internal/logging"
)

// Probe locations for the product serial number, in priority order.
// These are variables so tests can point them at fixtures.
var (
	productIDPath = "/etc/dietpi/.product_id"
	dmiSerialPath = "/sys/class/dmi/id/product_serial"
	cpuinfoPath   = "/proc/cpuinfo"
)

// SerialNumber attempts to detect the product serial number of this machine.
// Sources are tried in a fixed priority order: the DietPi product file, the
// DMI product serial, /proc/cpuinfo (Raspberry Pi style), then the
// SERIAL_NUMBER environment variable. The first non-empty hit wins.
// A failed probe is never an error, only "no default available".
func SerialNumber() (string, bool) {
	if v, ok := serialFromProductID(productIDPath); ok {
		logging.LogDetection("product_id", "SERIAL_NUMBER", true)
		return v, true
	}
	if v, ok := serialFromDMI(dmiSerialPath); ok {
		logging.LogDetection("dmi", "SERIAL_NUMBER", true)
		return v, true
	}
	if v, ok := serialFromCPUInfo(cpuinfoPath); ok {
		logging.LogDetection("cpuinfo", "SERIAL_NUMBER", true)
		return v, true
	}
	if v := strings.TrimSpace(os.Getenv("SERIAL_NUMBER")); v != "" {
		logging.LogDetection("env", "SERIAL_NUMBER", true)
		return v, true
	}
	logging.LogDetection("all", "SERIAL_NUMBER", false)
	return "", false
}

// serialFromProductID reads a DietPi-style KEY=VALUE product file and
// returns the SERIAL_NUMBER entry.
func serialFromProductID(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if val, ok := strings.CutPrefix(line, "SERIAL_NUMBER="); ok {
			val = strings.Trim(strings.TrimSpace(val), `"'`)
			if val != "" {
				return val, true
			}
		}
	}
	return "", false
}

// serialFromDMI reads the DMI product serial exposed by the kernel on
// x86/ARM server hardware. Firmware often reports literal "Unknown".
func serialFromDMI(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	val := strings.TrimSpace(string(data))
	if val == "" || strings.EqualFold(val, "unknown") {
		return "", false
	}
	return val, true
}

// serialFromCPUInfo scans /proc/cpuinfo for a "Serial : xxxx" line
// (Raspberry Pi and similar SBCs).
func serialFromCPUInfo(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(strings.ToLower(line), "serial") {
			continue
		}
		_, after, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if val := strings.TrimSpace(after); val != "" {
			return val, true
		}
	}
	return "", false
}
