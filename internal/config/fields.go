package config

// Field keys understood by the updater script. These become environment
// variable names verbatim when a job is launched.
const (
	KeyDownloadURL          = "DOWNLOAD_URL"
	KeyDownloadUA           = "DOWNLOAD_UA"
	KeyDownloadReferer      = "DOWNLOAD_REFERER"
	KeyServiceName          = "SERVICE_NAME"
	KeyTargetDir            = "TARGET_DIR"
	KeyTimeshiftScript      = "TIMESHIFT_SCRIPT"
	KeyStateDir             = "STATE_DIR"
	KeyServiceStartTimeout  = "SERVICE_START_TIMEOUT"
	KeyServicePostStartWait = "SERVICE_POST_START_WAIT"
	KeyServiceLogLookback   = "SERVICE_LOG_LOOKBACK"
	KeyWebminHTTPTimeout    = "WEBMIN_HTTP_TIMEOUT"
	KeyCertDir              = "NEXSOFT_CERT_DIR"
	KeyCertGroup            = "CERT_GROUP"
	KeySerialDev            = "SERIAL_DEV"
	KeySerialBaud           = "SERIAL_BAUD"
	KeySerialTimeoutSec     = "SERIAL_TIMEOUT_SEC"
	KeyLoopbackBytes        = "LOOPBACK_BYTES"
	KeySerialNumber         = "SERIAL_NUMBER"
)

// Flag keys. Each flag is exported to the job environment as "1"/"0" and,
// for most, also encoded as a positional argument (see internal/job).
const (
	FlagRS232Test          = "ENABLE_RS232_TEST"
	FlagRS232Modem         = "ENABLE_RS232_MODEM"
	FlagNoUpdate           = "NO_UPDATE"
	FlagNoTimeshift        = "NO_TIMESHIFT"
	FlagClearLogs          = "CLEAR_LOGS"
	FlagNoBackup           = "NO_NEXSOFT_BKP"
	FlagRemoveStaticIP     = "REMOVE_STATIC_IP_SERVICE"
	FlagEnableSecondaryIP  = "ENABLE_SECONDARY_IP_SERVICE"
	FlagOverwriteIDs       = "OVERWRITE_IDS"
	FlagNonInteractive     = "NON_INTERACTIVE"
)

// FieldSpec describes one configuration field.
type FieldSpec struct {
	Key     string
	Label   string // Human-readable label shown in the UI
	Default string // Hardcoded fallback when no override/env/detection applies
	Hidden  bool   // Exported to the job environment but not listed in the UI
}

// FlagSpec describes one boolean option.
type FlagSpec struct {
	Key     string
	Label   string
	Default bool
}

// Fields is the fixed, ordered field table. Visible fields appear in the UI
// in this order; hidden fields are environment-only tuning knobs.
var Fields = []FieldSpec{
	{Key: KeyDownloadURL, Label: "Download URL"},
	{Key: KeyDownloadReferer, Label: "HTTP Referer (optional)"},
	{Key: KeyServiceName, Label: "Service name", Default: "nexSoft"},
	{Key: KeyTargetDir, Label: "Target dir", Default: "/opt/nexSoft"},
	{Key: KeySerialDev, Label: "Serial device", Default: "/dev/ttyUSB0"},
	{Key: KeySerialBaud, Label: "Serial baud", Default: "115200"},
	{Key: KeySerialNumber, Label: "Product Serial Number"},
	{Key: KeyTimeshiftScript, Label: "Timeshift script path", Default: "/opt/scripts/TimeShift_FactorySettings.sh"},
	{Key: KeyServiceStartTimeout, Label: "Service start timeout (s)", Default: "20"},
	{Key: KeyServicePostStartWait, Label: "Post-start log delay (s)", Default: "5"},
	{Key: KeyServiceLogLookback, Label: "Log lookback (s w/o restart)", Default: "300"},
	{Key: KeyWebminHTTPTimeout, Label: "Webmin HTTP timeout (s)", Default: "5"},
	{Key: KeyDownloadUA, Label: "Download user agent", Default: "Mozilla/5.0", Hidden: true},
	{Key: KeyStateDir, Label: "State dir", Default: "/var/lib/nex", Hidden: true},
	{Key: KeyCertDir, Label: "Certificate dir", Default: "/opt/nexSoft/cert", Hidden: true},
	{Key: KeyCertGroup, Label: "Certificate group", Default: "nexroot", Hidden: true},
	{Key: KeySerialTimeoutSec, Label: "Serial timeout (s)", Default: "5", Hidden: true},
	{Key: KeyLoopbackBytes, Label: "Loopback bytes", Default: "64", Hidden: true},
}

// Flags is the fixed, ordered flag table as shown in the UI.
var Flags = []FlagSpec{
	{Key: FlagRS232Test, Label: "RS232 loopback test", Default: true},
	{Key: FlagRS232Modem, Label: "RS232 modem-lines test"},
	{Key: FlagNoUpdate, Label: "Skip update (QC only)"},
	{Key: FlagNoTimeshift, Label: "Disable Timeshift snapshot"},
	{Key: FlagClearLogs, Label: "Clear journald before restart"},
	{Key: FlagNoBackup, Label: "Skip /opt/nexSoft backup"},
	{Key: FlagRemoveStaticIP, Label: "Remove add-static-ip.service", Default: true},
	{Key: FlagEnableSecondaryIP, Label: "Enable secondary-ip.service", Default: true},
	{Key: FlagOverwriteIDs, Label: "Overwrite existing IDs"},
	{Key: FlagNonInteractive, Label: "Non-interactive prompts"},
}

// VisibleFields returns the ordered subset of Fields shown in the UI list.
func VisibleFields() []FieldSpec {
	visible := make([]FieldSpec, 0, len(Fields))
	for _, f := range Fields {
		if !f.Hidden {
			visible = append(visible, f)
		}
	}
	return visible
}

// FieldLabel returns the label for a field key.
// Unknown keys are a programming error.
func FieldLabel(key string) string {
	for _, f := range Fields {
		if f.Key == key {
			return f.Label
		}
	}
	panic("config: unknown field key: " + key)
}
