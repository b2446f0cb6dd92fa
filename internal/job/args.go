package job

import (
	"os"

	"github.com/nexsoft/nexup/internal/config"
)

// argSpec maps one flag to its positional argument encoding. Paired flags
// always emit one of two tokens; presence-only flags emit their token or
// nothing. The table order fixes the argument order regardless of how the
// operator toggled things.
type argSpec struct {
	flag       string
	trueToken  string
	falseToken string // empty for presence-only flags
}

var argTable = []argSpec{
	{flag: config.FlagRS232Test, trueToken: "--enable-rs232-test", falseToken: "--disable-rs232-test"},
	{flag: config.FlagNoUpdate, trueToken: "--no-update"},
	{flag: config.FlagNoTimeshift, trueToken: "--no-timeshift"},
	{flag: config.FlagClearLogs, trueToken: "--clear-logs"},
	{flag: config.FlagNoBackup, trueToken: "--no-nexSoft-bkp"},
	{flag: config.FlagRemoveStaticIP, trueToken: "--remove-static-ip-service", falseToken: "--keep-static-ip-service"},
	{flag: config.FlagEnableSecondaryIP, trueToken: "--enable-secondary-ip-service", falseToken: "--disable-secondary-ip-service"},
	{flag: config.FlagOverwriteIDs, trueToken: "--overwrite-ids"},
	{flag: config.FlagNonInteractive, trueToken: "--non-interactive"},
}

// BuildArgs returns the updater script's positional argument vector for the
// given flag values, in the fixed table order. ENABLE_RS232_MODEM has no
// argument encoding; the script reads it from the environment only.
func BuildArgs(flags map[string]bool) []string {
	args := make([]string, 0, len(argTable))
	for _, spec := range argTable {
		if flags[spec.flag] {
			args = append(args, spec.trueToken)
		} else if spec.falseToken != "" {
			args = append(args, spec.falseToken)
		}
	}
	return args
}

// BuildEnv returns the child environment: the parent environment plus every
// field key set verbatim to its value and every flag stringified to "1"/"0"
// under its own key. Entries are appended in the fixed table order so the
// result is reproducible.
func BuildEnv(fields map[string]string, flags map[string]bool) []string {
	env := os.Environ()
	for _, f := range config.Fields {
		env = append(env, f.Key+"="+fields[f.Key])
	}
	for _, fl := range config.Flags {
		v := "0"
		if flags[fl.Key] {
			v = "1"
		}
		env = append(env, fl.Key+"="+v)
	}
	return env
}
