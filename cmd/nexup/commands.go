package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nexsoft/nexup/internal/config"
	"github.com/nexsoft/nexup/internal/detect"
	"github.com/nexsoft/nexup/internal/follow"
	"github.com/nexsoft/nexup/internal/job"
	"github.com/nexsoft/nexup/internal/logbuf"
	"github.com/nexsoft/nexup/internal/logging"
	"github.com/nexsoft/nexup/internal/tui"
)

// defaultScriptName is looked up next to the nexup binary when no script
// path is given.
const defaultScriptName = "nexsoft_update_qc.sh"

// Command flags
var (
	scriptPath string
	configPath string
	followAddr string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&scriptPath, "script", "",
		"Path to the updater script (default: $NEXUP_SCRIPT, then "+defaultScriptName+" next to the binary)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"YAML file with field and flag overrides (default: $NEXUP_CONFIG)")
	rootCmd.Flags().StringVar(&followAddr, "follow-addr", "",
		"Listen address for the live log follower, e.g. :8790 (disabled when empty)")

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(printArgsCmd)
	rootCmd.AddCommand(followCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	if err := logging.InitializeFromEnv(); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer logging.Sync()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal; nexup needs an interactive terminal to run")
	}

	script, err := resolveScriptPath()
	if err != nil {
		return err
	}

	ov, err := loadOverrides()
	if err != nil {
		return err
	}

	store := config.NewStore(ov, detectDefaults(script))
	buf := logbuf.New(logbuf.DefaultCapacity)
	runner := &job.Runner{ScriptPath: script, Log: buf}

	if followAddr != "" {
		srv := follow.NewServer(buf, followInstanceName())
		if err := srv.Start(followAddr); err != nil {
			return fmt.Errorf("starting log follower: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
		buf.Appendf("Log follower listening on %s", srv.Addr())
	}

	p := tea.NewProgram(tui.NewModel(store, runner, buf), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("ui error: %w", err)
	}
	return nil
}

// detectCmd shows what nexup would auto-detect on this machine
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Show auto-detected configuration values",
	Long: `Probe the machine and the updater script for default values.

The serial number is read from the product ID file, DMI, /proc/cpuinfo,
or the SERIAL_NUMBER environment variable, in that order. The download
URL is extracted from the updater script itself.`,
	RunE: runDetect,
}

func runDetect(cmd *cobra.Command, args []string) error {
	script, err := resolveScriptPath()
	if err != nil {
		return err
	}

	if serial, ok := detect.SerialNumber(); ok {
		fmt.Printf("Serial number: %s\n", serial)
	} else {
		fmt.Println("Serial number: (not detected)")
	}

	if url, ok := detect.DownloadURL(script); ok {
		fmt.Printf("Download URL:  %s\n", url)
	} else {
		fmt.Printf("Download URL:  (not found in %s)\n", script)
	}

	return nil
}

// printArgsCmd shows the exact invocation without running anything
var printArgsCmd = &cobra.Command{
	Use:   "print-args",
	Short: "Print the updater invocation without running it",
	Long: `Resolve the configuration exactly as the interactive screen would,
then print the script path, the command line switches, and the
environment assignments that a started job would receive.`,
	RunE: runPrintArgs,
}

func runPrintArgs(cmd *cobra.Command, args []string) error {
	script, err := resolveScriptPath()
	if err != nil {
		return err
	}

	ov, err := loadOverrides()
	if err != nil {
		return err
	}
	store := config.NewStore(ov, detectDefaults(script))

	scriptArgs := job.BuildArgs(store.FlagValues())
	fmt.Printf("Command: %s %s\n\n", script, strings.Join(scriptArgs, " "))

	fmt.Println("Environment:")
	fields := store.FieldValues()
	for _, f := range config.Fields {
		fmt.Printf("  %s=%s\n", f.Key, fields[f.Key])
	}
	flags := store.FlagValues()
	for _, f := range config.Flags {
		v := "0"
		if flags[f.Key] {
			v = "1"
		}
		fmt.Printf("  %s=%s\n", f.Key, v)
	}

	return nil
}

// followCmd tails a running nexup on another machine
var followCmd = &cobra.Command{
	Use:   "follow [host:port]",
	Short: "Follow the log of a running nexup on the network",
	Long: `Connect to a running nexup instance, replay its retained log, and
stream new lines to stdout as they arrive.

With no argument the local network is browsed over mDNS; a single
discovered instance is followed automatically.`,
	Example: `  # Discover a running instance and follow it
  nexup follow

  # Follow a known address directly
  nexup follow 192.168.7.40:8790`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFollow,
}

var followScanTimeout int

func init() {
	followCmd.Flags().IntVar(&followScanTimeout, "timeout", 5, "Discovery timeout in seconds")
}

func runFollow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	addr := ""
	path := ""
	if len(args) == 1 {
		addr = args[0]
	} else {
		fmt.Fprintf(os.Stderr, "Browsing for running nexup instances (timeout: %ds)...\n", followScanTimeout)
		endpoints, err := follow.Discover(ctx, time.Duration(followScanTimeout)*time.Second)
		if err != nil {
			return err
		}
		switch len(endpoints) {
		case 0:
			return fmt.Errorf("no running instance found; pass host:port directly")
		case 1:
			addr = endpoints[0].Addr()
			path = endpoints[0].Path
			fmt.Fprintf(os.Stderr, "Following %s at %s\n", endpoints[0].Instance, addr)
		default:
			fmt.Fprintf(os.Stderr, "Found %d instances:\n", len(endpoints))
			for _, ep := range endpoints {
				fmt.Fprintf(os.Stderr, "  %s  %s\n", ep.Addr(), ep.Instance)
			}
			return fmt.Errorf("multiple instances found; pass host:port to pick one")
		}
	}

	return follow.Follow(ctx, addr, path, func(line string) {
		fmt.Println(line)
	})
}

// resolveScriptPath picks the updater script: flag, then NEXUP_SCRIPT, then
// the default name next to the running binary. The path is not required to
// exist; a missing script is reported when the job starts.
func resolveScriptPath() (string, error) {
	if scriptPath != "" {
		return scriptPath, nil
	}
	if env := os.Getenv("NEXUP_SCRIPT"); env != "" {
		return env, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), defaultScriptName), nil
}

// loadOverrides reads the optional YAML overrides file.
func loadOverrides() (*config.Overrides, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("NEXUP_CONFIG")
	}
	if path == "" {
		return &config.Overrides{}, nil
	}

	ov, err := config.LoadOverrides(path)
	if err != nil {
		return nil, fmt.Errorf("loading overrides from %s: %w", path, err)
	}
	return ov, nil
}

// detectDefaults probes the machine for seed values used when neither an
// override nor an environment variable supplies one.
func detectDefaults(script string) map[string]string {
	detected := make(map[string]string)

	serial, ok := detect.SerialNumber()
	logging.LogDetection("probe", config.KeySerialNumber, ok)
	if ok {
		detected[config.KeySerialNumber] = serial
	}

	url, ok := detect.DownloadURL(script)
	logging.LogDetection("script", config.KeyDownloadURL, ok)
	if ok {
		detected[config.KeyDownloadURL] = url
	}

	return detected
}

func followInstanceName() string {
	host, err := os.Hostname()
	if err != nil {
		return "nexup"
	}
	return "nexup-" + host
}
