//go:build ignore

// Check-script inspects an updater script before it is deployed to a bench.
//
// It reports the download URL the interactive screen would auto-detect and
// lists which of the recognized environment variables and switches the
// script actually references, so a new script revision can be checked
// against the front-end without running it.
//
// Usage: go run tools/check-script.go <script>
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/nexsoft/nexup/internal/config"
	"github.com/nexsoft/nexup/internal/detect"
	"github.com/nexsoft/nexup/internal/job"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: check-script <script>")
		fmt.Println("Example: check-script /opt/nexSoft/nexsoft_update_qc.sh")
		os.Exit(1)
	}

	path := os.Args[1]
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading script: %v\n", err)
		os.Exit(1)
	}
	body := string(data)

	fmt.Printf("=== Updater Script Check ===\n")
	fmt.Printf("Script: %s\n\n", path)

	if url, ok := detect.DownloadURL(path); ok {
		fmt.Printf("Detected download URL: %s\n\n", url)
	} else {
		fmt.Printf("Detected download URL: (none)\n\n")
	}

	fmt.Println("Environment variables:")
	for _, f := range config.Fields {
		mark := " "
		if strings.Contains(body, f.Key) {
			mark = "x"
		}
		fmt.Printf("  [%s] %s\n", mark, f.Key)
	}
	for _, f := range config.Flags {
		mark := " "
		if strings.Contains(body, f.Key) {
			mark = "x"
		}
		fmt.Printf("  [%s] %s\n", mark, f.Key)
	}

	fmt.Println("\nSwitches:")
	allOn := make(map[string]bool)
	allOff := make(map[string]bool)
	for _, f := range config.Flags {
		allOn[f.Key] = true
		allOff[f.Key] = false
	}
	seen := make(map[string]bool)
	for _, arg := range append(job.BuildArgs(allOn), job.BuildArgs(allOff)...) {
		if seen[arg] {
			continue
		}
		seen[arg] = true
		mark := " "
		if strings.Contains(body, arg) {
			mark = "x"
		}
		fmt.Printf("  [%s] %s\n", mark, arg)
	}

	fmt.Println("\nAn unchecked entry means the script never references it;")
	fmt.Println("either the script predates the option or the name drifted.")
}
