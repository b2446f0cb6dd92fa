package detect

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSerialFromProductID(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantOK  bool
	}{
		{
			name:    "plain value",
			content: "SERIAL_NUMBER=NX-004512\n",
			want:    "NX-004512",
			wantOK:  true,
		},
		{
			name:    "quoted value with comments",
			content: "# product identity\n\nPRODUCT=nexbox\nSERIAL_NUMBER=\"NX-7\"\n",
			want:    "NX-7",
			wantOK:  true,
		},
		{
			name:    "empty value",
			content: "SERIAL_NUMBER=\n",
			wantOK:  false,
		},
		{
			name:    "key absent",
			content: "PRODUCT=nexbox\n",
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFixture(t, tt.content)
			got, ok := serialFromProductID(path)
			if ok != tt.wantOK {
				t.Fatalf("serialFromProductID() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("serialFromProductID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSerialFromProductIDMissingFile(t *testing.T) {
	if _, ok := serialFromProductID(filepath.Join(t.TempDir(), "absent")); ok {
		t.Error("missing product file should not detect a serial")
	}
}

func TestSerialFromDMI(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantOK  bool
	}{
		{name: "valid serial", content: "ABC123456\n", want: "ABC123456", wantOK: true},
		{name: "firmware unknown", content: "Unknown\n", wantOK: false},
		{name: "empty", content: "\n", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFixture(t, tt.content)
			got, ok := serialFromDMI(path)
			if ok != tt.wantOK {
				t.Fatalf("serialFromDMI() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("serialFromDMI() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSerialFromCPUInfo(t *testing.T) {
	content := `processor       : 0
model name      : ARMv7 Processor rev 4 (v7l)
Hardware        : BCM2835
Serial          : 0000000012345678
Model           : Raspberry Pi 3 Model B
`
	path := writeFixture(t, content)

	got, ok := serialFromCPUInfo(path)
	if !ok {
		t.Fatal("serialFromCPUInfo() should find Serial line")
	}
	if got != "0000000012345678" {
		t.Errorf("serialFromCPUInfo() = %q, want 0000000012345678", got)
	}
}

func TestSerialNumberPriorityOrder(t *testing.T) {
	tmpDir := t.TempDir()

	origProduct, origDMI, origCPU := productIDPath, dmiSerialPath, cpuinfoPath
	defer func() {
		productIDPath, dmiSerialPath, cpuinfoPath = origProduct, origDMI, origCPU
	}()

	productIDPath = filepath.Join(tmpDir, "product_id")
	dmiSerialPath = filepath.Join(tmpDir, "product_serial")
	cpuinfoPath = filepath.Join(tmpDir, "cpuinfo")

	mustWrite(t, dmiSerialPath, "DMI-SERIAL\n")
	mustWrite(t, productIDPath, "SERIAL_NUMBER=PRODUCT-SERIAL\n")

	// Product file outranks DMI
	got, ok := SerialNumber()
	if !ok || got != "PRODUCT-SERIAL" {
		t.Errorf("SerialNumber() = %q, %v; want PRODUCT-SERIAL, true", got, ok)
	}

	// Remove product file - DMI becomes first hit
	if err := os.Remove(productIDPath); err != nil {
		t.Fatalf("failed to remove fixture: %v", err)
	}
	got, ok = SerialNumber()
	if !ok || got != "DMI-SERIAL" {
		t.Errorf("SerialNumber() = %q, %v; want DMI-SERIAL, true", got, ok)
	}
}

func TestSerialNumberEnvFallback(t *testing.T) {
	tmpDir := t.TempDir()

	origProduct, origDMI, origCPU := productIDPath, dmiSerialPath, cpuinfoPath
	defer func() {
		productIDPath, dmiSerialPath, cpuinfoPath = origProduct, origDMI, origCPU
	}()

	// Point every file probe at nothing so only the env fallback can hit
	productIDPath = filepath.Join(tmpDir, "nope1")
	dmiSerialPath = filepath.Join(tmpDir, "nope2")
	cpuinfoPath = filepath.Join(tmpDir, "nope3")

	t.Setenv("SERIAL_NUMBER", "ENV-SERIAL")

	got, ok := SerialNumber()
	if !ok || got != "ENV-SERIAL" {
		t.Errorf("SerialNumber() = %q, %v; want ENV-SERIAL, true", got, ok)
	}

	t.Setenv("SERIAL_NUMBER", "")
	if _, ok := SerialNumber(); ok {
		t.Error("SerialNumber() with no sources should report ok=false")
	}
}

func TestDownloadURL(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantOK  bool
	}{
		{
			name:    "explicit default assignment",
			content: "#!/bin/bash\nDEFAULT_DOWNLOAD_URL='https://updates.example.com/nexsoft.tar.gz'\nDOWNLOAD_URL='https://other.example.com/x'\n",
			want:    "https://updates.example.com/nexsoft.tar.gz",
			wantOK:  true,
		},
		{
			name:    "download url assignment",
			content: "DOWNLOAD_URL=\"http://mirror.example.com/pkg.tar.gz\"\n",
			want:    "http://mirror.example.com/pkg.tar.gz",
			wantOK:  true,
		},
		{
			name:    "bare url in comment",
			content: "# docs: see https://wiki.example.com/qc)\necho hi\n",
			want:    "https://wiki.example.com/qc",
			wantOK:  true,
		},
		{
			name:    "non-http assignment ignored",
			content: "DOWNLOAD_URL='ftp://example.com/pkg'\necho no urls here\n",
			wantOK:  false,
		},
		{
			name:    "no url at all",
			content: "#!/bin/bash\necho updating\n",
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFixture(t, tt.content)
			got, ok := DownloadURL(path)
			if ok != tt.wantOK {
				t.Fatalf("DownloadURL() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("DownloadURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDownloadURLMissingScript(t *testing.T) {
	if _, ok := DownloadURL(filepath.Join(t.TempDir(), "absent.sh")); ok {
		t.Error("missing script should not detect a URL")
	}
}

// Helper functions

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture")
	mustWrite(t, path, content)
	return path
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
