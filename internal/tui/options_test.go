package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leonardotrapani/hyprlingo/internal/config"
	"github.com/leonardotrapani/hyprlingo/internal/language"
)

func TestLanguageOptions_CoverSupportedLanguages(t *testing.T) {
	options := languageOptions()

	if len(options) != len(language.List()) {
		t.Fatalf("expected %d options, got %d", len(language.List()), len(options))
	}
	for _, opt := range options {
		if !language.IsSupported(opt.Value) {
			t.Errorf("option %q carries unsupported code %q", opt.Key, opt.Value)
		}
	}

	// native names are shown next to the english one
	for _, opt := range options {
		if opt.Value == "fr" && !strings.Contains(opt.Key, "Français") {
			t.Errorf("french option should show native name, got %q", opt.Key)
		}
		if opt.Value == "en" && strings.Contains(opt.Key, " - ") {
			t.Errorf("english option should not repeat its name, got %q", opt.Key)
		}
	}
}

func TestModeOptions_MatchConfigModes(t *testing.T) {
	options := modeOptions()
	if len(options) != len(config.Modes) {
		t.Fatalf("expected %d modes, got %d", len(config.Modes), len(options))
	}
	for i, opt := range options {
		if opt.Value != config.Modes[i] {
			t.Errorf("option %d: got %q, want %q", i, opt.Value, config.Modes[i])
		}
	}
}

func TestValidators(t *testing.T) {
	dir := t.TempDir()
	wav := filepath.Join(dir, "speech.wav")
	if err := os.WriteFile(wav, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		validate func(string) error
		input    string
		wantErr  bool
	}{
		{"ws url", validateServerURL, "ws://localhost:8765", false},
		{"https url", validateServerURL, "https://asr.example.com", false},
		{"empty url", validateServerURL, "  ", true},
		{"ftp url", validateServerURL, "ftp://example.com", true},
		{"no header", validateHeader, "", false},
		{"header", validateHeader, "Authorization: Bearer abc", false},
		{"bad header", validateHeader, "no colon here", true},
		{"wav file", validateWAVPath, wav, false},
		{"missing wav", validateWAVPath, filepath.Join(dir, "missing.wav"), true},
		{"not a wav", validateWAVPath, filepath.Join(dir, "speech.mp3"), true},
		{"empty wav", validateWAVPath, "", true},
		{"gain", validateGain, "5", false},
		{"zero gain", validateGain, "0", true},
		{"text gain", validateGain, "loud", true},
		{"addr", validateAddr, "127.0.0.1:9464", false},
		{"addr without port", validateAddr, "localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("input %q: error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestSummaryLines(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Header = "Authorization: Bearer secret"
	cfg.Session.Mode = "fixed"
	cfg.Session.Language = "de"
	cfg.Metrics.Enabled = true

	out := strings.Join(summaryLines(cfg), "\n")

	if strings.Contains(out, "secret") {
		t.Error("summary should not show the header value")
	}
	for _, want := range []string{"Authorization: ***", "fixed, German (de)", config.DefaultMetricsAddr, "pipewire"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestModeLabel(t *testing.T) {
	cfg := config.DefaultConfig()
	if got := modeLabel(cfg); got != "auto" {
		t.Errorf("default mode label = %q", got)
	}
	cfg.Session.Mode = "fixed"
	if got := modeLabel(cfg); got != "fixed, no language" {
		t.Errorf("fixed without language = %q", got)
	}
	cfg.Session.Mode = "multilang"
	if got := oneLineSummary(cfg); !strings.Contains(got, "multilang") {
		t.Errorf("summary = %q", got)
	}
}
