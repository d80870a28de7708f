package shared

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"
	"testing"
)

func TestParsePlaylistURL(t *testing.T) {
	tc := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "playlist url", url: "https://www.youtube.com/playlist?list=PLabc-123_x", want: "PLabc-123_x"},
		{name: "surrounding whitespace", url: "  https://www.youtube.com/playlist?list=PL1 ", want: "PL1"},
		{name: "watch url", url: "https://www.youtube.com/watch?v=xyz", wantErr: true},
		{name: "http scheme", url: "http://www.youtube.com/playlist?list=PL1", wantErr: true},
		{name: "extra params", url: "https://www.youtube.com/playlist?list=PL1&index=2", wantErr: true},
		{name: "empty", url: "", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePlaylistURL(tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("ParsePlaylistURL() error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePlaylistURL() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParsePlaylistURL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractVideoID(t *testing.T) {
	tc := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "bare id", input: "dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "watch url", input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10", want: "dQw4w9WgXcQ"},
		{name: "short url", input: "https://youtu.be/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "embed url", input: "youtube.com/embed/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "v url", input: "http://www.youtube.com/v/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{name: "garbage", input: "not a video", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractVideoID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractVideoID() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeHandle(t *testing.T) {
	if got := NormalizeHandle(" @Hasheur "); got != "Hasheur" {
		t.Errorf("NormalizeHandle() = %q, want Hasheur", got)
	}
	if got := VideoURL("abc"); got != "https://www.youtube.com/watch?v=abc" {
		t.Errorf("VideoURL() = %q", got)
	}
}

func TestLogger(t *testing.T) {
	t.Run("SetLogLevel", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		if err := SetLogLevel(logger, "warn"); err != nil {
			t.Fatalf("SetLogLevel() error = %v", err)
		}
		logger.Info("hidden")
		logger.Warn("shown")

		if strings.Contains(buf.String(), "hidden") {
			t.Error("info message should be filtered at warn level")
		}
		if !strings.Contains(buf.String(), "shown") {
			t.Error("warn message should be logged")
		}
	})

	t.Run("SetLogLevel invalid", func(t *testing.T) {
		if err := SetLogLevel(NewLogger(nil), "loud"); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("GenerateID", func(t *testing.T) {
		if a, b := GenerateID(), GenerateID(); a == b || len(a) != 36 {
			t.Errorf("expected distinct uuids, got %q and %q", a, b)
		}
	})
}

func TestOpenBrowser(t *testing.T) {
	origRuntime, origStart := getRuntime, startCmd
	t.Cleanup(func() { getRuntime, startCmd = origRuntime, origStart })

	var started []string
	startCmd = func(cmd *exec.Cmd) error {
		started = cmd.Args
		return nil
	}

	getRuntime = func() string { return "linux" }
	if err := OpenBrowser("https://example.com"); err != nil {
		t.Fatalf("OpenBrowser() error = %v", err)
	}
	if len(started) != 2 || started[0] != "xdg-open" || started[1] != "https://example.com" {
		t.Errorf("unexpected command %v", started)
	}

	getRuntime = func() string { return "plan9" }
	if err := OpenBrowser("https://example.com"); err == nil {
		t.Error("expected error for unsupported platform")
	}
}
