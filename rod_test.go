package slidedeck

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher/flags"
)

func TestLauncherFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		env     map[string]string
		wantBin string
	}{
		{"preinstalled browser", map[string]string{"ROD_BROWSER_BIN": "/usr/bin/chromium"}, "/usr/bin/chromium"},
		{"ci", map[string]string{"CI": "true"}, ""},
		{"explicit", map[string]string{"ROD_NO_SANDBOX": "1"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := launcherFor(func(k string) string { return tt.env[k] })
			if !l.Has(flags.NoSandbox) {
				t.Error("sandbox not disabled")
			}
			if tt.wantBin != "" && l.Get(flags.Bin) != tt.wantBin {
				t.Errorf("bin = %q, want %q", l.Get(flags.Bin), tt.wantBin)
			}
		})
	}
}

func TestWithPageTimeout_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	WithPageTimeout(0)
}

func TestBrowserStage_NotLoaded(t *testing.T) {
	t.Parallel()

	s := NewBrowserStage(WithPageTimeout(time.Second), WithStageRaster(testRaster))
	defer s.Close()

	ctx := context.Background()
	if err := s.Show(ctx, 0); !errors.Is(err, ErrPageLoad) {
		t.Errorf("Show() before Load error = %v, want ErrPageLoad", err)
	}
	if _, err := s.Rasterize(ctx, 0, testRaster, ImagePNG); !errors.Is(err, ErrPageLoad) {
		t.Errorf("Rasterize() before Load error = %v, want ErrPageLoad", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on unused stage error = %v", err)
	}
}
