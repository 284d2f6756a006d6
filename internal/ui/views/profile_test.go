package views

import (
	"strings"
	"testing"

	"github.com/smmsclient/smms/internal/domain"
)

func TestProfileView_Empty(t *testing.T) {
	view := NewProfileView()

	if !strings.Contains(view.View(), "No profile loaded") {
		t.Error("expected empty state")
	}
}

func TestProfileView_Fields(t *testing.T) {
	view := NewProfileView()
	view.SetSize(100, 30)
	view.SetProfile(&domain.Profile{
		Username:      "alice",
		Email:         "alice@example.com",
		Role:          "user",
		GroupExpire:   "0000-00-00",
		EmailVerified: true,
		DiskUsageRaw:  5 * 1000 * 1000,
		DiskLimitRaw:  10 * 1000 * 1000,
	})

	out := view.View()
	for _, want := range []string{"alice", "alice@example.com", "yes", "5.0 MB / 10 MB", "50.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected profile view to contain %q", want)
		}
	}
}

func TestProfileView_FallsBackToServerStrings(t *testing.T) {
	view := NewProfileView()
	view.SetProfile(&domain.Profile{DiskUsage: "1.2 MB", DiskLimit: "5.0 GB"})

	if !strings.Contains(view.View(), "1.2 MB / 5.0 GB") {
		t.Error("expected formatted usage strings from the server")
	}
}
