package common

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewIDFormat(t *testing.T) {
	id := NewID()

	matched, err := regexp.MatchString(`^\d{13}-[0-9a-f]{9}$`, id)
	assert.NoError(t, err)
	assert.True(t, matched, "unexpected id format: %s", id)
}

func TestNewIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		assert.False(t, seen[id], "duplicate id: %s", id)
		seen[id] = true
	}
}

func TestNowTruncatesToSeconds(t *testing.T) {
	now := Now()
	assert.Zero(t, now.Nanosecond())
	assert.WithinDuration(t, time.Now(), now, 2*time.Second)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "empty path", path: "", want: ""},
		{name: "plain path", path: "/var/lib/kakeibo.db", want: "/var/lib/kakeibo.db"},
		{name: "tilde prefix", path: "~/data/kakeibo.db", want: filepath.Join(home, "data/kakeibo.db")},
		{name: "bare tilde", path: "~", want: home},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.path))
		})
	}
}

func TestExpandPathEnvVar(t *testing.T) {
	t.Setenv("KAKEIBO_TEST_DIR", "/tmp/ledger")
	assert.Equal(t, "/tmp/ledger/data.json", ExpandPath("$KAKEIBO_TEST_DIR/data.json"))
}
