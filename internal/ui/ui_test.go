package ui

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/loosehose/sunvoy/internal/types"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	prev := SetOutput(buf)
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		SetOutput(prev)
		color.NoColor = noColor
	})
	return buf
}

func TestStatusPrefixes(t *testing.T) {
	buf := capture(t)

	Info("Fetching users...")
	Success("Found %d users", 3)
	Warning("Session expired")

	assert.Equal(t, "[*] Fetching users...\n[+] Found 3 users\n[!] Session expired\n", buf.String())
}

func TestDetail(t *testing.T) {
	buf := capture(t)

	Detail("users: %s", "timeout")

	assert.Equal(t, "    users: timeout\n", buf.String())
}

func TestStatAndPhase(t *testing.T) {
	buf := capture(t)

	Phase(2, "Fetching %s", "data")
	Stat("Users", 4)

	assert.Equal(t, "[Phase 2] Fetching data\n  Users:               4\n", buf.String())
}

func TestRecords(t *testing.T) {
	buf := capture(t)

	Records([]types.Record{
		{ID: "1", Name: "A B", Email: "a@x.com"},
		{ID: "u2", Name: "C D", Email: "c@x.com", IsCurrent: true},
	})

	got := buf.String()
	assert.Contains(t, got, "a@x.com")
	assert.Contains(t, got, "C D")
	assert.Contains(t, got, "*")
	assert.Contains(t, got, "TOTAL")
}
