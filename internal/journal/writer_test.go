package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stefal/pyruse-go/internal/modules"
)

func TestJournalPriorityMapsEverySeverity(t *testing.T) {
	t.Parallel()
	cases := map[modules.Severity]string{
		modules.Emerg:   "0",
		modules.Alert:   "1",
		modules.Crit:    "2",
		modules.Err:     "3",
		modules.Warning: "4",
		modules.Notice:  "5",
		modules.Info:    "6",
		modules.Debug:   "7",
	}
	for level, want := range cases {
		assert.Equal(t, want, journalPriority(level))
	}
}

func TestWriterCommandDefaultsToSystemdCat(t *testing.T) {
	t.Parallel()
	w := &Writer{}
	bin, args := w.command()
	assert.Equal(t, "systemd-cat", bin)
	assert.Equal(t, []string{"-t", "pyruse"}, args)
}

func TestWriterCommandHonorsOverride(t *testing.T) {
	t.Parallel()
	w := &Writer{Command: "logger -t custom"}
	bin, args := w.command()
	assert.Equal(t, "logger", bin)
	assert.Equal(t, []string{"-t", "custom"}, args)
}
