package app_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackupFilenameFormat(t *testing.T) {
	timestamp := time.Now().Format("20060102-150405")
	name := "huette9.db.backup-" + timestamp + ".db"

	// The cleanup routine only touches files matching this shape
	assert.Contains(t, name, ".backup-")
	assert.True(t, strings.HasSuffix(name, ".db"))
}

func TestBackupRetentionCutoff(t *testing.T) {
	now := time.Now()
	cutoff := now.AddDate(0, 0, -7)

	oldFile := cutoff.Add(-24 * time.Hour)
	assert.True(t, oldFile.Before(cutoff), "file older than retention should be deleted")

	recentFile := cutoff.Add(24 * time.Hour)
	assert.False(t, recentFile.Before(cutoff), "file within retention should be kept")
}
