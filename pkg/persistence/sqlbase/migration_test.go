package sqlbase

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrationManager_Pending(t *testing.T) {
	m := NewMigrationManager(slog.Default(), nil, map[int]string{
		3: "SELECT 3",
		1: "SELECT 1",
		2: "SELECT 2",
	})

	assert.Equal(t, []int{1, 2, 3}, m.Pending(0))
	assert.Equal(t, []int{3}, m.Pending(2))
	assert.Empty(t, m.Pending(3))
}
