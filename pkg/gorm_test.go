package pkg

import (
	"log/slog"
	"testing"

	"github.com/SAP-F-2025/quiz-session-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialector(t *testing.T) {
	for _, driver := range []string{"", "postgres", "PostgreSQL"} {
		d, err := Dialector(driver, "postgres://localhost/quizzes")
		require.NoError(t, err)
		assert.Equal(t, "postgres", d.Name())
	}

	d, err := Dialector("sqlite", "")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	_, err = Dialector("oracle", "")
	assert.Error(t, err)
}

func TestInitDatabase_SQLite(t *testing.T) {
	db, err := InitDatabase(&config.Config{DBDriver: "sqlite", DatabaseURL: "file:pkgtest?mode=memory&cache=shared"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()
	assert.NoError(t, sqlDB.Ping())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
