package testutils

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"geolocale/db"
	"geolocale/internal/config"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func SetupTestDatabase(t *testing.T) (*sql.DB, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	testDB, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_timeout=10000&_foreign_keys=on")
	require.NoError(t, err)

	err = db.InitializeSchema(testDB)
	require.NoError(t, err)

	cleanup := func() {
		testDB.Close()
		os.RemoveAll(tempDir)
	}

	return testDB, cleanup
}

func GetTestConfig() *config.Config {
	return &config.Config{
		Port:            "0",
		JwtKey:          []byte("test_jwt_secret_key_for_testing_only"),
		Username:        "test_admin",
		Password:        "test_password",
		SQLitePath:      ":memory:",
		ResolveTimeout:  5 * time.Second,
		RateLimitMax:    10,
		RateLimitWindow: time.Minute,
		CacheTTL:        24 * time.Hour,
	}
}
