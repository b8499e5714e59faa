package clientdata

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupJob_Run(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	now := time.Now()
	expiredAt := now.Add(-time.Hour).Unix()
	freshAt := now.Add(time.Hour).Unix()

	_, err := db.Exec("INSERT INTO exchangerate (pair, data, expires_at) VALUES (?, ?, ?)", "USD/COP", `{}`, expiredAt)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO exchangerate (pair, data, expires_at) VALUES (?, ?, ?)", "COP/USD", `{}`, freshAt)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO provider_health (provider, data, expires_at) VALUES (?, ?, ?)", "open-er-api", `{}`, expiredAt)
	require.NoError(t, err)

	job := NewCleanupJob(repo, zerolog.Nop())
	assert.Equal(t, "client_data_cleanup", job.Name())

	err = job.Run()
	require.NoError(t, err)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM exchangerate").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	err = db.QueryRow("SELECT COUNT(*) FROM provider_health").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCleanupJob_RunEmpty(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())
	assert.NoError(t, job.Run())
}
