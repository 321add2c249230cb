package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stocker-api/internal/infrastructure/storage"
	"github.com/jhoicas/stocker-api/pkg/config"
	"github.com/jhoicas/stocker-api/pkg/logger"
)

func TestOpen_Memoria(t *testing.T) {
	repos, err := storage.Open(context.Background(), config.DBConfig{Driver: storage.DriverMemory}, logger.Nop())
	require.NoError(t, err)
	defer repos.Close()

	assert.NotNil(t, repos.TxRunner)
	assert.NotNil(t, repos.Items)
	assert.NotNil(t, repos.Reports)
}

func TestOpen_DriverDesconocido(t *testing.T) {
	_, err := storage.Open(context.Background(), config.DBConfig{Driver: "sqlite"}, logger.Nop())
	assert.ErrorContains(t, err, "sqlite")
}
