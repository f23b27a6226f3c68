package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"jan-server/services/report-api/internal/infrastructure/database/entities"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=report dbname=report_api sslmode=disable",
	}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestMessageQueriesOrderBySerialID(t *testing.T) {
	db := dryRunDB(t)

	list := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []entities.Message
		return conversationMessages(tx, "conv-1").Find(&rows)
	})
	assert.Contains(t, list, "ORDER BY id ASC")
	assert.NotContains(t, list, "public_id")

	latest := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var last entities.Message
		return latestMessage(tx, "conv-1").Take(&last)
	})
	assert.Contains(t, latest, "ORDER BY id DESC")
	assert.Contains(t, latest, "LIMIT 1")
}
