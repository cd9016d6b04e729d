package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("all tables exist", func(t *testing.T) {
		expectedTables := []string{
			"news_events",
			"trading_signals",
		}

		for _, tableName := range expectedTables {
			var exists bool
			err := testDB.GetRawConn().QueryRow(`
				SELECT EXISTS (
					SELECT FROM information_schema.tables
					WHERE table_schema = 'public'
					AND table_name = $1
				)
			`, tableName).Scan(&exists)

			require.NoError(t, err, "failed to check table existence for %s", tableName)
			assert.True(t, exists, "table %s should exist", tableName)
		}
	})

	t.Run("news_events table has correct columns", func(t *testing.T) {
		expectedColumns := map[string]string{
			"uid":               "character varying",
			"source":            "character varying",
			"title":             "text",
			"link":              "text",
			"ticker":            "character varying",
			"impact_score":      "integer",
			"gap_pct":           "double precision",
			"vol_spike":         "double precision",
			"validated":         "boolean",
			"validation_reason": "text",
			"created_at":        "timestamp with time zone",
		}

		for column, expectedType := range expectedColumns {
			var dataType string
			err := testDB.GetRawConn().QueryRow(`
				SELECT data_type
				FROM information_schema.columns
				WHERE table_name = 'news_events' AND column_name = $1
			`, column).Scan(&dataType)

			require.NoError(t, err, "column %s should exist", column)
			assert.Equal(t, expectedType, dataType, "column %s type", column)
		}
	})

	t.Run("trading_signals price columns are numeric", func(t *testing.T) {
		for _, column := range []string{
			"confidence", "current_price", "entry_price", "stop_loss",
			"take_profit_1", "take_profit_2", "take_profit_3",
			"risk_reward_ratio", "risk_amount_pct", "reward_amount_pct",
		} {
			var dataType string
			err := testDB.GetRawConn().QueryRow(`
				SELECT data_type
				FROM information_schema.columns
				WHERE table_name = 'trading_signals' AND column_name = $1
			`, column).Scan(&dataType)

			require.NoError(t, err, "column %s should exist", column)
			assert.Equal(t, "numeric", dataType, "column %s type", column)
		}
	})
}
