package settings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topupdesk/internal/settings"
	"topupdesk/internal/testsupport"
)

func TestIsOperatorExcluded(t *testing.T) {
	t.Run("excludes exact operator match", func(t *testing.T) {
		dbManager, _ := testsupport.SetupTestDBManager(t)
		db := dbManager.GetConnection()
		settings.SetupDefaultSettings(db)

		err := settings.UpdateSetting(db, settings.KeyExcludedOperators, "trainee")
		require.NoError(t, err)

		isExcluded, err := settings.IsOperatorExcluded("trainee")
		require.NoError(t, err)
		assert.True(t, isExcluded)

		isExcluded, err = settings.IsOperatorExcluded("somchai")
		require.NoError(t, err)
		assert.False(t, isExcluded)
	})

	t.Run("handles names with whitespace", func(t *testing.T) {
		dbManager, _ := testsupport.SetupTestDBManager(t)
		db := dbManager.GetConnection()
		settings.SetupDefaultSettings(db)

		err := settings.UpdateSetting(db, settings.KeyExcludedOperators, " trainee , temp-staff ")
		require.NoError(t, err)

		operators, err := settings.GetExcludedOperators()
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"trainee", "temp-staff"}, operators)
	})

	t.Run("handles empty exclusion value", func(t *testing.T) {
		dbManager, _ := testsupport.SetupTestDBManager(t)
		db := dbManager.GetConnection()
		settings.SetupDefaultSettings(db)

		err := settings.UpdateSetting(db, settings.KeyExcludedOperators, "")
		require.NoError(t, err)

		isExcluded, err := settings.IsOperatorExcluded("somchai")
		require.NoError(t, err)
		assert.False(t, isExcluded)
	})
}

func TestUpdateSettingCreatesMissingRow(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	require.NoError(t, settings.UpdateSetting(db, "brand_new_key", "hello"))

	value, err := settings.GetSetting(db, "brand_new_key")
	require.NoError(t, err)
	assert.Equal(t, "hello", value)

	require.NoError(t, settings.UpdateSetting(db, "brand_new_key", "world"))
	value, err = settings.GetSetting(db, "brand_new_key")
	require.NoError(t, err)
	assert.Equal(t, "world", value)
}

func TestGetAllSettingsForDisplay(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	settings.SetupDefaultSettings(db)

	all, err := settings.GetAllSettingsForDisplay(db)
	require.NoError(t, err)

	keys := make([]string, 0, len(all))
	for _, s := range all {
		keys = append(keys, s.Key)
	}
	assert.Contains(t, keys, settings.KeyExcludedOperators)
	assert.Contains(t, keys, settings.KeyDefaultGame)
}
