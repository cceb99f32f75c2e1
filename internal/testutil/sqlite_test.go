package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/portfolio/internal/model"
	"github.com/MarkoPoloResearchLab/portfolio/internal/storage"
	"github.com/MarkoPoloResearchLab/portfolio/internal/testutil"
)

func TestNewSQLiteTestDatabaseUsesSharedInMemoryDatabase(testingT *testing.T) {
	configuration := testutil.NewSQLiteTestDatabase(testingT).Configuration()

	require.Equal(testingT, storage.DriverNameSQLite, configuration.DriverName)
	for _, expectedParameter := range []string{"mode=memory", "cache=shared", "_foreign_keys=on"} {
		require.Contains(testingT, configuration.DataSourceName, expectedParameter)
	}
}

func TestNewSQLiteTestDatabaseReturnsUniqueDataSourceNames(testingT *testing.T) {
	firstDatabase := testutil.NewSQLiteTestDatabase(testingT)
	secondDatabase := testutil.NewSQLiteTestDatabase(testingT)

	require.NotEqual(testingT, firstDatabase.DataSourceName(), secondDatabase.DataSourceName())
}

func TestOpenMigratedDatabaseCreatesSchema(testingT *testing.T) {
	database := testutil.OpenMigratedDatabase(testingT)

	require.True(testingT, database.Migrator().HasTable(&model.AdminCredentialOverride{}))
}
