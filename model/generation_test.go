package model

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// mockDB swaps the package DB for a sqlmock-backed connection.
func mockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	prev := DB
	DB = gormDB
	t.Cleanup(func() { DB = prev })
	return mock
}

func TestGenerationInsert(t *testing.T) {
	mock := mockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `generations`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	g := &Generation{
		UserId:           7,
		GenerationId:     "2025-07-06T05-58-07-016Z-abc123",
		DataSource:       "excel",
		ScenarioCount:    2,
		PromptTokens:     1200,
		SplitStrategy:    "marker",
		MethodFilename:   "GeneratedMethods_x.java",
		TestFilename:     "GeneratedTests_x.java",
		CombinedFilename: "GeneratedCombined_x.java",
	}
	require.NoError(t, g.Insert())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetGenerationsByUserId(t *testing.T) {
	mock := mockDB(t)
	rows := sqlmock.NewRows([]string{"id", "user_id", "generation_id", "data_source"}).
		AddRow(2, 7, "gen-2", "testrail").
		AddRow(1, 7, "gen-1", "excel")
	mock.ExpectQuery("SELECT (.+) FROM `generations` WHERE user_id = ?").
		WillReturnRows(rows)

	generations, err := GetGenerationsByUserId(7, 0, 20)
	require.NoError(t, err)
	require.Len(t, generations, 2)
	require.Equal(t, "gen-2", generations[0].GenerationId)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetGenerationByTokenEmpty(t *testing.T) {
	_, err := GetGenerationByToken("")
	require.Error(t, err)
}
