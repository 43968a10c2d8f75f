package sqlstore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"study-plan/internal/store/storetest"
)

// Set MYSQL_TEST_DSN to run against a real server. The DSN needs
// parseTime=true&loc=UTC, e.g.
// MYSQL_TEST_DSN="root:pass@tcp(127.0.0.1:3306)/study_plan_test?parseTime=true&loc=UTC"
func TestStore_Integration(t *testing.T) {
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN not set, skipping MySQL integration test")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	s, err := New(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	storetest.Run(t, s)
}
