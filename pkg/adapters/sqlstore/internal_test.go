package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	q := "SELECT data FROM t WHERE id = ? AND (expires_at = 0 OR expires_at > ?)"

	sqlite := &Store{dialect: dialectSQLite}
	assert.Equal(t, q, sqlite.rebind(q))

	pg := &Store{dialect: dialectPostgres}
	assert.Equal(t, "SELECT data FROM t WHERE id = $1 AND (expires_at = 0 OR expires_at > $2)", pg.rebind(q))
}

func TestUpMigration(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (x INT);\n-- +migrate Down\nDROP TABLE a;\n"
	assert.Equal(t, "\nCREATE TABLE a (x INT);\n", upMigration(content))
	assert.Equal(t, "CREATE TABLE b (x INT);", upMigration("CREATE TABLE b (x INT);"))
}
