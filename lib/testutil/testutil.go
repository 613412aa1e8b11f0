package testutil

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"olxwatch/lib/telemetry"

	"github.com/mazen160/go-random"

	_ "modernc.org/sqlite"
)

type StoreParams struct {
	Name string
	// if unspecified, it will skip setting up a db
	DbSchema string
	// if unspecified, it will use `:memory:`
	DbPath string
}

type StoreResult struct {
	DB *sql.DB
}

// SetupStore prepares an in-memory sqlite database with the given
// schema plus test telemetry, returning a cleanup function.
func SetupStore(t testing.TB, params StoreParams) (StoreResult, func()) {
	cleanup := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))

	dbpath := ":memory:"
	if params.DbPath != "" {
		dbpath = params.DbPath
	}
	sqlite, err := sql.Open("sqlite", dbpath)
	if err != nil {
		t.Fatal(err)
	}
	// a second pooled connection would see a fresh empty :memory:
	// database without the schema or the pragma
	sqlite.SetMaxOpenConns(1)
	_, err = sqlite.Exec("PRAGMA foreign_keys=ON")
	if err != nil {
		t.Fatal(err)
	}
	if params.DbSchema != "" {
		_, err = sqlite.Exec(params.DbSchema)
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			t.Fatal(err)
		}
	}

	return StoreResult{
		DB: sqlite,
	}, func() {
		sqlite.Close()
		cleanup()
	}
}

// RandomListingID generates a random listing id.
func RandomListingID(t testing.TB) string {
	id, err := random.String(9)
	if err != nil {
		t.Fatal(err)
	}
	return id
}
