//go:build conntest

package conntest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pacific-emis/emisctl/internal/db"
	"github.com/pacific-emis/emisctl/internal/logging"
	"github.com/pacific-emis/emisctl/internal/testinfra"
	"github.com/pacific-emis/emisctl/pkg/emis"
)

const schema = `
CREATE SCHEMA "pTeacherWrite";
CREATE TABLE "CpdUploads" (
	"fileReference" uuid PRIMARY KEY,
	"cpdData" xml NOT NULL,
	"uploadUser" text NOT NULL,
	"cpdCode" text NOT NULL,
	"cpdYear" int NOT NULL
);
CREATE PROCEDURE "pTeacherWrite"."LoadTeacherCpd"(data xml, ref uuid, usr text, code text, yr int)
LANGUAGE sql AS $$
	INSERT INTO "CpdUploads" VALUES (ref, data, usr, code, yr);
$$;
CREATE TABLE "PopulationModel" (
	"popmodCode" text PRIMARY KEY,
	"popmodName" text,
	"popmodDesc" text,
	"popmodDefault" int,
	"popmodEFA" int
);
CREATE TABLE "Population" (
	"popmodCode" text REFERENCES "PopulationModel",
	"popYear" int,
	"popAge" int,
	"popM" int,
	"popF" int,
	PRIMARY KEY ("popmodCode", "popYear", "popAge")
);
CREATE TABLE "Schools" ("schNo" text PRIMARY KEY, "schName" text);
INSERT INTO "Schools" VALUES ('KS100', 'Alpha School'), ('KS200', 'Beta School'), ('KS300', 'O''Hara School'), ('KS400', 'Delta');
`

func setup(t *testing.T) (*db.Store, func()) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := testinfra.StartPostgres(ctx)
	require.NoError(t, err)

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := &emis.ConnectionConfig{
		Dialect:  emis.DialectPostgres,
		Host:     host,
		Port:     port.Int(),
		Database: testinfra.PostgresDB,
		Username: testinfra.PostgresUser,
		Password: testinfra.PostgresPassword,
		Encrypt:  "disable",
		AppName:  "emisctl-conntest",
	}
	connector, err := db.NewConnector(cfg, logging.NewNullLogger())
	require.NoError(t, err)

	handle, err := connector.Connect(ctx)
	require.NoError(t, err)
	_, err = handle.ExecContext(ctx, schema)
	require.NoError(t, err)

	return db.NewStore(handle, emis.DialectPostgres), func() {
		handle.Close()
		ctr.Terminate(context.Background()) //nolint:errcheck
	}
}

func TestStore_Postgres(t *testing.T) {
	store, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("LoadTeacherCPD", func(t *testing.T) {
		load := emis.CPDLoad{
			Source:        "CPD-Literacy-2024.xlsx",
			XML:           `<ListObject FirstRow="2" cpdName="Literacy" cpdYear="2024"><row Index="0" CPDName="O'Brien &amp; co"/></ListObject>`,
			FileReference: uuid.NewString(),
			User:          "loader",
			CPDCode:       "Literacy",
			CPDYear:       2024,
		}
		require.NoError(t, store.LoadTeacherCPD(ctx, load))
	})

	t.Run("InsertPopulation", func(t *testing.T) {
		models := []emis.PopulationModel{{Code: "UNPD24V1", Name: "UNPD 2024 Variant - Median", Description: "d"}}
		rows := []emis.PopulationRecord{
			{ModelCode: "UNPD24V1", Year: 2025, Age: 0, Male: 1200, Female: 1150},
			{ModelCode: "UNPD24V1", Year: 2025, Age: 1, Male: 1190, Female: 1140},
		}
		require.NoError(t, store.InsertPopulation(ctx, models, rows))

		err := store.InsertPopulation(ctx, models, rows)
		assert.Error(t, err, "duplicate keys roll back the whole batch")
	})

	t.Run("SampleSchools", func(t *testing.T) {
		schools, err := store.SampleSchools(ctx, 3)
		require.NoError(t, err)
		require.Len(t, schools, 3)
		assert.Equal(t, db.SchoolRow{SchNo: "KS100", SchName: "Alpha School"}, schools[0])
		assert.Equal(t, "O'Hara School", schools[2].SchName)
	})
}
