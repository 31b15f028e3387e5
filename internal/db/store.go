package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/pacific-emis/emisctl/pkg/emis"
)

// SchoolRow is one row returned by SampleSchools.
type SchoolRow struct {
	SchNo   string `db:"schNo"`
	SchName string `db:"schName"`
}

// Store runs emisctl's statements against an EMIS database.
type Store struct {
	db      *sqlx.DB
	dialect emis.Dialect
}

func NewStore(db *sqlx.DB, dialect emis.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// LoadTeacherCPD hands one CPD document to the pTeacherWrite.LoadTeacherCpd
// procedure inside a transaction. All values travel as parameters.
func (s *Store) LoadTeacherCPD(ctx context.Context, load emis.CPDLoad) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if s.dialect == emis.DialectPostgres {
			_, err = tx.ExecContext(ctx, postgresCPDCall,
				load.XML, load.FileReference, load.User, load.CPDCode, load.CPDYear)
		} else {
			_, err = tx.ExecContext(ctx, emis.CPDProcedure,
				sql.Named("cpdData", load.XML),
				sql.Named("fileReference", load.FileReference),
				sql.Named("user", load.User),
				sql.Named("cpdCode", load.CPDCode),
				sql.Named("cpdYear", load.CPDYear),
			)
		}
		if err != nil {
			return fmt.Errorf("%s failed for %s: %w", emis.CPDProcedure, load.Source, err)
		}
		return nil
	})
}

const postgresCPDCall = `CALL "pTeacherWrite"."LoadTeacherCpd"($1::xml, $2::uuid, $3, $4, $5)`

// InsertPopulation inserts models then population rows in one transaction.
func (s *Store) InsertPopulation(ctx context.Context, models []emis.PopulationModel, rows []emis.PopulationRecord) error {
	modelSQL := s.populationModelInsert()
	rowSQL := s.populationInsert()

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, m := range models {
			if _, err := tx.NamedExecContext(ctx, modelSQL, m); err != nil {
				return fmt.Errorf("insert population model %s: %w", m.Code, err)
			}
		}
		for _, r := range rows {
			if _, err := tx.NamedExecContext(ctx, rowSQL, r); err != nil {
				return fmt.Errorf("insert population %s/%d/%d: %w", r.ModelCode, r.Year, r.Age, err)
			}
		}
		return nil
	})
}

// SampleSchools returns up to n schools ordered by school number.
func (s *Store) SampleSchools(ctx context.Context, n int) ([]SchoolRow, error) {
	var query string
	if s.dialect == emis.DialectPostgres {
		query = `SELECT "schNo", "schName" FROM "Schools" ORDER BY "schNo" LIMIT $1`
	} else {
		query = `SELECT TOP (@p1) schNo, schName FROM dbo.Schools ORDER BY schNo`
	}

	var schools []SchoolRow
	if err := s.db.SelectContext(ctx, &schools, query, n); err != nil {
		return nil, fmt.Errorf("query schools: %w", err)
	}
	return schools, nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) populationInsert() string {
	cols := []string{"popmodCode", "popYear", "popAge", "popM", "popF"}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.table("Population"), s.columns(cols), namedParams(cols))
}

func (s *Store) populationModelInsert() string {
	cols := []string{"popmodCode", "popmodName", "popmodDesc"}
	all := append(append([]string{}, cols...), "popmodDefault", "popmodEFA")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s, 0, 0)",
		s.table("PopulationModel"), s.columns(all), namedParams(cols))
}

func (s *Store) table(name string) string {
	if s.dialect == emis.DialectPostgres {
		return s.quote(name)
	}
	return "[dbo]." + s.quote(name)
}

func (s *Store) columns(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = s.quote(c)
	}
	return strings.Join(quoted, ", ")
}

func (s *Store) quote(ident string) string {
	if s.dialect == emis.DialectPostgres {
		return `"` + ident + `"`
	}
	return "[" + ident + "]"
}

func namedParams(cols []string) string {
	named := make([]string, len(cols))
	for i, c := range cols {
		named[i] = ":" + c
	}
	return strings.Join(named, ", ")
}
