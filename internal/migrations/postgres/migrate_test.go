package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"

	"sharedcal/pkg/logger"
	"sharedcal/pkg/model"

	"github.com/jmoiron/sqlx"
)

type recordingDB struct {
	failAt    int
	executed  []string
	commits   int
	rollbacks int
}

func (r *recordingDB) Connect(context.Context) (driver.Conn, error) { return recordingConn{r}, nil }
func (r *recordingDB) Driver() driver.Driver                       { return recordingDriver{r} }

type recordingDriver struct{ db *recordingDB }

func (d recordingDriver) Open(string) (driver.Conn, error) { return recordingConn{d.db}, nil }

type recordingConn struct{ db *recordingDB }

func (c recordingConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("prepare not supported") }
func (c recordingConn) Close() error                        { return nil }
func (c recordingConn) Begin() (driver.Tx, error)           { return recordingTx(c), nil }

func (c recordingConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	if c.db.failAt > 0 && len(c.db.executed)+1 == c.db.failAt {
		return nil, errors.New("syntax error")
	}
	c.db.executed = append(c.db.executed, query)
	return driver.RowsAffected(0), nil
}

type recordingTx struct{ db *recordingDB }

func (t recordingTx) Commit() error   { t.db.commits++; return nil }
func (t recordingTx) Rollback() error { t.db.rollbacks++; return nil }

func TestRunMigration_AppliesStatementsInOrder(t *testing.T) {
	rec := &recordingDB{}
	db := sqlx.NewDb(sql.OpenDB(rec), "postgres")

	if err := RunMigration(context.Background(), db, logger.Discard()); err != nil {
		t.Fatalf("RunMigration() error = %v", err)
	}

	if len(rec.executed) != len(Statements) {
		t.Fatalf("executed %d statements, want %d", len(rec.executed), len(Statements))
	}
	for i, stmt := range Statements {
		if rec.executed[i] != stmt {
			t.Errorf("statement %d out of order", i+1)
		}
	}
	if rec.commits != 1 || rec.rollbacks != 0 {
		t.Errorf("commits=%d rollbacks=%d, want 1 and 0", rec.commits, rec.rollbacks)
	}
}

func TestRunMigration_FailureRollsBack(t *testing.T) {
	rec := &recordingDB{failAt: 2}
	db := sqlx.NewDb(sql.OpenDB(rec), "postgres")

	err := RunMigration(context.Background(), db, logger.Discard())
	if err == nil || !strings.Contains(err.Error(), "statement 2") {
		t.Fatalf("RunMigration() error = %v, want statement 2 failure", err)
	}
	if rec.commits != 0 || rec.rollbacks != 1 {
		t.Errorf("commits=%d rollbacks=%d, want 0 and 1", rec.commits, rec.rollbacks)
	}
}

func TestStatements_AreRerunnable(t *testing.T) {
	for i, stmt := range Statements {
		if !strings.Contains(stmt, "IF NOT EXISTS") {
			t.Errorf("statement %d is not idempotent: %s", i+1, stmt)
		}
	}
}

func TestStatements_StatusCheckMatchesModel(t *testing.T) {
	table := Statements[0]
	for _, status := range []model.Status{model.StatusBooked, model.StatusCheckedIn, model.StatusCheckedOut} {
		if !strings.Contains(table, "'"+string(status)+"'") {
			t.Errorf("status check is missing %s", status)
		}
	}
	if strings.Contains(table, "status      TEXT    NOT NULL") {
		t.Error("status must stay nullable so legacy rows load")
	}
}
