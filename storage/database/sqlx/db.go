// Package sqlxrepos implements the repositories on Postgres with jmoiron/sqlx.
//
// Every read of a soft-deletable table goes through the table's live* query,
// which carries the "deleted_at IS NULL" predicate.
package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/mutsa-team6/myacademy-sub001/core"
)

const (
	uniqueViolation = "23505"
	checkViolation  = "23514"
)

type DB struct {
	db *sqlx.DB
}

var _ core.Transactor = (*DB)(nil) // interface compliance check

func NewDB(db *sqlx.DB) *DB {
	return &DB{db: db}
}

type txKey struct{}

// InTx runs fn in a read-committed transaction. Nested calls join the running transaction.
func (d *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := d.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return errors.Wrapf(err, "rolling back: %v", rerr)
		}
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// exec returns the transaction carried by ctx, or the pool.
func (d *DB) exec(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return d.db
}

func pqCode(err error) (code, constraint string) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint
	}
	return "", ""
}

// constraintErrors maps constraint names onto domain errors.
type constraintErrors map[string]error

func (ce constraintErrors) translate(err error) error {
	if err == nil {
		return nil
	}
	if code, constraint := pqCode(err); code == uniqueViolation || code == checkViolation {
		if derr, ok := ce[constraint]; ok {
			return derr
		}
	}
	return err
}

func (d *DB) get(ctx context.Context, dest interface{}, notFound error, query string, args ...interface{}) error {
	err := sqlx.GetContext(ctx, d.exec(ctx), dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return errors.Wrap(err, "querying row")
}

func (d *DB) list(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return errors.Wrap(sqlx.SelectContext(ctx, d.exec(ctx), dest, query, args...), "querying rows")
}

func (d *DB) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var ok bool
	err := sqlx.GetContext(ctx, d.exec(ctx), &ok, "SELECT EXISTS ("+query+")", args...)
	return ok, errors.Wrap(err, "checking existence")
}

// insert runs a named INSERT ... RETURNING id.
func (d *DB) insert(ctx context.Context, ce constraintErrors, query string, arg interface{}) (int64, error) {
	rows, err := sqlx.NamedQueryContext(ctx, d.exec(ctx), query, arg)
	if err != nil {
		return 0, ce.translate(err)
	}
	defer func() { _ = rows.Close() }()

	var id int64
	if rows.Next() {
		if err = rows.Scan(&id); err != nil {
			return 0, errors.Wrap(err, "scanning id")
		}
	}
	if err = rows.Err(); err != nil {
		return 0, ce.translate(err)
	}
	return id, nil
}

// update runs a named statement and reports notFound when no row matched.
func (d *DB) update(ctx context.Context, ce constraintErrors, notFound error, query string, arg interface{}) error {
	res, err := sqlx.NamedExecContext(ctx, d.exec(ctx), query, arg)
	if err != nil {
		return ce.translate(err)
	}
	return checkAffected(res, notFound)
}

func (d *DB) execAffect(ctx context.Context, notFound error, query string, args ...interface{}) error {
	res, err := d.exec(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "executing statement")
	}
	return checkAffected(res, notFound)
}

func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// insertQuery builds a named INSERT for cols, returning the generated id.
func insertQuery(table string, cols ...string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s) RETURNING id",
		table, strings.Join(cols, ", "), strings.Join(cols, ", :"))
}

// updateQuery builds a named UPDATE of cols for the live row with the given id and academy.
func updateQuery(table string, cols ...string) string {
	set := make([]string, len(cols))
	for i, c := range cols {
		set[i] = c + " = :" + c
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = :id AND academy_id = :academy_id AND deleted_at IS NULL",
		table, strings.Join(set, ", "))
}

func softDeleteQuery(table string) string {
	return fmt.Sprintf("UPDATE %s SET deleted_at = $3 WHERE academy_id = $1 AND id = $2 AND deleted_at IS NULL", table)
}

// where collects optional conditions. Each "?" in a condition is bound to its argument.
type where struct {
	conds []string
	args  []interface{}
}

func newWhere(args ...interface{}) *where {
	return &where{args: args}
}

func (w *where) add(cond string, arg interface{}) *where {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(w.args))))
	return w
}

func (w *where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " AND " + strings.Join(w.conds, " AND ")
}

func like(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(search) + "%"
}
