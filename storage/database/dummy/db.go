// Package dummydb is an in-memory store used by tests and local development.
//
// A single mutex serializes transactions, so the row locks the SQL store takes
// with SELECT ... FOR UPDATE are implied. A failed transaction restores the
// snapshot taken when it began.
package dummydb

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/mutsa-team6/myacademy-sub001/core"
	"github.com/mutsa-team6/myacademy-sub001/core/academy"
	"github.com/mutsa-team6/myacademy-sub001/core/announcement"
	"github.com/mutsa-team6/myacademy-sub001/core/attachment"
	"github.com/mutsa-team6/myacademy-sub001/core/employee"
	"github.com/mutsa-team6/myacademy-sub001/core/enrollment"
	"github.com/mutsa-team6/myacademy-sub001/core/lecture"
	"github.com/mutsa-team6/myacademy-sub001/core/member"
	"github.com/mutsa-team6/myacademy-sub001/core/payment"
)

type table[T any] map[int64]T

func (t table[T]) clone() table[T] {
	c := make(table[T], len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

// rows returns the rows accepted by keep, ordered by primary key.
func (t table[T]) rows(keep func(T) bool) []T {
	ids := make([]int64, 0, len(t))
	for id, row := range t {
		if keep(row) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	res := make([]T, 0, len(ids))
	for _, id := range ids {
		res = append(res, t[id])
	}
	return res
}

type state struct {
	pkCount        int64
	academies      table[academy.Academy]
	employees      table[employee.Employee]
	teachers       table[member.Teacher]
	parents        table[member.Parent]
	students       table[member.Student]
	notes          table[member.Note]
	lectures       table[lecture.Lecture]
	enrollments    table[enrollment.StudentLecture]
	waitingList    table[enrollment.WaitingEntry]
	payments       table[payment.Payment]
	cancelPayments table[payment.CancelPayment]
	discounts      table[payment.Discount]
	announcements  table[announcement.Announcement]
	attachments    table[attachment.Attachment]
}

func (s *state) clone() *state {
	return &state{
		pkCount:        s.pkCount,
		academies:      s.academies.clone(),
		employees:      s.employees.clone(),
		teachers:       s.teachers.clone(),
		parents:        s.parents.clone(),
		students:       s.students.clone(),
		notes:          s.notes.clone(),
		lectures:       s.lectures.clone(),
		enrollments:    s.enrollments.clone(),
		waitingList:    s.waitingList.clone(),
		payments:       s.payments.clone(),
		cancelPayments: s.cancelPayments.clone(),
		discounts:      s.discounts.clone(),
		announcements:  s.announcements.clone(),
		attachments:    s.attachments.clone(),
	}
}

type DB struct {
	mu sync.Mutex
	s  *state
}

var _ core.Transactor = (*DB)(nil) // interface compliance check

func Open() *DB {
	return &DB{s: &state{
		academies:      make(table[academy.Academy]),
		employees:      make(table[employee.Employee]),
		teachers:       make(table[member.Teacher]),
		parents:        make(table[member.Parent]),
		students:       make(table[member.Student]),
		notes:          make(table[member.Note]),
		lectures:       make(table[lecture.Lecture]),
		enrollments:    make(table[enrollment.StudentLecture]),
		waitingList:    make(table[enrollment.WaitingEntry]),
		payments:       make(table[payment.Payment]),
		cancelPayments: make(table[payment.CancelPayment]),
		discounts:      make(table[payment.Discount]),
		announcements:  make(table[announcement.Announcement]),
		attachments:    make(table[attachment.Attachment]),
	}}
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(bool)
	return ok
}

// InTx runs fn holding the store lock. Nested calls join the running transaction.
func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	snapshot := db.s.clone()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		db.s = snapshot
		return err
	}
	return nil
}

// lock guards a single statement run outside of a transaction.
func (db *DB) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	db.mu.Lock()
	return db.mu.Unlock
}

func (db *DB) nextID() int64 {
	db.s.pkCount++
	return db.s.pkCount
}

func live(deletedAt null.Time) bool { return !deletedAt.Valid }

func deleted(at time.Time) null.Time { return null.TimeFrom(at) }
