package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/ada/core"
	"github.com/trezcool/ada/core/expense"
	"github.com/trezcool/ada/core/fee"
	"github.com/trezcool/ada/core/school"
	"github.com/trezcool/ada/core/student"
	"github.com/trezcool/ada/core/user"
)

type (
	// DB is an in-memory store with the same semantics as the PostgreSQL repositories.
	DB struct {
		sync.RWMutex
		txMutex sync.Mutex

		tables tables
	}

	tables struct {
		pk         map[string]int // last primary key per table
		users      map[int]user.User
		settings   map[int]school.Settings // without classes
		classes    map[int][]school.Class  // by settings id
		students   map[int]student.Student // without admission
		admissions map[int]student.Admission
		fees       map[int]fee.MonthlyFee // without student
		expenses   map[int]expense.Expense
	}
)

var _ core.Transactor = (*DB)(nil)

func Open() *DB {
	return &DB{tables: tables{
		pk:         make(map[string]int),
		users:      make(map[int]user.User),
		settings:   make(map[int]school.Settings),
		classes:    make(map[int][]school.Class),
		students:   make(map[int]student.Student),
		admissions: make(map[int]student.Admission),
		fees:       make(map[int]fee.MonthlyFee),
		expenses:   make(map[int]expense.Expense),
	}}
}

// nextPK must be called with the write lock held.
func (db *DB) nextPK(table string) int {
	db.tables.pk[table]++
	return db.tables.pk[table]
}

// WithinTx runs fn and restores the tables as they were if it fails.
// Transactions are serialized; the executor given to fn is nil.
func (db *DB) WithinTx(_ context.Context, fn func(exec core.DBExecutor) error) error {
	db.txMutex.Lock()
	defer db.txMutex.Unlock()

	db.RLock()
	snapshot := db.tables.clone()
	db.RUnlock()

	if err := fn(nil); err != nil {
		db.Lock()
		db.tables = snapshot
		db.Unlock()
		return err
	}
	return nil
}

// Flush empties all tables.
func (db *DB) Flush() {
	db.Lock()
	defer db.Unlock()
	db.tables = Open().tables
}

func (t tables) clone() tables {
	c := Open().tables
	for k, v := range t.pk {
		c.pk[k] = v
	}
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.settings {
		c.settings[k] = v
	}
	for k, v := range t.classes {
		c.classes[k] = append([]school.Class(nil), v...)
	}
	for k, v := range t.students {
		c.students[k] = v
	}
	for k, v := range t.admissions {
		c.admissions[k] = v
	}
	for k, v := range t.fees {
		c.fees[k] = v
	}
	for k, v := range t.expenses {
		c.expenses[k] = v
	}
	return c
}
