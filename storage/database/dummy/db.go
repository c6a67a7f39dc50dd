package dummydb

import (
	"sync"

	"github.com/trezcool/masomo-calendar/core/session"
)

type (
	DB struct {
		instance   *instanceTable
		recurrence *recurrenceTable
	}

	instanceTable struct {
		sync.RWMutex
		table map[string]*session.Instance
	}

	recurrenceTable struct {
		sync.RWMutex
		table map[string]*session.Recurrence
	}
)

func Open() (*DB, error) {
	db := &DB{
		instance:   &instanceTable{table: make(map[string]*session.Instance)},
		recurrence: &recurrenceTable{table: make(map[string]*session.Recurrence)},
	}
	return db, nil
}
