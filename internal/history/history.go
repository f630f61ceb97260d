// Package history is a read/record-only cross-week relationship store
// backed by KuzuDB: it records which physicians worked together and who
// held charge on which day, purely for retrospective querying. It never
// feeds back into optimize — each week is still solved independently, per
// the system's no-rolling-horizon non-goal. Grounded on the teacher's
// kuzu_connection.go connection-management style, translated from a
// pooled manager to the single-connection usage this read-mostly store
// needs.
package history

import (
	"fmt"
	"sort"

	"github.com/kuzudb/go-kuzu"

	"github.com/anescall/callsched/internal/model"
	"github.com/anescall/callsched/internal/optimize"
)

// Store wraps a KuzuDB database and connection.
type Store struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Open opens (creating if necessary) the graph database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	db, err := kuzu.OpenDatabase(path, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	conn, err := kuzu.NewConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open history connection: %w", err)
	}

	s := &Store{db: db, conn: conn}
	if err := s.ensureSchema(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the store's connection and database handle.
func (s *Store) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE NODE TABLE IF NOT EXISTS Physician(id STRING, PRIMARY KEY(id))`,
		`CREATE NODE TABLE IF NOT EXISTS Day(date STRING, PRIMARY KEY(date))`,
		`CREATE REL TABLE IF NOT EXISTS WorkedWith(FROM Physician TO Physician, date STRING)`,
		`CREATE REL TABLE IF NOT EXISTS ChargeOn(FROM Physician TO Day)`,
		`CREATE REL TABLE IF NOT EXISTS CardiacOn(FROM Physician TO Day)`,
	}
	for _, stmt := range stmts {
		if _, err := s.conn.Query(stmt); err != nil {
			return fmt.Errorf("apply schema statement %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *Store) mergePhysician(id string) error {
	_, err := s.conn.Query(`MERGE (p:Physician {id: $id})`, map[string]interface{}{"id": id})
	return err
}

func (s *Store) mergeDay(date string) error {
	_, err := s.conn.Query(`MERGE (d:Day {date: $date})`, map[string]interface{}{"date": date})
	return err
}

// RecordWeek writes every working relationship and charge/cardiac pick
// from a solved week into the graph: a WorkedWith edge between every pair
// of physicians sharing a working day (directed from the lexically smaller
// identifier to the larger), and a ChargeOn/CardiacOn edge from
// the elected physician to that day.
func (s *Store) RecordWeek(sched *model.Schedule, result *optimize.Result) error {
	dayByDate := map[string]*model.Day{}
	for _, d := range sched.Days {
		dayByDate[d.Date] = d
	}

	for _, da := range result.Days {
		d := dayByDate[da.Date]
		if d == nil {
			continue
		}
		if err := s.mergeDay(da.Date); err != nil {
			return err
		}

		working := d.Working()
		sort.Strings(working)
		for _, p := range working {
			if err := s.mergePhysician(p); err != nil {
				return err
			}
		}
		for i := 0; i < len(working); i++ {
			for j := i + 1; j < len(working); j++ {
				if err := s.recordWorkedWith(working[i], working[j], da.Date); err != nil {
					return err
				}
			}
		}
		if da.Charge != "" {
			if err := s.recordEdge("ChargeOn", da.Charge, da.Date); err != nil {
				return err
			}
		}
		if da.Cardiac != "" {
			if err := s.recordEdge("CardiacOn", da.Cardiac, da.Date); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) recordWorkedWith(a, b, date string) error {
	q := `MATCH (x:Physician {id: $a}), (y:Physician {id: $b}) MERGE (x)-[:WorkedWith {date: $date}]->(y)`
	_, err := s.conn.Query(q, map[string]interface{}{"a": a, "b": b, "date": date})
	return err
}

// recordEdge merges a ChargeOn or CardiacOn edge from physician to the day
// dated date. The relationship type is a Cypher identifier, not a value, so
// it cannot be bound as a query parameter; rel is restricted to the two
// schema-declared names.
func (s *Store) recordEdge(rel, physician, date string) error {
	var q string
	switch rel {
	case "ChargeOn":
		q = `MATCH (p:Physician {id: $physician}), (d:Day {date: $date}) MERGE (p)-[:ChargeOn]->(d)`
	case "CardiacOn":
		q = `MATCH (p:Physician {id: $physician}), (d:Day {date: $date}) MERGE (p)-[:CardiacOn]->(d)`
	default:
		return fmt.Errorf("unknown history relationship type %q", rel)
	}
	_, err := s.conn.Query(q, map[string]interface{}{"physician": physician, "date": date})
	return err
}

// WorkedWithCount returns how many times two physicians shared a working
// day across every recorded week.
func (s *Store) WorkedWithCount(a, b string) (int, error) {
	// RecordWeek always directs a WorkedWith edge from the lexically
	// smaller identifier to the larger one.
	if a > b {
		a, b = b, a
	}
	q := `MATCH (x:Physician {id: $a})-[r:WorkedWith]->(y:Physician {id: $b}) RETURN count(r)`
	result, err := s.conn.Query(q, map[string]interface{}{"a": a, "b": b})
	if err != nil {
		return 0, err
	}
	defer result.Close()
	if !result.HasNext() {
		return 0, nil
	}
	record, err := result.Next()
	if err != nil {
		return 0, err
	}
	if len(record) < 1 {
		return 0, nil
	}
	count, _ := record[0].(int64)
	return int(count), nil
}
