// Package sqliteexport persists a solved week into the cross-week SQLite
// warehouse: one schedule row, one doctors row per registered physician,
// one points row per physician worked that week, one assignments row per
// peel/role slot, and the holiday calendar. Grounded on original_source's
// import_json_to_sqlite.py schema, re-expressed with database/sql and the
// teacher's mattn/go-sqlite3 driver.
package sqliteexport

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/anescall/callsched/internal/calendar"
	"github.com/anescall/callsched/internal/model"
	"github.com/anescall/callsched/internal/optimize"
	"github.com/anescall/callsched/internal/staff"
)

// Store wraps the warehouse database connection.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS schedule (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file_name TEXT UNIQUE,
	period_start TEXT,
	period_end TEXT,
	target_value REAL,
	workdays INTEGER,
	objective_total REAL,
	objective_equity REAL,
	objective_role_concentration REAL,
	objective_charge_preference REAL,
	num_constraints INTEGER,
	num_variables INTEGER,
	optimal BOOLEAN
);

CREATE TABLE IF NOT EXISTS doctors (
	id TEXT PRIMARY KEY,
	name TEXT,
	cardiac BOOLEAN,
	charge BOOLEAN
);

CREATE TABLE IF NOT EXISTS points (
	schedule_id INTEGER,
	doctor_id TEXT,
	fixed_points INTEGER,
	total_points INTEGER,
	cardiac INTEGER,
	charge INTEGER,
	days_working INTEGER,
	UNIQUE(doctor_id, schedule_id),
	FOREIGN KEY (schedule_id) REFERENCES schedule(id),
	FOREIGN KEY (doctor_id) REFERENCES doctors(id)
);

CREATE TABLE IF NOT EXISTS assignments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	doctor_id TEXT,
	date TEXT,
	points INTEGER,
	role TEXT,
	schedule_id INTEGER,
	is_charge BOOLEAN,
	is_cardiac BOOLEAN,
	UNIQUE(doctor_id, date),
	FOREIGN KEY (schedule_id) REFERENCES schedule(id),
	FOREIGN KEY (doctor_id) REFERENCES doctors(id)
);

CREATE TABLE IF NOT EXISTS holidays (
	date TEXT,
	description TEXT,
	UNIQUE(date)
);
`

// Open creates the warehouse database (and its parent directory) at path
// if it does not already exist, and ensures its schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create warehouse directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open warehouse database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply warehouse schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

// ImportStaff upserts every registered physician into the doctors table.
func (s *Store) ImportStaff(reg *staff.Registry) error {
	for _, id := range reg.Everyone(minDate(), maxDate()) {
		p, _ := reg.Get(id)
		if _, err := s.db.Exec(
			`INSERT OR REPLACE INTO doctors (id, name, cardiac, charge) VALUES (?, ?, ?, ?)`,
			p.ID, p.Name, p.CanBeCardiac, p.CanBeCharge,
		); err != nil {
			return fmt.Errorf("import doctor %s: %w", p.ID, err)
		}
	}
	return nil
}

// ImportHolidays upserts the calendar's named holidays for the given year
// range.
func (s *Store) ImportHolidays(cal *calendar.Calendar, fromYear, toYear int) error {
	for year := fromYear; year <= toYear; year++ {
		for date, name := range cal.HolidaysInYear(year) {
			if _, err := s.db.Exec(
				`INSERT OR REPLACE INTO holidays (date, description) VALUES (?, ?)`,
				date, name,
			); err != nil {
				return fmt.Errorf("import holiday %s: %w", date, err)
			}
		}
	}
	return nil
}

// ImportSchedule writes one solved week (schedule, points, assignments
// rows) under fileName, replacing any prior row with the same name.
func (s *Store) ImportSchedule(fileName string, sched *model.Schedule, result *optimize.Result) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM schedule WHERE file_name = ?`, fileName); err != nil {
		return err
	}

	workdays := 0
	for _, d := range sched.Days {
		if d.Kind == model.Workday {
			workdays++
		}
	}
	var periodStart, periodEnd string
	if len(sched.Days) > 0 {
		periodStart = sched.Days[0].Date
		periodEnd = sched.Days[len(sched.Days)-1].Date
	}

	res, err := tx.Exec(`
		INSERT INTO schedule (
			file_name, period_start, period_end, target_value, workdays,
			objective_total, objective_equity, objective_role_concentration,
			objective_charge_preference, num_constraints, num_variables, optimal
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fileName, periodStart, periodEnd, result.Mu, workdays,
		result.Objective.Total, result.Objective.Equity, result.Objective.RoleConcentration,
		result.Objective.ChargePreference, result.Telemetry.NumConstraints, result.Telemetry.NumVariables,
		result.Status == optimize.StatusOptimal,
	)
	if err != nil {
		return fmt.Errorf("insert schedule row: %w", err)
	}
	scheduleID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	fixed := map[string]int{}
	for _, d := range sched.Days {
		for pos, phys := range d.Preassigned {
			fixed[phys] += pos
		}
		for _, phys := range d.Admin {
			if phys != "" {
				fixed[phys] += model.AdminPoints
			}
		}
	}

	total := map[string]int{}
	daysWorking := map[string]int{}
	chargeDays := map[string]int{}
	cardiacDays := map[string]int{}
	for a, v := range fixed {
		total[a] = v
	}
	for _, da := range result.Days {
		for phys, pos := range da.Peel {
			total[phys] += pos
		}
		if da.Charge != "" {
			chargeDays[da.Charge]++
		}
		if da.Cardiac != "" {
			cardiacDays[da.Cardiac]++
		}
	}
	for _, d := range sched.Days {
		for _, phys := range d.Working() {
			daysWorking[phys]++
		}
	}

	for phys, t := range total {
		if phys == staff.Placeholder {
			continue
		}
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO points (
				schedule_id, doctor_id, fixed_points, total_points, cardiac, charge, days_working
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			scheduleID, phys, fixed[phys], t, cardiacDays[phys], chargeDays[phys], daysWorking[phys],
		); err != nil {
			return fmt.Errorf("insert points row for %s: %w", phys, err)
		}
	}

	for _, da := range result.Days {
		d := sched.DayByDate(da.Date)
		if d == nil {
			continue
		}

		labelByPhys := map[string]model.Label{}
		for label, phys := range d.Transitions {
			labelByPhys[phys] = label
		}
		if d.OnLate != "" {
			labelByPhys[d.OnLate] = model.LabelOnLate
		}
		if d.OnCall != "" {
			labelByPhys[d.OnCall] = model.LabelOnCall
		}

		for pos, phys := range d.Preassigned {
			role, ok := labelByPhys[phys]
			if !ok {
				role = model.LabelUnassigned
			}
			if err := insertAssignment(tx, scheduleID, phys, da.Date, pos, string(role), phys == da.Charge, phys == da.Cardiac); err != nil {
				return err
			}
		}
		for phys, pos := range da.Peel {
			if err := insertAssignment(tx, scheduleID, phys, da.Date, pos, string(model.LabelAssigned), phys == da.Charge, phys == da.Cardiac); err != nil {
				return err
			}
		}
		for _, phys := range d.Admin {
			if phys == "" {
				continue
			}
			if err := insertAssignment(tx, scheduleID, phys, da.Date, model.AdminPoints, string(model.LabelAdmin), false, false); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func insertAssignment(tx *sql.Tx, scheduleID int64, doctor, date string, points int, role string, isCharge, isCardiac bool) error {
	_, err := tx.Exec(`
		INSERT OR REPLACE INTO assignments (
			doctor_id, date, points, role, schedule_id, is_charge, is_cardiac
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doctor, date, points, role, scheduleID, isCharge, isCardiac)
	if err != nil {
		return fmt.Errorf("insert assignment %s/%s: %w", doctor, date, err)
	}
	return nil
}

func minDate() time.Time { return time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC) }
func maxDate() time.Time { return time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC) }
