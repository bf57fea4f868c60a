// Package history keeps past validation runs in a buntdb file.
//
// Runs are stored as JSON under "run:<uuid>:data" and indexed by time.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/buntdb"
	"go.uber.org/zap"
	"nyiyui.ca/hato/kensa/rules"
)

// Memory opens a store that is never written to disk.
const Memory = ":memory:"

const timeIndex = "time"

var ErrNotFound = errors.New("run not found")

type Run struct {
	ID uuid.UUID `json:"id"`
	// Time the run was recorded, in UTC.
	Time time.Time `json:"time"`
	// Stamp is Time in µs since the epoch; it is what the time index sorts by.
	Stamp int64 `json:"stamp"`
	// Source is the path of the validated plan.
	Source  string       `json:"source"`
	Catalog string       `json:"catalog"`
	Result  rules.Result `json:"result"`
}

type Store struct {
	db *buntdb.DB
}

func Open(path string) (*Store, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	err = db.SetConfig(buntdb.Config{
		SyncPolicy:           buntdb.Always,
		AutoShrinkPercentage: 100,
		AutoShrinkMinSize:    32 * 1024 * 1024,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("configure history: %w", err)
	}
	err = db.ReplaceIndex(timeIndex, "run:*", buntdb.IndexJSON("stamp"))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("index history: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func key(id uuid.UUID) string {
	return fmt.Sprintf("run:%s:data", id)
}

// Put stores run. A zero ID or Time is filled in.
func (s *Store) Put(run Run) (Run, error) {
	if run.ID == (uuid.UUID{}) {
		run.ID = uuid.New()
	}
	if run.Time.IsZero() {
		run.Time = time.Now()
	}
	run.Time = run.Time.UTC()
	run.Stamp = run.Time.UnixMicro()
	data, err := json.Marshal(run)
	if err != nil {
		return Run{}, fmt.Errorf("marshal run: %w", err)
	}
	err = s.db.Update(func(tx *buntdb.Tx) error {
		_, replaced, err := tx.Set(key(run.ID), string(data), nil)
		if replaced {
			zap.S().Debugw("replaced run", "id", run.ID)
		}
		return err
	})
	if err != nil {
		return Run{}, fmt.Errorf("write run %s: %w", run.ID, err)
	}
	return run, nil
}

func (s *Store) Get(id uuid.UUID) (Run, error) {
	var run Run
	err := s.db.View(func(tx *buntdb.Tx) error {
		value, err := tx.Get(key(id))
		if errors.Is(err, buntdb.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(value), &run)
	})
	return run, err
}

// List returns all runs, oldest first. Entries that fail to parse are logged and skipped.
func (s *Store) List() ([]Run, error) {
	var runs []Run
	err := s.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend(timeIndex, func(key, value string) bool {
			if !strings.HasSuffix(key, ":data") {
				return true
			}
			var run Run
			if err := json.Unmarshal([]byte(value), &run); err != nil {
				zap.S().Errorw("unmarshalling failed",
					"key", key,
					"value", value)
				return true
			}
			runs = append(runs, run)
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// Delete removes a run.
func (s *Store) Delete(id uuid.UUID) error {
	return s.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(key(id))
		if errors.Is(err, buntdb.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return err
	})
}
