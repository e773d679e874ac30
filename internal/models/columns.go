package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/TigerK9/CSCI-432-Final/internal/motion"
)

// JSON-serialized column types. GORM persists custom columns through
// driver.Valuer / sql.Scanner, which keeps the meeting row a single
// record on both sqlite and postgres.

// StringList stores an ordered list of strings (the agenda) as JSON.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// UUIDList stores a set of user IDs (the participants) as JSON.
type UUIDList []uuid.UUID

func (l UUIDList) Value() (driver.Value, error) {
	if l == nil {
		l = UUIDList{}
	}
	return json.Marshal(l)
}

func (l *UUIDList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// Contains reports membership.
func (l UUIDList) Contains(id uuid.UUID) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// MotionQueue stores the meeting's ordered motion list as JSON. The
// queue is always written back as a whole, never element-by-element.
type MotionQueue []motion.Motion

func (q MotionQueue) Value() (driver.Value, error) {
	if q == nil {
		q = MotionQueue{}
	}
	return json.Marshal(q)
}

func (q *MotionQueue) Scan(src interface{}) error {
	return scanJSON(src, q)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	}
	return fmt.Errorf("unsupported column type %T", src)
}
