package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON column plumbing for the job sub-objects. Postgres stores these as
// jsonb; the sqlite driver used in tests stores them as text, so Scan must
// accept both []byte and string.

func scanJSON(src interface{}, dst interface{}) error {
	if src == nil {
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported json column source type %T", src)
	}
}

// RoleList is the ordered set of work-categories on a job.
type RoleList []JobRole

func (r RoleList) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	b, err := json.Marshal(r)
	return string(b), err
}

func (r *RoleList) Scan(src interface{}) error { return scanJSON(src, r) }

// PendingLineList is the job's backorder list.
type PendingLineList []PendingLine

func (p PendingLineList) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(p)
	return string(b), err
}

func (p *PendingLineList) Scan(src interface{}) error { return scanJSON(src, p) }

func (m *Measure) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *Measure) Scan(src interface{}) error { return scanJSON(src, m) }

func (o *Offer) Value() (driver.Value, error) {
	if o == nil {
		return nil, nil
	}
	b, err := json.Marshal(o)
	return string(b), err
}

func (o *Offer) Scan(src interface{}) error { return scanJSON(src, o) }

func (p *PaymentPlan) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(p)
	return string(b), err
}

func (p *PaymentPlan) Scan(src interface{}) error { return scanJSON(src, p) }

func (r *Rejection) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	b, err := json.Marshal(r)
	return string(b), err
}

func (r *Rejection) Scan(src interface{}) error { return scanJSON(src, r) }

func (s *ServiceInfo) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	return string(b), err
}

func (s *ServiceInfo) Scan(src interface{}) error { return scanJSON(src, s) }

func (f *Finance) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	b, err := json.Marshal(f)
	return string(b), err
}

func (f *Finance) Scan(src interface{}) error { return scanJSON(src, f) }

func (a *AssemblyInfo) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	b, err := json.Marshal(a)
	return string(b), err
}

func (a *AssemblyInfo) Scan(src interface{}) error { return scanJSON(src, a) }

func (p *ProductionInfo) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(p)
	return string(b), err
}

func (p *ProductionInfo) Scan(src interface{}) error { return scanJSON(src, p) }

func (l PurchaseOrderLineList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *PurchaseOrderLineList) Scan(src interface{}) error { return scanJSON(src, l) }

// JSONMap is a free-form metadata column used by job logs.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *JSONMap) Scan(src interface{}) error { return scanJSON(src, m) }
