package bunadapter

import (
	"context"
	"fmt"

	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
	"github.com/uptrace/bun"
)

// Adapter stores Casbin policy lines in the casbin_rules table through bun.
// The table is created by the auth migration.
type Adapter struct {
	db *bun.DB
}

var _ persist.Adapter = (*Adapter)(nil)

// NewAdapter creates an Adapter sharing the caller's *bun.DB pool.
func NewAdapter(db *bun.DB) (*Adapter, error) {
	if db == nil {
		return nil, fmt.Errorf("bun adapter requires a database")
	}
	return &Adapter{db: db}, nil
}

// LoadPolicy loads all policy lines into the model.
func (a *Adapter) LoadPolicy(m model.Model) error {
	var rules []CasbinRule
	if err := a.db.NewSelect().Model(&rules).Scan(context.Background()); err != nil {
		return fmt.Errorf("failed to load policy from adapter db: %w", err)
	}

	for _, r := range rules {
		line := r.toStringPolicy()
		if len(line) < 2 {
			continue // empty rule
		}
		if err := persist.LoadPolicyArray(line, m); err != nil {
			return fmt.Errorf("load policy line %s: %w", r.String(), err)
		}
	}
	return nil
}

// SavePolicy replaces every stored line with the model's current policy.
func (a *Adapter) SavePolicy(m model.Model) error {
	var rules []*CasbinRule
	for _, sec := range []string{"p", "g"} {
		for ptype, ast := range m[sec] {
			for _, rule := range ast.Policy {
				rules = append(rules, newCasbinRule(ptype, rule))
			}
		}
	}

	return a.db.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*CasbinRule)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return fmt.Errorf("truncate casbin rules: %w", err)
		}
		if len(rules) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rules).Exec(ctx); err != nil {
			return fmt.Errorf("insert casbin rules: %w", err)
		}
		return nil
	})
}

// AddPolicy persists a single line. Duplicates are ignored.
func (a *Adapter) AddPolicy(_ string, ptype string, rule []string) error {
	_, err := a.db.NewInsert().
		Model(newCasbinRule(ptype, rule)).
		On("CONFLICT DO NOTHING").
		Exec(context.Background())
	if err != nil {
		return fmt.Errorf("add casbin rule: %w", err)
	}
	return nil
}

// RemovePolicy deletes a single line.
func (a *Adapter) RemovePolicy(_ string, ptype string, rule []string) error {
	r := newCasbinRule(ptype, rule)
	_, err := a.db.NewDelete().
		Model((*CasbinRule)(nil)).
		Where("ptype = ?", r.Ptype).
		Where("v0 = ?", r.V0).
		Where("v1 = ?", r.V1).
		Where("v2 = ?", r.V2).
		Where("v3 = ?", r.V3).
		Where("v4 = ?", r.V4).
		Where("v5 = ?", r.V5).
		Exec(context.Background())
	if err != nil {
		return fmt.Errorf("remove casbin rule: %w", err)
	}
	return nil
}

// RemoveFilteredPolicy deletes lines matching the non-empty field values
// starting at fieldIndex.
func (a *Adapter) RemoveFilteredPolicy(_ string, ptype string, fieldIndex int, fieldValues ...string) error {
	query := a.db.NewDelete().Model((*CasbinRule)(nil)).Where("ptype = ?", ptype)

	columns := []string{"v0", "v1", "v2", "v3", "v4", "v5"}
	for i, value := range fieldValues {
		idx := fieldIndex + i
		if idx < 0 || idx >= len(columns) {
			return fmt.Errorf("field index %d out of range", idx)
		}
		if value == "" {
			continue
		}
		query = query.Where("? = ?", bun.Ident(columns[idx]), value)
	}

	if _, err := query.Exec(context.Background()); err != nil {
		return fmt.Errorf("remove filtered casbin rules: %w", err)
	}
	return nil
}

// CasbinRule is one policy ('p') or grouping ('g') line.
type CasbinRule struct {
	bun.BaseModel `bun:"table:casbin_rules,alias:cr"`

	Ptype string `bun:"ptype,pk,type:varchar(100),notnull"`
	V0    string `bun:"v0,pk,type:varchar(255)"` // subject (role or user)
	V1    string `bun:"v1,pk,type:varchar(255)"` // object type, or role for groupings
	V2    string `bun:"v2,pk,type:varchar(255)"` // action
	V3    string `bun:"v3,pk,type:varchar(255)"`
	V4    string `bun:"v4,pk,type:varchar(255)"`
	V5    string `bun:"v5,pk,type:varchar(255)"`
}

// NewPolicy builds a 'p' line. Used by migrations and the bootstrap command.
func NewPolicy(subject, object, action string) CasbinRule {
	return *newCasbinRule("p", []string{subject, object, action})
}

// NewGrouping builds a 'g' line assigning member to role.
func NewGrouping(member, role string) CasbinRule {
	return *newCasbinRule("g", []string{member, role})
}

func newCasbinRule(ptype string, rule []string) *CasbinRule {
	r := &CasbinRule{Ptype: ptype}
	fields := []*string{&r.V0, &r.V1, &r.V2, &r.V3, &r.V4, &r.V5}
	for i, v := range rule {
		if i >= len(fields) {
			break
		}
		*fields[i] = v
	}
	return r
}

func (r CasbinRule) toStringPolicy() []string {
	values := []string{r.V0, r.V1, r.V2, r.V3, r.V4, r.V5}
	last := -1
	for i, v := range values {
		if v != "" {
			last = i
		}
	}
	if r.Ptype == "" || last == -1 {
		return nil
	}
	return append([]string{r.Ptype}, values[:last+1]...)
}

func (r CasbinRule) String() string {
	return fmt.Sprintf("%v", r.toStringPolicy())
}
