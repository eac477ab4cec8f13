package database

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"parent-reconciler/core/search"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLClient implements search.Client over collections mirrored into MySQL tables.
//
// Scroll cursors are emulated with keyset pagination on the query's sort columns followed
// by the profile's key column. Cursor state lives in this process and lapses when it is
// not advanced within its keep-alive.
type SQLClient struct {
	db       *gorm.DB
	profiles map[string]Profile
	now      func() time.Time

	mu      sync.Mutex
	cursors map[string]*cursor
}

type cursor struct {
	query   search.Query
	profile Profile
	where   clause.Expression
	order   []orderColumn
	fields  map[string]string
	after   []any
	done    bool
	expires time.Time
}

type orderColumn struct {
	name string
	desc bool
}

// NewSQLClient creates a client. Collections without a profile use DefaultProfile.
func NewSQLClient(db *gorm.DB, profiles ...Profile) *SQLClient {
	c := &SQLClient{
		db:       db,
		profiles: make(map[string]Profile, len(profiles)),
		now:      time.Now,
		cursors:  make(map[string]*cursor),
	}
	for _, p := range profiles {
		c.profiles[p.Index] = p
	}
	return c
}

func (c *SQLClient) profile(index string) (Profile, error) {
	if strings.Contains(index, ",") {
		return Profile{}, fmt.Errorf("%w: multiple collections %q are not supported", search.ErrQuery, index)
	}
	if p, ok := c.profiles[index]; ok {
		return p, nil
	}
	return DefaultProfile(index), nil
}

// Count returns the number of rows matching filter.
func (c *SQLClient) Count(ctx context.Context, index string, filter search.Filter) (int64, error) {
	p, err := c.profile(index)
	if err != nil {
		return 0, err
	}
	where, err := filterExpr(p, filter)
	if err != nil {
		return 0, err
	}

	tx := c.db.WithContext(ctx).Table(p.Table)
	if where != nil {
		tx = tx.Clauses(clause.Where{Exprs: []clause.Expression{where}})
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, classify("count "+p.Table, err)
	}
	return n, nil
}

// OpenScan fetches the first page. A page shorter than the page size carries no cursor id.
func (c *SQLClient) OpenScan(ctx context.Context, q search.Query, keepAlive time.Duration) (search.Page, error) {
	if err := q.Validate(); err != nil {
		return search.Page{}, err
	}
	if len(q.Aggregations) > 0 {
		return search.Page{}, fmt.Errorf("%w: aggregations are not supported by the sql driver", search.ErrQuery)
	}
	p, err := c.profile(q.Index)
	if err != nil {
		return search.Page{}, err
	}
	where, err := filterExpr(p, q.Filter)
	if err != nil {
		return search.Page{}, err
	}

	cur := newCursor(p, q, where)
	records, err := c.fetch(ctx, cur)
	if err != nil {
		return search.Page{}, err
	}

	page := search.Page{Records: records}
	if len(records) == q.PageSize {
		page.ScrollID = c.register(cur, keepAlive)
	}
	return page, nil
}

// AdvanceScan fetches the page after the cursor's last row.
func (c *SQLClient) AdvanceScan(ctx context.Context, scrollID string, keepAlive time.Duration) (search.Page, error) {
	cur, err := c.lookup(scrollID)
	if err != nil {
		return search.Page{}, err
	}
	page := search.Page{ScrollID: scrollID}
	if cur.done {
		return page, nil
	}

	records, err := c.fetch(ctx, cur)
	if err != nil {
		return search.Page{}, err
	}
	page.Records = records

	c.mu.Lock()
	cur.done = len(records) < cur.query.PageSize
	cur.expires = c.now().Add(keepAlive)
	c.mu.Unlock()
	return page, nil
}

// CloseScan forgets the cursor. Unknown ids are ignored.
func (c *SQLClient) CloseScan(_ context.Context, scrollID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cursors, scrollID)
	return nil
}

// Healthy pings the connection pool.
func (c *SQLClient) Healthy(ctx context.Context) (bool, error) {
	sqlDB, err := c.db.DB()
	if err != nil {
		return false, classify("health", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return false, classify("health", err)
	}
	return true, nil
}

// Verify returns the columns q needs that its table lacks.
func (c *SQLClient) Verify(ctx context.Context, q search.Query) ([]string, error) {
	p, err := c.profile(q.Index)
	if err != nil {
		return nil, err
	}
	fields := append([]string{}, q.Fields...)
	fields = append(fields, search.FilterFields(q.Filter)...)
	for _, s := range q.Sort {
		fields = append(fields, s.Field)
	}
	fields = append(fields, p.keyField())
	return MissingColumns(c.db.WithContext(ctx), p, fields)
}

func (c *SQLClient) register(cur *cursor, keepAlive time.Duration) string {
	id := uuid.NewString()
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	for k, other := range c.cursors {
		if now.After(other.expires) {
			delete(c.cursors, k)
		}
	}
	cur.expires = now.Add(keepAlive)
	c.cursors[id] = cur
	return id
}

func (c *SQLClient) lookup(scrollID string) (*cursor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.cursors[scrollID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown cursor %s", search.ErrCursorExpired, scrollID)
	}
	if c.now().After(cur.expires) {
		delete(c.cursors, scrollID)
		return nil, fmt.Errorf("%w: cursor %s lapsed", search.ErrCursorExpired, scrollID)
	}
	return cur, nil
}

func newCursor(p Profile, q search.Query, where clause.Expression) *cursor {
	cur := &cursor{
		query:   q,
		profile: p,
		where:   where,
		fields:  make(map[string]string),
	}

	seen := make(map[string]bool)
	for _, s := range q.Sort {
		col := p.Column(s.Field)
		if !seen[col] {
			seen[col] = true
			cur.order = append(cur.order, orderColumn{name: col, desc: s.Desc})
		}
		cur.fields[col] = s.Field
	}
	key := p.KeyColumn()
	if !seen[key] {
		cur.order = append(cur.order, orderColumn{name: key})
	}
	cur.fields[key] = p.keyField()

	for _, f := range q.Fields {
		cur.fields[p.Column(f)] = f
	}
	return cur
}

// columns returns the projection, or nil for every column.
func (cur *cursor) columns() []clause.Column {
	if len(cur.query.Fields) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	var cols []clause.Column
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			cols = append(cols, clause.Column{Name: name})
		}
	}
	for _, f := range cur.query.Fields {
		add(cur.profile.Column(f))
	}
	for _, o := range cur.order {
		add(o.name)
	}
	return cols
}

func (c *SQLClient) fetch(ctx context.Context, cur *cursor) ([]search.Record, error) {
	var exprs []clause.Expression
	if cur.where != nil {
		exprs = append(exprs, cur.where)
	}
	if cur.after != nil {
		exprs = append(exprs, afterExpr(cur.order, cur.after))
	}

	tx := c.db.WithContext(ctx).Table(cur.profile.Table)
	if cols := cur.columns(); cols != nil {
		tx = tx.Clauses(clause.Select{Columns: cols})
	}
	if len(exprs) > 0 {
		tx = tx.Clauses(clause.Where{Exprs: exprs})
	}
	orderBy := clause.OrderBy{}
	for _, o := range cur.order {
		orderBy.Columns = append(orderBy.Columns, clause.OrderByColumn{Column: clause.Column{Name: o.name}, Desc: o.desc})
	}

	var rows []map[string]any
	if err := tx.Clauses(orderBy).Limit(cur.query.PageSize).Find(&rows).Error; err != nil {
		return nil, classify("scan "+cur.profile.Table, err)
	}

	records := make([]search.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, cur.record(row))
	}
	if len(rows) > 0 {
		last := rows[len(rows)-1]
		cur.after = make([]any, len(cur.order))
		for i, o := range cur.order {
			cur.after[i] = last[o.name]
		}
	}
	return records, nil
}

func (cur *cursor) record(row map[string]any) search.Record {
	rec := make(search.Record, len(row))
	for col, v := range row {
		field, ok := cur.fields[col]
		if !ok {
			field = col
		}
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		rec.Set(field, v)
	}
	return rec
}

// afterExpr selects rows ordered strictly after values.
func afterExpr(order []orderColumn, values []any) clause.Expression {
	ors := make([]clause.Expression, 0, len(order))
	for i, o := range order {
		ands := make([]clause.Expression, 0, i+1)
		for j := 0; j < i; j++ {
			ands = append(ands, clause.Eq{Column: clause.Column{Name: order[j].name}, Value: values[j]})
		}
		col := clause.Column{Name: o.name}
		if o.desc {
			ands = append(ands, clause.Lt{Column: col, Value: values[i]})
		} else {
			ands = append(ands, clause.Gt{Column: col, Value: values[i]})
		}
		ors = append(ors, clause.And(ands...))
	}
	// A lone OR condition would be joined to the filter with OR.
	if len(ors) == 1 {
		return ors[0]
	}
	return clause.Or(ors...)
}

func filterExpr(p Profile, f search.Filter) (clause.Expression, error) {
	switch f := f.(type) {
	case nil:
		return nil, nil
	case search.AndFilter:
		exprs := make([]clause.Expression, 0, len(f.Filters))
		for _, child := range f.Filters {
			e, err := filterExpr(p, child)
			if err != nil {
				return nil, err
			}
			if e != nil {
				exprs = append(exprs, e)
			}
		}
		if len(exprs) == 0 {
			return nil, nil
		}
		return clause.And(exprs...), nil
	case search.TermFilter:
		return clause.Eq{Column: clause.Column{Name: p.Column(f.Field)}, Value: f.Value}, nil
	case search.TermsFilter:
		return clause.IN{Column: clause.Column{Name: p.Column(f.Field)}, Values: f.Values}, nil
	case search.RangeFilter:
		col := clause.Column{Name: p.Column(f.Field)}
		var exprs []clause.Expression
		if f.Gt != nil {
			exprs = append(exprs, clause.Gt{Column: col, Value: f.Gt})
		}
		if f.Gte != nil {
			exprs = append(exprs, clause.Gte{Column: col, Value: f.Gte})
		}
		if f.Lt != nil {
			exprs = append(exprs, clause.Lt{Column: col, Value: f.Lt})
		}
		if f.Lte != nil {
			exprs = append(exprs, clause.Lte{Column: col, Value: f.Lte})
		}
		if len(exprs) == 0 {
			return nil, fmt.Errorf("%w: range on %s has no bounds", search.ErrQuery, f.Field)
		}
		return clause.And(exprs...), nil
	case search.ExistsFilter:
		return clause.Expr{SQL: "? IS NOT NULL", Vars: []any{clause.Column{Name: p.Column(f.Field)}}}, nil
	case search.NotFilter:
		inner, err := filterExpr(p, f.Filter)
		if err != nil {
			return nil, err
		}
		if inner == nil {
			return nil, fmt.Errorf("%w: negation of an empty filter", search.ErrQuery)
		}
		return clause.Not(inner), nil
	default:
		return nil, fmt.Errorf("%w: unsupported filter %T", search.ErrQuery, f)
	}
}
