package querybuilder

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidQuery = errors.New("invalid query")

// QueryBuilder assembles SQL with `?` placeholders. Callers rebind the
// placeholders for their driver.
type QueryBuilder interface {
	Select(cols ...string) QueryBuilder
	From(table string) QueryBuilder
	Into(table string) QueryBuilder
	Where(clause string, args ...interface{}) QueryBuilder

	Or(clause string, args ...interface{}) QueryBuilder
	And(clause string, args ...interface{}) QueryBuilder

	AndGroup(fn func(qb QueryBuilder)) QueryBuilder
	OrGroup(fn func(qb QueryBuilder)) QueryBuilder

	OrderBy(col string, asc bool) QueryBuilder
	Limit(n int) QueryBuilder

	Insert(cols ...string) QueryBuilder
	Values(values ...interface{}) QueryBuilder
	OnConflict(cols ...string) QueryBuilder
	SetExclude(cols ...string) QueryBuilder

	Update(table string) QueryBuilder
	Set(col string, value interface{}) QueryBuilder

	Build() (string, []interface{}, error)

	getConditions() []Condition
}

type assignment struct {
	col   string
	value interface{}
}

type queryBuilder struct {
	schema      string
	table       string
	cols        []string
	conditions  []Condition
	values      [][]interface{}
	assignments []assignment
	orderBy     []string
	limit       int
	isUpdate    bool
	onConflict  []string
	excludeCols []string
}

func NewQueryBuilder(schema string) QueryBuilder {
	return &queryBuilder{
		schema: schema,
	}
}

func (q *queryBuilder) getConditions() []Condition {
	return q.conditions
}

func (q *queryBuilder) Select(cols ...string) QueryBuilder {
	q.cols = append(q.cols, cols...)
	return q
}

func (q *queryBuilder) From(table string) QueryBuilder {
	q.table = table
	return q
}

func (q *queryBuilder) Into(table string) QueryBuilder {
	q.table = table
	return q
}

func (q *queryBuilder) Where(clause string, args ...interface{}) QueryBuilder {
	return q.And(clause, args...)
}

func (q *queryBuilder) And(clause string, args ...interface{}) QueryBuilder {
	q.conditions = append(q.conditions, Condition{condType: CondTypeAnd, clause: clause, args: args})
	return q
}

func (q *queryBuilder) Or(clause string, args ...interface{}) QueryBuilder {
	q.conditions = append(q.conditions, Condition{condType: CondTypeOr, clause: clause, args: args})
	return q
}

func (q *queryBuilder) group(condType CondType, fn func(qb QueryBuilder)) QueryBuilder {
	sub := NewQueryBuilder(q.schema)
	fn(sub)
	q.conditions = append(q.conditions, Condition{
		condType:   condType,
		subCond:    sub.getConditions(),
		isSubGroup: true,
	})
	return q
}

func (q *queryBuilder) AndGroup(fn func(qb QueryBuilder)) QueryBuilder {
	return q.group(CondTypeAnd, fn)
}

func (q *queryBuilder) OrGroup(fn func(qb QueryBuilder)) QueryBuilder {
	return q.group(CondTypeOr, fn)
}

func (q *queryBuilder) OrderBy(col string, asc bool) QueryBuilder {
	direction := "ASC"
	if !asc {
		direction = "DESC"
	}
	q.orderBy = append(q.orderBy, fmt.Sprintf("%s %s", col, direction))
	return q
}

func (q *queryBuilder) Limit(n int) QueryBuilder {
	q.limit = n
	return q
}

func (q *queryBuilder) Insert(cols ...string) QueryBuilder {
	q.cols = cols
	return q
}

func (q *queryBuilder) Values(values ...interface{}) QueryBuilder {
	q.values = append(q.values, values)
	return q
}

func (q *queryBuilder) OnConflict(cols ...string) QueryBuilder {
	q.onConflict = cols
	return q
}

// SetExclude updates the given columns from EXCLUDED on conflict.
func (q *queryBuilder) SetExclude(cols ...string) QueryBuilder {
	q.excludeCols = cols
	return q
}

func (q *queryBuilder) Update(table string) QueryBuilder {
	q.table = table
	q.isUpdate = true
	return q
}

// Set adds an assignment to an UPDATE. Assignments keep call order.
func (q *queryBuilder) Set(col string, value interface{}) QueryBuilder {
	q.assignments = append(q.assignments, assignment{col: col, value: value})
	return q
}

func (q *queryBuilder) Build() (string, []interface{}, error) {
	if q.table == "" {
		return "", nil, fmt.Errorf("%w: missing table", ErrInvalidQuery)
	}
	switch {
	case len(q.values) > 0:
		return q.buildInsert()
	case q.isUpdate:
		return q.buildUpdate()
	default:
		return q.buildSelect()
	}
}

func (q *queryBuilder) qualifiedTable() string {
	if q.schema == "" {
		return q.table
	}
	return q.schema + "." + q.table
}

func (q *queryBuilder) buildSelect() (string, []interface{}, error) {
	if len(q.cols) == 0 {
		return "", nil, fmt.Errorf("%w: no columns selected", ErrInvalidQuery)
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(q.cols, ", "), q.qualifiedTable())
	var args []interface{}

	if len(q.conditions) > 0 {
		condition, condArgs := buildCondition(q.conditions)
		query += " WHERE " + condition
		args = append(args, condArgs...)
	}
	if len(q.orderBy) > 0 {
		query += " ORDER BY " + strings.Join(q.orderBy, ", ")
	}
	if q.limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.limit)
	}
	return query, args, nil
}

func (q *queryBuilder) buildInsert() (string, []interface{}, error) {
	if len(q.cols) == 0 {
		return "", nil, fmt.Errorf("%w: no columns to insert", ErrInvalidQuery)
	}

	tuples := make([]string, 0, len(q.values))
	args := make([]interface{}, 0, len(q.values)*len(q.cols))
	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(q.cols)), ", ") + ")"
	for i, row := range q.values {
		if len(row) != len(q.cols) {
			return "", nil, fmt.Errorf("%w: row %d has %d values for %d columns", ErrInvalidQuery, i, len(row), len(q.cols))
		}
		tuples = append(tuples, placeholders)
		args = append(args, row...)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", q.qualifiedTable(), strings.Join(q.cols, ", "), strings.Join(tuples, ", "))

	if len(q.onConflict) > 0 {
		query += fmt.Sprintf(" ON CONFLICT (%s)", strings.Join(q.onConflict, ", "))
		if len(q.excludeCols) == 0 {
			query += " DO NOTHING"
		} else {
			sets := make([]string, len(q.excludeCols))
			for i, col := range q.excludeCols {
				sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", col, col)
			}
			query += " DO UPDATE SET " + strings.Join(sets, ", ")
		}
	}
	return query, args, nil
}

func (q *queryBuilder) buildUpdate() (string, []interface{}, error) {
	if len(q.assignments) == 0 {
		return "", nil, fmt.Errorf("%w: nothing to update", ErrInvalidQuery)
	}
	if len(q.conditions) == 0 {
		return "", nil, fmt.Errorf("%w: update without condition", ErrInvalidQuery)
	}

	sets := make([]string, len(q.assignments))
	args := make([]interface{}, 0, len(q.assignments))
	for i, a := range q.assignments {
		sets[i] = a.col + " = ?"
		args = append(args, a.value)
	}

	condition, condArgs := buildCondition(q.conditions)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", q.qualifiedTable(), strings.Join(sets, ", "), condition)
	return query, append(args, condArgs...), nil
}

func buildCondition(conditions []Condition) (string, []interface{}) {
	parts := make([]string, 0, len(conditions)*2)
	var args []interface{}

	for _, cond := range conditions {
		if cond.isSubGroup && len(cond.subCond) == 0 {
			continue
		}
		if len(parts) > 0 {
			parts = append(parts, cond.condType.ToString())
		}
		if cond.isSubGroup {
			clause, subArgs := buildCondition(cond.subCond)
			parts = append(parts, "("+clause+")")
			args = append(args, subArgs...)
			continue
		}
		parts = append(parts, cond.clause)
		args = append(args, cond.args...)
	}

	return strings.Join(parts, " "), args
}
