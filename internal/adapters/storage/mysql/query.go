package mysql

import (
	"database/sql"
	"errors"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
)

// errDuplicateEntry is the MySQL server error for a UNIQUE key violation.
const errDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var myErr *gomysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == errDuplicateEntry
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// where accumulates AND-ed conditions and their arguments.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// containsPattern builds a LIKE pattern matching s anywhere, with LIKE
// wildcards in s escaped.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

// orderBy renders the ORDER BY and LIMIT clauses of req. columns maps each
// allow-listed sort field to its column; the field has already been validated.
func orderBy(columns map[string]string, req domain.PageRequest) (string, []any) {
	col, ok := columns[req.Sort.Field]
	if !ok {
		col = "id"
	}
	dir := "ASC"
	if req.Sort.Direction == domain.Desc {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir + ", id ASC LIMIT ? OFFSET ?", []any{req.Size, req.Offset()}
}

func count(row *sql.Row) (int64, error) {
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
