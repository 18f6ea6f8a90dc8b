package sqlquery

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/yashpatel08/railsathi/internal/platform/apierr"
	"github.com/yashpatel08/railsathi/internal/platform/dbctx"
	"github.com/yashpatel08/railsathi/internal/platform/logger"
)

var errRollback = errors.New("read-only rollback")

// Runner executes operator-supplied SELECT statements.
type Runner interface {
	RunSelect(dbc dbctx.Context, query string, args ...interface{}) ([]map[string]interface{}, error)
}

type runner struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRunner(db *gorm.DB, baseLog *logger.Logger) Runner {
	return &runner{db: db, log: baseLog.With("repo", "SQLQueryRunner")}
}

// RunSelect executes query inside a transaction that is always rolled back.
func (r *runner) RunSelect(dbc dbctx.Context, query string, args ...interface{}) ([]map[string]interface{}, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	stmt, err := ValidateSelect(query)
	if err != nil {
		return nil, err
	}
	var rows []map[string]interface{}
	err = transaction.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Raw(stmt, args...).Scan(&rows).Error; err != nil {
			return err
		}
		return errRollback
	})
	if err != nil && !errors.Is(err, errRollback) {
		return nil, err
	}
	if rows == nil {
		rows = []map[string]interface{}{}
	}
	return rows, nil
}

// ValidateSelect returns the statement with a single trailing semicolon
// removed when it is one SELECT or WITH statement.
func ValidateSelect(query string) (string, error) {
	body := strings.TrimSpace(stripLeadingComments(query))
	if body == "" {
		return "", apierr.Validation("empty_query", "query is empty")
	}
	body = strings.TrimSpace(strings.TrimSuffix(body, ";"))
	if strings.Contains(body, ";") {
		return "", apierr.Validation("multiple_statements", "only a single statement is allowed")
	}
	keyword := strings.ToUpper(firstWord(body))
	if keyword != "SELECT" && keyword != "WITH" {
		return "", apierr.Validation("not_select", "only SELECT queries are allowed")
	}
	return body, nil
}

func stripLeadingComments(s string) string {
	for {
		s = strings.TrimLeft(s, " \t\r\n")
		switch {
		case strings.HasPrefix(s, "--"):
			i := strings.IndexByte(s, '\n')
			if i < 0 {
				return ""
			}
			s = s[i+1:]
		case strings.HasPrefix(s, "/*"):
			i := strings.Index(s, "*/")
			if i < 0 {
				return ""
			}
			s = s[i+2:]
		default:
			return s
		}
	}
}

func firstWord(s string) string {
	for i, r := range s {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return s[:i]
		}
	}
	return s
}
