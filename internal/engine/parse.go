package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nao1215/sheetsql/domain/model"
	"github.com/xwb1989/sqlparser"
)

var (
	fullJoinPattern     = regexp.MustCompile(`(?i)\bfull\s+(outer\s+)?join\b`)
	straightJoinPattern = regexp.MustCompile(`(?i)\bstraight_join\b`)
)

// concatOperator stands in for || in the rewritten text. The MySQL grammar
// reads || as OR; ^ binds tighter than arithmetic just like || in SQL.
const concatOperator = "^"

// Parse parses one SQL statement. The MySQL grammar lacks two operators, so
// the text is rewritten first: FULL OUTER JOIN becomes STRAIGHT_JOIN, which
// the planner reads back as a full outer join, and || becomes ^, which the
// planner reads back as concatenation. Literal STRAIGHT_JOIN and ^ are rejected.
func Parse(query string) (sqlparser.Statement, error) {
	rewritten, err := rewrite(query)
	if err != nil {
		return nil, err
	}
	stmt, err := sqlparser.Parse(rewritten)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrSyntax, err)
	}
	return stmt, nil
}

// rewrite applies the FULL JOIN and || rewrites outside quoted text only.
func rewrite(query string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(query))

	flush := func(segment string) error {
		if straightJoinPattern.MatchString(segment) {
			return model.PlanErrorf("STRAIGHT_JOIN is not supported")
		}
		if strings.Contains(segment, concatOperator) {
			return model.PlanErrorf("operator %s is not supported", concatOperator)
		}
		segment = strings.ReplaceAll(segment, "||", concatOperator)
		sb.WriteString(fullJoinPattern.ReplaceAllString(segment, "straight_join"))
		return nil
	}

	start := 0
	for i := 0; i < len(query); i++ {
		quote := query[i]
		if quote != '\'' && quote != '"' && quote != '`' {
			continue
		}
		if err := flush(query[start:i]); err != nil {
			return "", err
		}
		end := i + 1
		for end < len(query) {
			if query[end] == '\\' && quote != '`' {
				end += 2
				continue
			}
			if query[end] == quote {
				if end+1 < len(query) && query[end+1] == quote {
					end += 2
					continue
				}
				break
			}
			end++
		}
		end = min(end+1, len(query))
		sb.WriteString(query[i:end])
		start = end
		i = end - 1
	}
	if err := flush(query[start:]); err != nil {
		return "", err
	}
	return sb.String(), nil
}
