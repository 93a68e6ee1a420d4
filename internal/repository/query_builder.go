package repository

import (
	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

type QueryBuilder interface {
	BuildConditions(aliases map[string]string) exp.ExpressionList
}

// Column resolves a logical filter key to a qualified column, falling back to the key itself.
func Column(aliases map[string]string, key string) exp.IdentifierExpression {
	if alias, ok := aliases[key]; ok {
		return goqu.I(alias)
	}
	return goqu.I(key)
}
