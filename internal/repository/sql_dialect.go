package repository

import (
	"strings"

	"gorm.io/gorm"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// monthExprByDialect 构建按月分组表达式（YYYY-MM），兼容 sqlite 与 postgres。
func monthExprByDialect(dialect, column string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return "to_char(" + column + ", 'YYYY-MM')"
	default:
		return "strftime('%Y-%m', " + column + ")"
	}
}

// monthExpr 对当前连接构建按月分组表达式。
func monthExpr(db *gorm.DB, column string) string {
	return monthExprByDialect(dbDialectName(db), column)
}

// likeOperatorByDialect postgres 下使用不区分大小写的 ILIKE。
func likeOperatorByDialect(dialect string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return "ILIKE"
	default:
		return "LIKE"
	}
}

// likeOperator 对当前连接返回 LIKE 运算符。
func likeOperator(db *gorm.DB) string {
	return likeOperatorByDialect(dbDialectName(db))
}
