package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/helixml/autocommit/domain/query"
)

// ApplyOptions builds a query.Query from options and applies it to a GORM session.
func ApplyOptions(db *gorm.DB, options ...query.Option) *gorm.DB {
	q := query.Build(options...)

	db = applyConditions(db, q)

	for _, ord := range q.Orders() {
		dir := "ASC"
		if !ord.Ascending() {
			dir = "DESC"
		}
		db = db.Order(fmt.Sprintf("%s %s", ord.Field(), dir))
	}

	if q.LimitValue() > 0 {
		db = db.Limit(q.LimitValue())
	}

	if q.OffsetValue() > 0 {
		db = db.Offset(q.OffsetValue())
	}

	return db
}

// ApplyConditions applies only WHERE conditions, for COUNT queries.
func ApplyConditions(db *gorm.DB, options ...query.Option) *gorm.DB {
	return applyConditions(db, query.Build(options...))
}

func applyConditions(db *gorm.DB, q query.Query) *gorm.DB {
	for _, cond := range q.Conditions() {
		db = db.Where(fmt.Sprintf("%s = ?", cond.Field()), cond.Value())
	}
	return db
}
