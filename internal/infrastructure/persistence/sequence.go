package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// nextSequence returns the sequence number following the highest value of
// column that starts with prefix. Codes are zero padded to a minimum width
// only, so longer codes rank first once a counter outgrows its padding.
func nextSequence(ctx context.Context, db *gorm.DB, model any, column, prefix string) (int, error) {
	col := clause.Column{Name: column}
	var codes []string
	err := db.WithContext(ctx).
		Model(model).
		Where("? LIKE ?", col, prefix+"%").
		Order(clause.OrderBy{Expression: clause.Expr{SQL: "LENGTH(?) DESC, ? DESC", Vars: []any{col, col}}}).
		Limit(1).
		Pluck(column, &codes).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	if len(codes) == 0 {
		return 1, nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(codes[0], prefix))
	if err != nil {
		return 0, fmt.Errorf("sequence %q: unexpected %s %q: %w", prefix, column, codes[0], err)
	}
	return n + 1, nil
}

// likePattern builds a case-insensitive LIKE pattern for LOWER(column)
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}
