package persistence

import (
	"errors"
	"slices"
	"strings"

	"github.com/sahelbuild/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortColumns whitelists the columns a listing may be ordered by. The first
// one is used when the request names anything else.
type sortColumns []string

var (
	shipmentSort = sortColumns{"ordered_at", "id", "created_at", "updated_at", "code", "category",
		"origin", "supplier", "status", "total_quantity", "quantity_sold", "revenue"}
	stockUnitSort = sortColumns{"created_at", "id", "updated_at", "shipment_code", "unit_key", "quantity",
		"quantity_sold", "cost_per_unit", "wholesale_price", "retail_price", "status"}
	customerSort = sortColumns{"name", "id", "created_at", "updated_at", "code", "phone", "type", "status",
		"balance", "total_purchases", "total_paid", "credit_limit"}
	vehicleSort = sortColumns{"created_at", "id", "updated_at", "code", "plate_number", "partner_name",
		"total_bags", "sold_bags", "revenue", "status"}
	saleSort = sortColumns{"sale_date", "id", "created_at", "updated_at", "number", "customer_id",
		"total", "amount_paid", "amount_due", "payment_status"}
	paymentSort = sortColumns{"date", "id", "created_at", "updated_at", "number", "customer_id",
		"amount", "method"}
)

func (s sortColumns) pick(requested string) string {
	if requested = strings.TrimSpace(requested); slices.Contains(s, requested) {
		return requested
	}
	return s[0]
}

// descending is true unless dir reads "asc" in any case.
func descending(dir string) bool {
	return !strings.EqualFold(strings.TrimSpace(dir), "asc")
}

// listPage orders query by the filter's column and direction, through the
// whitelist, and cuts out the requested page. A filter without a page size
// returns every row.
func listPage(query *gorm.DB, f shared.Filter, cols sortColumns) *gorm.DB {
	query = query.Order(clause.OrderByColumn{
		Column: clause.Column{Name: cols.pick(f.OrderBy)},
		Desc:   descending(f.OrderDir),
	})
	if f.Page > 0 && f.PageSize > 0 {
		query = query.Offset((f.Page - 1) * f.PageSize).Limit(f.PageSize)
	}
	return query
}

// first loads the one row cond matches into dst; a miss is
// shared.ErrNotFound.
func first(db *gorm.DB, dst any, cond string, args ...any) error {
	err := db.Where(cond, args...).First(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// countPage counts every row scope matches, then loads the filter's page of
// them into dst. load, when given, only applies to the page query, which is
// where associations get preloaded.
func countPage(scope func() *gorm.DB, f shared.Filter, cols sortColumns, dst any, load ...func(*gorm.DB) *gorm.DB) (int64, error) {
	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return 0, err
	}
	query := listPage(scope(), f, cols)
	for _, l := range load {
		query = l(query)
	}
	return total, query.Find(dst).Error
}

// deleteByID deletes the row with id, or reports shared.ErrNotFound.
func deleteByID(db *gorm.DB, model any, id any) error {
	res := db.Delete(model, "id = ?", id)
	if res.Error == nil && res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return res.Error
}

func toDomain[M, D any](rows []M, conv func(*M) *D) []D {
	out := make([]D, len(rows))
	for i := range rows {
		out[i] = *conv(&rows[i])
	}
	return out
}
