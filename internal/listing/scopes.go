package listing

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/omart/marketplace/internal/domain"
)

type Scope = func(*gorm.DB) *gorm.DB

// Public restricts a product query to what anonymous visitors may see.
func Public() Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ? AND is_available = ?", domain.StatusApproved, true)
	}
}

// Match applies search, category and price filters.
func Match(f Filters) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if f.Search != "" {
			pattern := "%" + EscapeLike(strings.ToLower(f.Search)) + "%"
			db = db.Where(
				`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR search_tags LIKE ? ESCAPE '\')`,
				pattern, pattern, pattern,
			)
		}
		if f.Category != "" {
			db = db.Where("category = ?", f.Category)
		}
		if f.MinPrice != nil {
			db = db.Where("price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			db = db.Where("price <= ?", *f.MaxPrice)
		}
		return db
	}
}

// Sort orders by the requested column, then newest first, then id.
func Sort(f Filters) Scope {
	return func(db *gorm.DB) *gorm.DB {
		col, ok := sortColumns[f.SortBy]
		if !ok {
			col = sortColumns[SortCreatedAt]
		}
		cols := []clause.OrderByColumn{{Column: clause.Column{Name: col}, Desc: f.SortOrder != "asc"}}
		if col != "created_at" {
			cols = append(cols, clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true})
		}
		cols = append(cols, clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true})
		return db.Order(clause.OrderBy{Columns: cols})
	}
}

func Paginate(f Filters) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(f.Offset()).Limit(f.Limit)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
