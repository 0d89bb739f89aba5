package repository

import (
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
)

// scopeColumns 各表用于租户过滤的列，空串表示该表不支持此维度
type scopeColumns struct {
	center     string
	class      string
	child      string // child_id = ANY
	childArray string // text[] 列，按交集匹配
	owner      string
	payer      string
	// user 条件可以包含多个 ?，均绑定同一个 user id
	user string
}

// applyScope 将 authz.Scope 转换为 WHERE 条件
func applyScope(db *gorm.DB, s authz.Scope, cols scopeColumns) *gorm.DB {
	if s.All {
		return db
	}
	if s.None {
		return db.Where("1 = 0")
	}
	if s.CenterID != "" {
		if cols.center == "" {
			return db.Where("1 = 0")
		}
		db = db.Where(cols.center+" = ?", s.CenterID)
	}

	if s.Restricted() {
		var conds []string
		var args []interface{}
		if len(s.ClassIDs) > 0 && cols.class != "" {
			conds = append(conds, cols.class+" IN ?")
			args = append(args, s.ClassIDs)
		}
		if len(s.ChildIDs) > 0 {
			switch {
			case cols.child != "":
				conds = append(conds, cols.child+" IN ?")
				args = append(args, s.ChildIDs)
			case cols.childArray != "":
				conds = append(conds, cols.childArray+" && ?")
				args = append(args, pq.Array(s.ChildIDs))
			}
		}
		if s.OwnerID != "" && cols.owner != "" {
			conds = append(conds, cols.owner+" = ?")
			args = append(args, s.OwnerID)
		}
		if s.PayerID != "" && cols.payer != "" {
			conds = append(conds, cols.payer+" = ?")
			args = append(args, s.PayerID)
		}
		if len(conds) == 0 {
			return db.Where("1 = 0")
		}
		db = db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	if s.UserID != "" {
		if cols.user == "" {
			return db.Where("1 = 0")
		}
		n := strings.Count(cols.user, "?")
		args := make([]interface{}, n)
		for i := range args {
			args[i] = s.UserID
		}
		db = db.Where(cols.user, args...)
	}
	return db
}

// activeOnly 默认隐藏已停用记录
func activeOnly(db *gorm.DB, table string, includeInactive bool) *gorm.DB {
	if includeInactive {
		return db
	}
	return db.Where(table+".is_active = ?", true)
}

// likePattern 转义 LIKE 通配符
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// Page 分页参数
type Page struct {
	Offset int
	Limit  int
}

// Unpaged 不分页（报表导出用）
var Unpaged = Page{Limit: -1}

func paginate(db *gorm.DB, p Page) *gorm.DB {
	if p.Limit < 0 {
		return db
	}
	if p.Limit == 0 {
		p.Limit = 20
	}
	return db.Offset(p.Offset).Limit(p.Limit)
}
