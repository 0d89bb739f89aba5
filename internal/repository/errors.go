package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cliffordobure/daycare-sub000/pkg/database"
)

// ErrDuplicate 唯一约束冲突
var ErrDuplicate = errors.New("记录已存在")

// IsNotFound 记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// translate 将驱动层唯一约束错误映射为 ErrDuplicate，其余原样返回
func translate(err error) error {
	if err == nil {
		return nil
	}
	if database.IsUniqueViolation(err) {
		if name := database.ConstraintName(err); name != "" {
			return fmt.Errorf("%w: %s", ErrDuplicate, name)
		}
		return ErrDuplicate
	}
	return err
}
