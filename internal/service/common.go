package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/dto"
	"github.com/cliffordobure/daycare-sub000/internal/model"
	"github.com/cliffordobure/daycare-sub000/internal/realtime"
	"github.com/cliffordobure/daycare-sub000/internal/repository"
	apperrors "github.com/cliffordobure/daycare-sub000/pkg/errors"
)

// EventEmitter 实时事件出口（realtime.Hub 实现）
type EventEmitter interface {
	Emit(event string, data any, rooms ...realtime.Room)
}

type noopEmitter struct{}

func (noopEmitter) Emit(string, any, ...realtime.Room) {}

// core 各业务服务共享的依赖
type core struct {
	repo     *repository.Repository
	events   EventEmitter
	dispatch *Dispatcher
	logger   *zap.Logger
	now      func() time.Time
}

func newCore(repo *repository.Repository, events EventEmitter, dispatch *Dispatcher, logger *zap.Logger) *core {
	if events == nil {
		events = noopEmitter{}
	}
	return &core{repo: repo, events: events, dispatch: dispatch, logger: logger, now: time.Now}
}

// authorize 越权统一返回 ErrAccessDenied，不透露具体范围
func authorize(actor *authz.Actor, res authz.Resource, op authz.Op) error {
	if !authz.CanAccess(actor, res, op) {
		return apperrors.ErrAccessDenied
	}
	return nil
}

// lookupErr 记录不存在映射为 notFound，其余视为数据库错误
func (c *core) lookupErr(err error, notFound *apperrors.AppError, msg string, fields ...zap.Field) error {
	if repository.IsNotFound(err) {
		return notFound
	}
	return c.dbErr(msg, err, fields...)
}

func (c *core) dbErr(msg string, err error, fields ...zap.Field) error {
	c.logger.Error(msg, append(fields, zap.Error(err))...)
	return apperrors.Database(err)
}

// resolveCenter 确定写入目标中心：超级管理员必须显式指定，其他人固定为本中心
func resolveCenter(actor *authz.Actor, requested string) (string, error) {
	if actor.IsSuperAdmin() {
		if requested == "" {
			return "", ErrCenterIDRequired
		}
		return requested, nil
	}
	if requested != "" && requested != actor.CenterID {
		return "", apperrors.ErrAccessDenied
	}
	return actor.CenterID, nil
}

// centerFilter 仅超级管理员可按中心过滤
func centerFilter(actor *authz.Actor, requested string) string {
	if actor.IsSuperAdmin() {
		return requested
	}
	return ""
}

// includeInactive 仅管理员可查看已停用记录
func includeInactive(actor *authz.Actor, requested bool) bool {
	return requested && actor != nil && actor.Role == model.RoleAdmin
}

func pageOf(p dto.PaginationRequest) repository.Page {
	return repository.Page{Offset: p.GetOffset(), Limit: p.GetPageSize()}
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dto.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, invalidField(field, "日期格式必须为 YYYY-MM-DD")
	}
	return t, nil
}

func parseOptDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func invalidField(field, message string) error {
	return apperrors.ErrInvalidParams.WithFields(apperrors.FieldError{Field: field, Message: message})
}

// centerLocation 中心时区，未知时回退 UTC
func (c *core) centerLocation(ctx context.Context, centerID string) *time.Location {
	center, err := c.repo.Center.GetByID(ctx, centerID)
	if err != nil || center.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(center.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// recountClass 按在园儿童重新统计班级人数，失败只记录日志
func (c *core) recountClass(ctx context.Context, classID string) {
	if classID == "" {
		return
	}
	n, err := c.repo.Child.CountEnrolledInClass(ctx, classID)
	if err != nil {
		c.logger.Warn("统计班级人数失败", zap.String("class_id", classID), zap.Error(err))
		return
	}
	if err := c.repo.Class.SetEnrollment(ctx, classID, int(n)); err != nil {
		c.logger.Warn("更新班级人数失败", zap.String("class_id", classID), zap.Error(err))
	}
}

// recountCenter 按在园儿童重新统计中心入托人数并重算入托率
func (c *core) recountCenter(ctx context.Context, centerID string) {
	center, err := c.repo.Center.GetByID(ctx, centerID)
	if err != nil {
		c.logger.Warn("查询中心失败", zap.String("center_id", centerID), zap.Error(err))
		return
	}
	n, err := c.repo.Center.CountEnrolled(ctx, centerID)
	if err != nil {
		c.logger.Warn("统计入托人数失败", zap.String("center_id", centerID), zap.Error(err))
		return
	}
	center.CurrentOccupancy = int(n)
	center.Recompute()
	if err := c.repo.Center.Update(ctx, center); err != nil {
		c.logger.Warn("更新入托人数失败", zap.String("center_id", centerID), zap.Error(err))
	}
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
