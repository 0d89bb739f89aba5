package service

import (
	apperrors "github.com/cliffordobure/daycare-sub000/pkg/errors"
)

// ── 业务哨兵错误 ──
// 编码规则：2xxxx 认证，3xxxx 资源不存在/冲突，4xxxx 业务校验

var (
	ErrInvalidCredentials = apperrors.Authentication(20001, "邮箱或密码错误")
	ErrAccountDisabled    = apperrors.Authentication(20002, "账号已停用")
	ErrTokenInvalid       = apperrors.Authentication(20003, "Token 无效或已过期")
	ErrTokenRevoked       = apperrors.Authentication(20004, "Token 已失效，请重新登录")
	ErrPasswordIncorrect  = apperrors.Validation(20005, "原密码错误")
	ErrCenterAmbiguous    = apperrors.Validation(20006, "该邮箱存在于多个中心，请提供 center_code")
)

var (
	ErrCenterNotFound       = apperrors.NotFound(30101, "中心不存在")
	ErrCenterCodeExists     = apperrors.Conflict(30102, "中心代码已存在")
	ErrUserNotFound         = apperrors.NotFound(30201, "用户不存在")
	ErrEmailExists          = apperrors.Conflict(30202, "该中心已存在相同邮箱的用户")
	ErrPhoneExists          = apperrors.Conflict(30203, "该中心已存在相同手机号的用户")
	ErrChildNotFound        = apperrors.NotFound(30301, "儿童不存在")
	ErrClassNotFound        = apperrors.NotFound(30401, "班级不存在")
	ErrAttendanceNotFound   = apperrors.NotFound(30501, "考勤记录不存在")
	ErrAttendanceExists     = apperrors.Conflict(30502, "该儿童当天已有考勤记录")
	ErrActivityNotFound     = apperrors.NotFound(30601, "活动不存在")
	ErrPaymentNotFound      = apperrors.NotFound(30701, "缴费记录不存在")
	ErrHealthRecordNotFound = apperrors.NotFound(30801, "健康记录不存在")
	ErrHealthRecordExists   = apperrors.Conflict(30802, "该儿童当天已有健康记录")
	ErrMessageNotFound      = apperrors.NotFound(30901, "消息不存在")
	ErrRecipientNotFound    = apperrors.NotFound(30902, "接收人不存在")
	ErrNotificationNotFound = apperrors.NotFound(31001, "通知不存在")
)

var (
	ErrCenterRequired      = apperrors.Validation(40001, "教师与家长必须绑定中心")
	ErrCenterIDRequired    = apperrors.Validation(40002, "请指定 center_id")
	ErrInvalidParents      = apperrors.Validation(40003, "家长必须存在、角色为 parent 且属于同一中心")
	ErrInvalidTeachers     = apperrors.Validation(40004, "教师必须存在、角色为 teacher 且属于同一中心")
	ErrClassCenterMismatch = apperrors.Validation(40005, "班级与儿童不属于同一中心")
	ErrChildNotInClass     = apperrors.Validation(40006, "存在不属于该班级的儿童")
	ErrInvalidChildren     = apperrors.Validation(40007, "儿童必须存在且属于同一中心")
	ErrInvalidPayer        = apperrors.Validation(40008, "付款人必须是该儿童的家长")
	ErrPaymentClosed       = apperrors.Validation(40009, "已取消或已退款的账单不能登记付款")
	ErrActivityClosed      = apperrors.Validation(40010, "已完成或已取消的活动不能修改")
	ErrInvalidRecipients   = apperrors.Validation(40011, "接收人必须存在且属于同一中心")
	ErrSelfDeactivate      = apperrors.Validation(40012, "不能停用自己的账号")
	ErrInvalidAdmin        = apperrors.Validation(40013, "中心管理员必须是 admin 角色")
	ErrDuplicateChild      = apperrors.Validation(40014, "批量考勤中存在重复的儿童")
)
