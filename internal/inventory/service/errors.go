package service

import (
	"fmt"
)

// ValidationError 字段级校验失败，可由调用方修正后重试
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("参数无效: %s %s", e.Field, e.Reason)
}

// HierarchyViolationError 库位树结构规则被破坏（层级错误、父节点停用、成环等）
type HierarchyViolationError struct {
	Reason string
}

func (e *HierarchyViolationError) Error() string {
	return "层级约束冲突: " + e.Reason
}

// InsufficientStockError 出库数量超过当前可用库存
type InsufficientStockError struct {
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("可用库存不足: 需要%d, 可用%d", e.Requested, e.Available)
}

// ReferentialIntegrityError 删除/停用被引用数据时的前置检查失败
type ReferentialIntegrityError struct {
	Reason string
}

func (e *ReferentialIntegrityError) Error() string {
	return "存在关联数据: " + e.Reason
}

// NotFoundError 引用的记录不存在
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s不存在: %s", e.Resource, e.ID)
}
