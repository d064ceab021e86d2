package service

import (
	"errors"
	"fmt"

	"github.com/d60-Lab/poster-threads/internal/repository"
	"github.com/d60-Lab/poster-threads/pkg/database"
)

var (
	// ErrValidation 输入不合法，调用方可修正，不重试
	ErrValidation = errors.New("validation failed")
	// ErrNotFound 资源不存在或不属于调用方，两者不做区分
	ErrNotFound = errors.New("not found")
	// ErrServiceUnavailable 数据库不可用
	ErrServiceUnavailable = errors.New("database service unavailable")
	// ErrUpstream 算法服务失败（仅图片代理路径）
	ErrUpstream = errors.New("upstream service error")
)

// ValidationError 携带可直接展示给调用方的原因
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// notFoundOr 将记录不存在映射为 ErrNotFound，其余错误原样包装
func notFoundOr(err error, what string) error {
	if repository.IsNotFound(err) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if errors.Is(err, database.ErrUnavailable) {
		return ErrServiceUnavailable
	}
	return fmt.Errorf("%s: %w", what, err)
}
