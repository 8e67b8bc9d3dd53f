package domain

import (
	"errors"
)

var (
	// ErrUnauthenticated 无法解析请求方身份
	ErrUnauthenticated = errors.New("not logged in")
	// ErrInvalidArgument 请求参数不合法
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrLineNotFound 购物车中没有该商品
	ErrLineNotFound = errors.New("item not found in cart")
	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrUnavailable 存储或商品目录不可用，调用方可重试
	ErrUnavailable = errors.New("service unavailable")
	// ErrVersionConflict 购物车在读取后被其他请求修改
	ErrVersionConflict = errors.New("cart changed concurrently")
)

// ErrorKind 错误分类，供传输层映射状态码
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindUnauthenticated
	KindInvalidArgument
	KindNotFound
	KindInsufficientStock
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Kind 将任意错误归入分类
func Kind(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrLineNotFound):
		return KindNotFound
	case errors.Is(err, ErrInsufficientStock):
		return KindInsufficientStock
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrVersionConflict):
		return KindUnavailable
	default:
		return KindInternal
	}
}
