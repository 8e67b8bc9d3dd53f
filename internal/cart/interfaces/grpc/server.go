package grpc

import (
	"context"
	"strings"

	"github.com/wyfcoding/velure/internal/cart/application"
	"github.com/wyfcoding/velure/internal/cart/domain"
	"github.com/wyfcoding/velure/pkg/middleware"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName gRPC 服务全名
const ServiceName = "velure.cart.v1.CartService"

// GetCartRequest 查询购物车
type GetCartRequest struct {
	OwnerID string `json:"ownerId,omitempty"`
}

// AddItemRequest 加入商品，Quantity 为空时加入 1 件
type AddItemRequest struct {
	OwnerID   string `json:"ownerId,omitempty"`
	ProductID uint   `json:"productId"`
	Quantity  *int   `json:"quantity,omitempty"`
	Currency  string `json:"currency"`
}

// SetQuantityRequest 修改数量
type SetQuantityRequest struct {
	OwnerID   string `json:"ownerId,omitempty"`
	ProductID uint   `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// RemoveItemRequest 移除商品
type RemoveItemRequest struct {
	OwnerID   string `json:"ownerId,omitempty"`
	ProductID uint   `json:"productId"`
}

// PurgeCartsRequest 清空全部购物车
type PurgeCartsRequest struct{}

// CartReply 购物车响应
type CartReply struct {
	Cart application.CartView `json:"cart"`
}

// PurgeCartsReply 清空结果
type PurgeCartsReply struct {
	Deleted int64 `json:"deleted"`
}

// CartServiceServer 购物车 gRPC 服务接口
type CartServiceServer interface {
	GetCart(context.Context, *GetCartRequest) (*CartReply, error)
	AddItem(context.Context, *AddItemRequest) (*CartReply, error)
	SetQuantity(context.Context, *SetQuantityRequest) (*CartReply, error)
	RemoveItem(context.Context, *RemoveItemRequest) (*CartReply, error)
	PurgeCarts(context.Context, *PurgeCartsRequest) (*PurgeCartsReply, error)
}

// Server 购物车 gRPC 服务实现
type Server struct {
	app *application.CartApplicationService
}

// NewServer 创建并注册 gRPC 服务
func NewServer(s *grpc.Server, app *application.CartApplicationService) *Server {
	srv := &Server{app: app}
	s.RegisterService(&serviceDesc, srv)
	return srv
}

// ownerID 默认使用调用方身份；管理员可代其他用户操作
func ownerID(ctx context.Context, requested string) string {
	id, ok := middleware.IdentityFromContext(ctx)
	if !ok {
		return ""
	}
	if requested = strings.TrimSpace(requested); requested != "" && id.IsAdmin() {
		return requested
	}
	return id.OwnerID
}

func (s *Server) GetCart(ctx context.Context, req *GetCartRequest) (*CartReply, error) {
	cart, err := s.app.Fetch(ctx, ownerID(ctx, req.OwnerID))
	if err != nil {
		return nil, toStatus(err)
	}
	return &CartReply{Cart: application.NewCartView(cart)}, nil
}

func (s *Server) AddItem(ctx context.Context, req *AddItemRequest) (*CartReply, error) {
	cart, err := s.app.AddItem(ctx, application.AddItemRequest{
		OwnerID:   ownerID(ctx, req.OwnerID),
		ProductID: req.ProductID,
		Quantity:  application.QuantityOrDefault(req.Quantity),
		Currency:  req.Currency,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &CartReply{Cart: application.NewCartView(cart)}, nil
}

func (s *Server) SetQuantity(ctx context.Context, req *SetQuantityRequest) (*CartReply, error) {
	cart, err := s.app.SetQuantity(ctx, application.SetQuantityRequest{
		OwnerID:   ownerID(ctx, req.OwnerID),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &CartReply{Cart: application.NewCartView(cart)}, nil
}

func (s *Server) RemoveItem(ctx context.Context, req *RemoveItemRequest) (*CartReply, error) {
	cart, err := s.app.RemoveItem(ctx, application.RemoveItemRequest{
		OwnerID:   ownerID(ctx, req.OwnerID),
		ProductID: req.ProductID,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &CartReply{Cart: application.NewCartView(cart)}, nil
}

func (s *Server) PurgeCarts(ctx context.Context, _ *PurgeCartsRequest) (*PurgeCartsReply, error) {
	id, ok := middleware.IdentityFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, domain.ErrUnauthenticated.Error())
	}
	if !id.IsAdmin() {
		return nil, status.Error(codes.PermissionDenied, "admin access required")
	}
	n, err := s.app.PurgeAll(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &PurgeCartsReply{Deleted: n}, nil
}

// toStatus 错误类别到 gRPC 状态码
func toStatus(err error) error {
	var code codes.Code
	switch domain.Kind(err) {
	case domain.KindUnauthenticated:
		code = codes.Unauthenticated
	case domain.KindInvalidArgument:
		code = codes.InvalidArgument
	case domain.KindNotFound:
		code = codes.NotFound
	case domain.KindInsufficientStock:
		code = codes.FailedPrecondition
	case domain.KindUnavailable:
		code = codes.Unavailable
	default:
		return status.Error(codes.Internal, "internal server error")
	}
	return status.Error(code, err.Error())
}

func unary[Req, Resp any](name string, call func(CartServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CartServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(CartServiceServer), ctx, req.(*Req))
			})
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetCart", CartServiceServer.GetCart),
		unary("AddItem", CartServiceServer.AddItem),
		unary("SetQuantity", CartServiceServer.SetQuantity),
		unary("RemoveItem", CartServiceServer.RemoveItem),
		unary("PurgeCarts", CartServiceServer.PurgeCarts),
	},
	Streams: []grpc.StreamDesc{},
}
