package grpc

import (
	"context"

	"github.com/wyfcoding/velure/pkg/grpcclient"
	"google.golang.org/grpc"
)

// Client 购物车服务的类型化客户端，供内部服务调用
type Client struct {
	conn *grpc.ClientConn
}

// Dial 按配置连接购物车服务，消息编码固定为 JSON
func Dial(cfg grpcclient.ClientConfig, extra ...grpc.DialOption) (*Client, error) {
	cfg.ContentSubtype = codecName
	conn, err := grpcclient.NewClient(cfg, extra...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// Close 关闭底层连接
func (c *Client) Close() error { return c.conn.Close() }

// invoke 调用失败时不返回半填充的响应
func invoke[Resp any](ctx context.Context, c *Client, name string, req any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+name, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCart(ctx context.Context, req *GetCartRequest) (*CartReply, error) {
	return invoke[CartReply](ctx, c, "GetCart", req)
}

// AddItem 数量累加，不可重放
func (c *Client) AddItem(ctx context.Context, req *AddItemRequest) (*CartReply, error) {
	return invoke[CartReply](ctx, c, "AddItem", req, grpcclient.NoRetry())
}

func (c *Client) SetQuantity(ctx context.Context, req *SetQuantityRequest) (*CartReply, error) {
	return invoke[CartReply](ctx, c, "SetQuantity", req)
}

func (c *Client) RemoveItem(ctx context.Context, req *RemoveItemRequest) (*CartReply, error) {
	return invoke[CartReply](ctx, c, "RemoveItem", req)
}

func (c *Client) PurgeCarts(ctx context.Context, req *PurgeCartsRequest) (*PurgeCartsReply, error) {
	return invoke[PurgeCartsReply](ctx, c, "PurgeCarts", req, grpcclient.NoRetry())
}
