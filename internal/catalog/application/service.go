package application

import (
	"context"

	"github.com/wyfcoding/velure/internal/catalog/domain"
)

// CatalogApplicationService 商品目录服务门面，整合命令服务和查询服务
type CatalogApplicationService struct {
	commandService *CatalogCommandService
	queryService   *CatalogQueryService
}

// NewCatalogApplicationService 创建商品目录服务门面实例
func NewCatalogApplicationService(cmd *CatalogCommandService, query *CatalogQueryService) *CatalogApplicationService {
	return &CatalogApplicationService{commandService: cmd, queryService: query}
}

// Commands 返回命令服务
func (s *CatalogApplicationService) Commands() *CatalogCommandService { return s.commandService }

// Queries 返回查询服务
func (s *CatalogApplicationService) Queries() *CatalogQueryService { return s.queryService }

func (s *CatalogApplicationService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	return s.queryService.GetProduct(ctx, id)
}

func (s *CatalogApplicationService) ListProducts(ctx context.Context, q ListProductsQuery) (*ProductPage, error) {
	return s.queryService.ListProducts(ctx, q)
}

func (s *CatalogApplicationService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	return s.commandService.CreateProduct(ctx, cmd)
}

func (s *CatalogApplicationService) UpdateProduct(ctx context.Context, cmd UpdateProductCommand) (*domain.Product, error) {
	return s.commandService.UpdateProduct(ctx, cmd)
}

func (s *CatalogApplicationService) DeleteProduct(ctx context.Context, id uint) error {
	return s.commandService.DeleteProduct(ctx, id)
}

func (s *CatalogApplicationService) ReplaceAll(ctx context.Context, cmds []CreateProductCommand) ([]*domain.Product, error) {
	return s.commandService.ReplaceAll(ctx, cmds)
}
