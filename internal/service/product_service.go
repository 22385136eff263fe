package service

import (
	"strings"

	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// ProductService 商品服务
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// ProductInput 商品创建/更新输入
type ProductInput struct {
	Name          string
	Description   string
	Price         string
	StockQuantity int
	Image         string
	IsActive      *bool
}

// ListPublic 面向店面的商品列表(仅上架商品)
func (s *ProductService) ListPublic(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.OnlyActive = true
	return s.productRepo.List(filter)
}

// ListAdmin 管理端商品列表
func (s *ProductService) ListAdmin(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.productRepo.List(filter)
}

// GetPublic 获取上架商品详情
func (s *ProductService) GetPublic(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Get 获取商品详情(管理端,不区分上架状态)
func (s *ProductService) Get(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(input ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrValidation
	}
	price, err := models.NewMoneyFromString(input.Price)
	if err != nil || !price.IsPositive() {
		return nil, ErrValidation
	}
	if input.StockQuantity < 0 {
		return nil, ErrValidation
	}

	product := &models.Product{
		Name:          name,
		Description:   strings.TrimSpace(input.Description),
		PriceAmount:   price,
		StockQuantity: input.StockQuantity,
		Image:         strings.TrimSpace(input.Image),
		IsActive:      true,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update 更新商品
func (s *ProductService) Update(id uint, input ProductInput) (*models.Product, error) {
	product, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		product.Name = name
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		product.Description = desc
	}
	if strings.TrimSpace(input.Price) != "" {
		price, err := models.NewMoneyFromString(input.Price)
		if err != nil || !price.IsPositive() {
			return nil, ErrValidation
		}
		product.PriceAmount = price
	}
	if input.StockQuantity >= 0 {
		product.StockQuantity = input.StockQuantity
	}
	if image := strings.TrimSpace(input.Image); image != "" {
		product.Image = image
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete 删除商品(软删除)
func (s *ProductService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.productRepo.Delete(id)
}
