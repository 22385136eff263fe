package public

import (
	"errors"
	"strconv"

	"github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductListQuery 商品列表查询参数
type ProductListQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Search   string `form:"search"`
	InStock  bool   `form:"in_stock"`
}

// GetProducts 获取在售商品列表
func (h *Handler) GetProducts(c *gin.Context) {
	var query ProductListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	page, pageSize := shared.NormalizePagination(query.Page, query.PageSize)

	products, total, err := h.ProductService.ListPublic(repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   query.Search,
		InStock:  query.InStock,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "fetch products failed", err)
		return
	}

	response.SuccessWithPage(c, gin.H{"items": products}, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetProduct 获取单个在售商品
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "product id invalid", nil)
		return
	}

	product, err := h.ProductService.GetPublic(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "fetch product failed", err)
		return
	}

	response.Success(c, product)
}
