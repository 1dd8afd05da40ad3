package server

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/example/goshop/internal/datamodels/address"
	"github.com/example/goshop/internal/datamodels/product"
)

// addressRequest 地址创建/更新请求体
type addressRequest struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (r *addressRequest) toModel() (*address.Address, error) {
	if r.FullName == "" || r.Line1 == "" || r.City == "" || r.Country == "" {
		return nil, errors.New("full_name, line1, city and country are required")
	}
	return &address.Address{
		FullName:   r.FullName,
		Phone:      r.Phone,
		Line1:      r.Line1,
		Line2:      r.Line2,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
	}, nil
}

// productRequest 商品创建/更新请求体，价格用字符串收，转 decimal 校验
type productRequest struct {
	CategoryID  int64  `json:"category_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Stock       int64  `json:"stock"`
	Status      int    `json:"status"`
}

// applyTo 把请求内容写入商品模型；isUpdate 时零值字段保持原样
func (r *productRequest) applyTo(p *product.Product, isUpdate bool) error {
	if !isUpdate || r.Name != "" {
		if r.Name == "" {
			return errors.New("name is required")
		}
		p.Name = r.Name
	}
	if !isUpdate || r.CategoryID > 0 {
		if r.CategoryID <= 0 {
			return errors.New("category_id is required")
		}
		p.CategoryID = r.CategoryID
	}
	if r.Slug != "" {
		p.Slug = r.Slug
	}
	if r.Description != "" || !isUpdate {
		p.Description = r.Description
	}
	if !isUpdate || r.Price != "" {
		price, err := decimal.NewFromString(r.Price)
		if err != nil || price.IsNegative() {
			return errors.New("invalid price")
		}
		p.Price = price.Round(2)
	}
	if !isUpdate {
		if r.Stock < 0 {
			return errors.New("stock must be non-negative")
		}
		p.Stock = r.Stock
	}
	if r.Status == product.StatusOffline || r.Status == product.StatusOnline {
		p.Status = r.Status
	}
	return nil
}
