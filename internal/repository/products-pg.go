package repository

import (
	"gorm.io/gorm"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/domain"
)

type ProductsRepo struct {
}

func InitProductsRepo() *ProductsRepo {
	return &ProductsRepo{}
}

func (r *ProductsRepo) Create(tx *gorm.DB, product *domain.Products) error {
	return tx.Create(product).Error
}

func (r *ProductsRepo) Update(tx *gorm.DB, product *domain.Products) error {
	return tx.Save(product).Error
}

func (r *ProductsRepo) FindByProductID(tx *gorm.DB, productId string) (*domain.Products, error) {
	var product domain.Products
	return &product, tx.Where(&domain.Products{ProductID: productId}).First(&product).Error
}

func (r *ProductsRepo) ListEnabled(tx *gorm.DB) ([]domain.Products, error) {
	var products []domain.Products
	return products, tx.Where("enabled = ?", true).Order("product_id ASC").Find(&products).Error
}
