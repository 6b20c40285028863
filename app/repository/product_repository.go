package repository

import (
	"github.com/ManuelReschke/ShopFox/app/models"
	"gorm.io/gorm"
)

// productRepository implements the ProductRepository interface
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) GetActiveByIDs(ids []uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("id IN ? AND is_active = ?", ids, true).Find(&products).Error
	return products, err
}

// DecrementStock reserves stock at checkout. The guard in the WHERE
// clause keeps stock from going negative under concurrent checkouts;
// false means insufficient stock.
func (r *productRepository) DecrementStock(productID uint, quantity int) (bool, error) {
	tx := r.db.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// IncrementStock returns reserved stock after a cancellation.
func (r *productRepository) IncrementStock(productID uint, quantity int) error {
	return r.db.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", quantity)).Error
}
