package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meethahouse/dessert-api/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormStore keeps desserts and orders in MySQL tables of the same shape as
// the Mongo documents.
type GormStore struct {
	db *gorm.DB
}

func ConnectMySQL(dsn string) (*GormStore, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	return NewGormStore(db), nil
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(&models.Dessert{}, &models.Order{})
}

func (s *GormStore) ListDesserts(ctx context.Context) ([]models.Dessert, error) {
	desserts := []models.Dessert{}
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&desserts).Error; err != nil {
		return nil, fmt.Errorf("find desserts: %w", err)
	}
	return desserts, nil
}

func (s *GormStore) GetDessert(ctx context.Context, id string) (*models.Dessert, error) {
	var dessert models.Dessert
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&dessert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find dessert %s: %w", id, err)
	}
	return &dessert, nil
}

func (s *GormStore) CreateDessert(ctx context.Context, dessert *models.Dessert) error {
	if err := s.db.WithContext(ctx).Create(dessert).Error; err != nil {
		return fmt.Errorf("insert dessert: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateDessertImage(ctx context.Context, id, imageURL string) (*models.Dessert, error) {
	result := s.db.WithContext(ctx).Model(&models.Dessert{}).Where("id = ?", id).Update("image_url", imageURL)
	if result.Error != nil {
		return nil, fmt.Errorf("update dessert %s: %w", id, result.Error)
	}
	return s.GetDessert(ctx, id)
}

func (s *GormStore) ReplaceDesserts(ctx context.Context, desserts []models.Dessert) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Dessert{}).Error; err != nil {
			return fmt.Errorf("clear desserts: %w", err)
		}
		if len(desserts) == 0 {
			return nil
		}
		if err := tx.Create(&desserts).Error; err != nil {
			return fmt.Errorf("insert desserts: %w", err)
		}
		return nil
	})
}

func (s *GormStore) CreateOrder(ctx context.Context, order *models.Order) error {
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateOrderRef
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *GormStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	return orders, nil
}

func (s *GormStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find order %s: %w", id, err)
	}
	return &order, nil
}

func (s *GormStore) UpdateOrderStatus(ctx context.Context, id string, update models.UpdateOrderRequest) (*models.Order, error) {
	fields := update.Fields()
	fields["updated_at"] = time.Now().UTC()

	result := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, fmt.Errorf("update order %s: %w", id, result.Error)
	}
	return s.GetOrder(ctx, id)
}

func (s *GormStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// isDuplicateKey also matches the raw MySQL 1062 text for connections opened
// without TranslateError.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Error 1062")
}
