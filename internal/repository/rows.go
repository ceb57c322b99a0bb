package repository

import (
	"context"

	"gorm.io/gorm"
)

// rawRows reads matching rows of model's table as column maps, in id order.
func rawRows(ctx context.Context, db *gorm.DB, model interface{}, query string, args ...interface{}) ([]map[string]interface{}, error) {
	rows := []map[string]interface{}{}
	err := db.WithContext(ctx).Model(model).Where(query, args...).Order("id ASC").Find(&rows).Error
	return rows, err
}

// rawRow reads one row by id, returning gorm.ErrRecordNotFound when absent.
func rawRow(ctx context.Context, db *gorm.DB, model interface{}, id uint) (map[string]interface{}, error) {
	rows, err := rawRows(ctx, db, model, "id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return rows[0], nil
}
