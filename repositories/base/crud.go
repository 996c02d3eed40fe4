package base

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// ===================================================================
// COMMON CRUD PATTERNS
// ===================================================================

// BaseCRUDRepository provides common CRUD implementation for entities keyed by a string ID
type BaseCRUDRepository[T any] struct {
	db        *gorm.DB
	tableName string
}

// NewBaseCRUDRepository creates a new base CRUD repository
func NewBaseCRUDRepository[T any](db *gorm.DB, tableName string) *BaseCRUDRepository[T] {
	return &BaseCRUDRepository[T]{
		db:        db,
		tableName: tableName,
	}
}

// DB returns the handle bound to ctx.
func (r *BaseCRUDRepository[T]) DB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// TableName returns the table this repository works on.
func (r *BaseCRUDRepository[T]) TableName() string {
	return r.tableName
}

// Create inserts entity using tx when provided, the base handle otherwise
func (r *BaseCRUDRepository[T]) Create(ctx context.Context, tx *gorm.DB, entity *T) error {
	if err := r.handle(ctx, tx).Create(entity).Error; err != nil {
		return WrapDBError("create", r.tableName, err)
	}
	return nil
}

// GetByID retrieves entity by ID with standard error handling
func (r *BaseCRUDRepository[T]) GetByID(ctx context.Context, id string, preloads ...string) (*T, error) {
	var entity T
	query := r.DB(ctx)
	for _, p := range preloads {
		query = query.Preload(p)
	}
	if err := query.Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, HandleDBError("get", r.tableName, fmt.Sprintf("ID %s", id), err)
	}
	return &entity, nil
}

// ListOrdered retrieves every entity in the given order
func (r *BaseCRUDRepository[T]) ListOrdered(ctx context.Context, orderBy string, scopes ...func(*gorm.DB) *gorm.DB) ([]T, error) {
	var entities []T
	query := r.DB(ctx).Model(new(T)).Scopes(scopes...)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if err := query.Find(&entities).Error; err != nil {
		return nil, WrapDBError("list", r.tableName, err)
	}
	return entities, nil
}

// ExistsCheck checks if entity with given ID exists
func (r *BaseCRUDRepository[T]) ExistsCheck(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	var count int64
	err := r.handle(ctx, tx).Model(new(T)).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, WrapDBError("check existence", r.tableName, err)
	}
	return count > 0, nil
}

// UpdateFields applies updates to the row with id and fails when nothing matched
func (r *BaseCRUDRepository[T]) UpdateFields(ctx context.Context, id string, updates map[string]interface{}) error {
	affected, err := r.UpdateFieldsWhere(ctx, id, updates, "")
	if err != nil {
		return err
	}
	if affected == 0 {
		return NewEntityNotFoundError(r.tableName, fmt.Sprintf("ID %s", id))
	}
	return nil
}

// UpdateFieldsWhere applies updates to the row with id when it also matches
// cond, and returns the number of rows changed. An empty cond matches on id only.
func (r *BaseCRUDRepository[T]) UpdateFieldsWhere(ctx context.Context, id string, updates map[string]interface{}, cond string, args ...interface{}) (int64, error) {
	query := r.DB(ctx).Model(new(T)).Where("id = ?", id)
	if cond != "" {
		query = query.Where(cond, args...)
	}
	result := query.Updates(updates)
	if result.Error != nil {
		return 0, WrapDBError("update", r.tableName, result.Error)
	}
	return result.RowsAffected, nil
}

// EnsureExists returns EntityNotFoundError when no row has the given id
func (r *BaseCRUDRepository[T]) EnsureExists(ctx context.Context, tx *gorm.DB, id string) error {
	exists, err := r.ExistsCheck(ctx, tx, id)
	if err != nil {
		return err
	}
	if !exists {
		return NewEntityNotFoundError(r.tableName, fmt.Sprintf("ID %s", id))
	}
	return nil
}

func (r *BaseCRUDRepository[T]) handle(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.DB(ctx)
}
