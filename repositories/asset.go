package repositories

import (
	"context"
	"fmt"
	"time"

	"bloom-monitor/models"
	"bloom-monitor/repositories/base"
	"bloom-monitor/repositories/interfaces"

	"gorm.io/gorm"
)

// AssetRepository implements AssetRepositoryInterface
type AssetRepository struct {
	crud *base.BaseCRUDRepository[models.Asset]
}

// NewAssetRepository creates a new instance of AssetRepository
func NewAssetRepository(db *gorm.DB) interfaces.AssetRepositoryInterface {
	return &AssetRepository{
		crud: base.NewBaseCRUDRepository[models.Asset](db, "datacenter_assets"),
	}
}

// Create persists a new asset. Readings supplied with it are stored too.
func (r *AssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	return r.crud.Create(ctx, nil, asset)
}

// GetByID retrieves an asset with its readings in insertion order.
func (r *AssetRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	return r.load(r.crud.DB(ctx), id)
}

// AppendReading stores reading under assetID and returns the refreshed asset.
// All statements run on tx so the caller controls the commit.
func (r *AssetRepository) AppendReading(ctx context.Context, tx *gorm.DB, assetID string, reading *models.Reading) (*models.Asset, error) {
	if tx == nil {
		tx = r.crud.DB(ctx)
	} else {
		tx = tx.WithContext(ctx)
	}

	if err := r.crud.EnsureExists(ctx, tx, assetID); err != nil {
		return nil, err
	}

	reading.AssetID = assetID
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now()
	}
	if err := tx.Create(reading).Error; err != nil {
		return nil, base.WrapDBError("append reading", r.crud.TableName(), err)
	}

	if err := tx.Model(&models.Asset{}).Where("id = ?", assetID).
		Update("updated_at", reading.Timestamp).Error; err != nil {
		return nil, base.WrapDBError("touch", r.crud.TableName(), err)
	}

	return r.load(tx, assetID)
}

// ListWithLatestReading returns every asset with its latest reading, oldest asset first.
func (r *AssetRepository) ListWithLatestReading(ctx context.Context) ([]models.AssetWithLatest, error) {
	assets, err := r.crud.ListOrdered(ctx, "created_at ASC", readingsInOrder)
	if err != nil {
		return nil, err
	}

	result := make([]models.AssetWithLatest, 0, len(assets))
	for i := range assets {
		result = append(result, models.AssetWithLatest{
			Asset:         assets[i],
			LatestReading: assets[i].LatestReading(),
		})
	}
	return result, nil
}

func (r *AssetRepository) load(db *gorm.DB, id string) (*models.Asset, error) {
	var asset models.Asset
	if err := db.Scopes(readingsInOrder).Where("id = ?", id).First(&asset).Error; err != nil {
		return nil, base.HandleDBError("get", r.crud.TableName(), fmt.Sprintf("ID %s", id), err)
	}
	return &asset, nil
}
