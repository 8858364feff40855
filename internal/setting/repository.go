package setting

import (
	"context"
	"errors"

	"github.com/duhman/volterra-call-intelligence-sub001/internal/database"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/logging"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInvalidSettingResult = errors.New("invalid result type, it should be pointer to Setting struct")

type SettingRepository struct {
	DBConn         *gorm.DB
	CircuitBreaker *gobreaker.CircuitBreaker[any]
}

func NewSettingRepository(dbConn *gorm.DB) *SettingRepository {
	cbSettings := database.GetCircuitBreakerSettings()

	return &SettingRepository{
		DBConn:         dbConn,
		CircuitBreaker: gobreaker.NewCircuitBreaker[any](cbSettings),
	}
}

func (settingRepository *SettingRepository) GetSetting(ctx context.Context, key string) (*Setting, error) {
	result, err := settingRepository.CircuitBreaker.Execute(func() (any, error) {
		var setting Setting

		err := settingRepository.DBConn.WithContext(ctx).
			Where("key = ?", key).
			First(&setting).Error
		if err != nil {
			if !database.IsRecordNotFound(err) {
				logging.Logger.Error("[GetSetting] Failed to fetch setting",
					zap.String("key", key),
					zap.String("error", err.Error()),
				)
			}

			return nil, err
		}

		return &setting, nil
	})
	if err != nil {
		return nil, err
	}

	setting, ok := result.(*Setting)
	if !ok {
		return nil, ErrInvalidSettingResult
	}

	return setting, nil
}

func (settingRepository *SettingRepository) UpsertSetting(ctx context.Context, setting *Setting) error {
	_, err := settingRepository.CircuitBreaker.Execute(func() (any, error) {
		err := settingRepository.DBConn.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).
			Create(setting).Error
		if err != nil {
			logging.Logger.Error("[UpsertSetting] Failed to upsert setting",
				zap.String("key", setting.Key),
				zap.String("error", err.Error()),
			)

			return nil, err
		}

		return nil, nil
	})

	return err
}
