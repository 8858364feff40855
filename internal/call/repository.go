package call

import (
	"context"
	"errors"

	"github.com/duhman/volterra-call-intelligence-sub001/internal/database"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/logging"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultListLimit = 50

var (
	ErrInvalidCallResult      = errors.New("invalid result type, it should be pointer to Call struct")
	ErrInvalidCallSliceResult = errors.New("invalid result type, it should be slice of Call")
)

type CallRepository struct {
	DBConn         *gorm.DB
	CircuitBreaker *gobreaker.CircuitBreaker[any]
}

func NewCallRepository(dbConn *gorm.DB) *CallRepository {
	cbSettings := database.GetCircuitBreakerSettings()

	return &CallRepository{
		DBConn:         dbConn,
		CircuitBreaker: gobreaker.NewCircuitBreaker[any](cbSettings),
	}
}

// GetCallByID retrieves a Call by its id.
func (callRepository *CallRepository) GetCallByID(ctx context.Context, callID string) (*Call, error) {
	result, err := callRepository.CircuitBreaker.Execute(func() (any, error) {
		var call Call

		err := callRepository.DBConn.WithContext(ctx).
			Where("id = ?", callID).
			First(&call).Error
		if err != nil {
			if !database.IsRecordNotFound(err) {
				logging.Logger.Error("[GetCallByID] Failed to fetch call - may cause circuit breaker trip",
					zap.String("call_id", callID),
					zap.String("error", err.Error()),
					zap.Bool("is_context_error", ctx.Err() != nil),
				)
			}

			return nil, err
		}

		return &call, nil
	})
	if err != nil {
		return nil, err
	}

	call, ok := result.(*Call)
	if !ok {
		return nil, ErrInvalidCallResult
	}

	return call, nil
}

// ListCalls returns calls newest first.
func (callRepository *CallRepository) ListCalls(ctx context.Context, filter Filter) ([]Call, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	result, err := callRepository.CircuitBreaker.Execute(func() (any, error) {
		var calls []Call

		query := callRepository.DBConn.WithContext(ctx).Model(&Call{})
		if filter.Status != "" {
			query = query.Where("status = ?", string(filter.Status))
		}

		err := query.Order("created_at DESC").Limit(limit).Find(&calls).Error
		if err != nil {
			logging.Logger.Error("[ListCalls] Failed to list calls",
				zap.String("status", string(filter.Status)),
				zap.String("error", err.Error()),
			)

			return nil, err
		}

		return calls, nil
	})
	if err != nil {
		return nil, err
	}

	calls, ok := result.([]Call)
	if !ok {
		return nil, ErrInvalidCallSliceResult
	}

	return calls, nil
}

// UpdateCall applies updates to the Call identified by callID. A missing row is
// reported as gorm.ErrRecordNotFound.
func (callRepository *CallRepository) UpdateCall(ctx context.Context, callID string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}

	_, err := callRepository.CircuitBreaker.Execute(func() (any, error) {
		// Check context before database operation
		if ctx.Err() != nil {
			logging.Logger.Warn("[UpdateCall] Context canceled before DB operation",
				zap.String("call_id", callID),
				zap.Error(ctx.Err()),
			)

			return nil, ctx.Err()
		}

		result := callRepository.DBConn.WithContext(ctx).
			Model(&Call{}).
			Where("id = ?", callID).
			Updates(updates)
		if result.Error != nil {
			logging.Logger.Error("[UpdateCall] Failed to update call - may cause circuit breaker trip",
				zap.String("call_id", callID),
				zap.Any("updates", updates),
				zap.String("error", result.Error.Error()),
				zap.Bool("is_context_error", ctx.Err() != nil),
			)

			return nil, result.Error
		}

		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}

		return nil, nil
	})

	return err
}
