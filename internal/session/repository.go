package session

import (
	"context"
	"errors"
	"time"

	"github.com/duhman/volterra-call-intelligence-sub001/internal/database"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/logging"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidSessionResult = errors.New("invalid result type, it should be pointer to Session struct")

type SessionRepository struct {
	DBConn         *gorm.DB
	CircuitBreaker *gobreaker.CircuitBreaker[any]
}

func NewSessionRepository(dbConn *gorm.DB) *SessionRepository {
	cbSettings := database.GetCircuitBreakerSettings()

	return &SessionRepository{
		DBConn:         dbConn,
		CircuitBreaker: gobreaker.NewCircuitBreaker[any](cbSettings),
	}
}

func (sessionRepository *SessionRepository) GetSessionByID(ctx context.Context, sessionID string) (*Session, error) {
	result, err := sessionRepository.CircuitBreaker.Execute(func() (any, error) {
		var session Session

		err := sessionRepository.DBConn.WithContext(ctx).
			Where("id = ?", sessionID).
			First(&session).Error
		if err != nil {
			if !database.IsRecordNotFound(err) {
				logging.Logger.Error("[GetSessionByID] Failed to fetch session",
					zap.String("session_id", sessionID),
					zap.String("error", err.Error()),
				)
			}

			return nil, err
		}

		return &session, nil
	})
	if err != nil {
		return nil, err
	}

	session, ok := result.(*Session)
	if !ok {
		return nil, ErrInvalidSessionResult
	}

	return session, nil
}

// UpdateSummary stores summary on the session and stamps updated_at. It returns
// gorm.ErrRecordNotFound when no session has the given id.
func (sessionRepository *SessionRepository) UpdateSummary(
	ctx context.Context,
	sessionID string,
	summary string,
	updatedAt time.Time,
) error {
	_, err := sessionRepository.CircuitBreaker.Execute(func() (any, error) {
		result := sessionRepository.DBConn.WithContext(ctx).
			Model(&Session{}).
			Where("id = ?", sessionID).
			Updates(map[string]any{
				"summary":    summary,
				"updated_at": updatedAt,
			})
		if result.Error != nil {
			logging.Logger.Error("[UpdateSummary] Failed to update session summary",
				zap.String("session_id", sessionID),
				zap.String("error", result.Error.Error()),
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
