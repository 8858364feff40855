package transcription

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

var ErrInvalidTranscriptionResult = errors.New("invalid result type, it should be pointer to Transcription struct")

type TranscriptionRepository struct {
	DBConn         *gorm.DB
	CircuitBreaker *gobreaker.CircuitBreaker[any]
}

func NewTranscriptionRepository(dbConn *gorm.DB) *TranscriptionRepository {
	cbSettings := database.GetCircuitBreakerSettings()

	return &TranscriptionRepository{
		DBConn:         dbConn,
		CircuitBreaker: gobreaker.NewCircuitBreaker[any](cbSettings),
	}
}

func (transcriptionRepository *TranscriptionRepository) GetTranscriptionByCallID(
	ctx context.Context,
	callID string,
) (*Transcription, error) {
	result, err := transcriptionRepository.CircuitBreaker.Execute(func() (any, error) {
		var transcription Transcription

		err := transcriptionRepository.DBConn.WithContext(ctx).
			Where("call_id = ?", callID).
			First(&transcription).Error
		if err != nil {
			if !database.IsRecordNotFound(err) {
				logging.Logger.Error("[GetTranscriptionByCallID] Failed to fetch transcription",
					zap.String("call_id", callID),
					zap.String("error", err.Error()),
				)
			}

			return nil, err
		}

		return &transcription, nil
	})
	if err != nil {
		return nil, err
	}

	transcription, ok := result.(*Transcription)
	if !ok {
		return nil, ErrInvalidTranscriptionResult
	}

	return transcription, nil
}

// UpsertTranscription inserts transcription, replacing the row already held for its call.
func (transcriptionRepository *TranscriptionRepository) UpsertTranscription(
	ctx context.Context,
	transcription *Transcription,
) error {
	_, err := transcriptionRepository.CircuitBreaker.Execute(func() (any, error) {
		err := transcriptionRepository.DBConn.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "call_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"id", "full_text", "summary", "speaker_labels"}),
			}).
			Create(transcription).Error
		if err != nil {
			logging.Logger.Error("[UpsertTranscription] Failed to upsert transcription",
				zap.String("call_id", transcription.CallID),
				zap.String("error", err.Error()),
			)

			return nil, err
		}

		return nil, nil
	})

	return err
}

// UpdateSummary stores summary on the transcription of callID. It returns
// gorm.ErrRecordNotFound when the call has no transcription.
func (transcriptionRepository *TranscriptionRepository) UpdateSummary(
	ctx context.Context,
	callID string,
	summary string,
) error {
	_, err := transcriptionRepository.CircuitBreaker.Execute(func() (any, error) {
		result := transcriptionRepository.DBConn.WithContext(ctx).
			Model(&Transcription{}).
			Where("call_id = ?", callID).
			Update("summary", summary)
		if result.Error != nil {
			logging.Logger.Error("[UpdateSummary] Failed to update transcription summary",
				zap.String("call_id", callID),
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

func (transcriptionRepository *TranscriptionRepository) DeleteTranscriptionsByCallID(
	ctx context.Context,
	callID string,
) error {
	_, err := transcriptionRepository.CircuitBreaker.Execute(func() (any, error) {
		err := transcriptionRepository.DBConn.WithContext(ctx).
			Where("call_id = ?", callID).
			Delete(&Transcription{}).Error
		if err != nil {
			logging.Logger.Error("[DeleteTranscriptionsByCallID] Failed to delete transcriptions",
				zap.String("call_id", callID),
				zap.String("error", err.Error()),
			)

			return nil, err
		}

		return nil, nil
	})

	return err
}
