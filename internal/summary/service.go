// Package summary generates natural language call summaries and stores them on
// the Session or, failing that, the Transcription of the call.
package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/duhman/volterra-call-intelligence-sub001/internal/apperror"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/call"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/database"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/logging"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/prometheus"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/session"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/setting"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/transcription"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type CallReader interface {
	GetCallByID(ctx context.Context, callID string) (*call.Call, error)
}

type SessionStore interface {
	GetSessionByID(ctx context.Context, sessionID string) (*session.Session, error)
	UpdateSummary(ctx context.Context, sessionID string, summary string, updatedAt time.Time) error
}

type TranscriptionStore interface {
	GetTranscriptionByCallID(ctx context.Context, callID string) (*transcription.Transcription, error)
	UpdateSummary(ctx context.Context, callID string, summary string) error
}

type SettingReader interface {
	GetSetting(ctx context.Context, key string) (*setting.Setting, error)
}

// Completer turns a rendered prompt into a summary.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Analyzer is the offline fallback used when no Completer is configured.
type Analyzer interface {
	Summarize(text string) string
}

type SummaryService struct {
	Calls          CallReader
	Sessions       SessionStore
	Transcriptions TranscriptionStore
	Settings       SettingReader
	Analyzer       Analyzer
	// Completer is nil when no AI credential is configured.
	Completer Completer
	Now       func() time.Time
}

func NewService(
	calls CallReader,
	sessions SessionStore,
	transcriptions TranscriptionStore,
	settings SettingReader,
	analyzer Analyzer,
	completer Completer,
) *SummaryService {
	return &SummaryService{
		Calls:          calls,
		Sessions:       sessions,
		Transcriptions: transcriptions,
		Settings:       settings,
		Analyzer:       analyzer,
		Completer:      completer,
		Now:            time.Now,
	}
}

// GenerateSummary summarizes the transcript of callID. An empty customPrompt falls
// back to the summary_prompt setting and then to DefaultPrompt. With previewOnly
// nothing is written.
func (summaryService *SummaryService) GenerateSummary(
	ctx context.Context,
	callID string,
	customPrompt string,
	previewOnly bool,
) (string, error) {
	start := time.Now()

	details, sessionRecord, err := summaryService.loadCallDetails(ctx, callID)
	if err != nil {
		return "", err
	}

	transcript, err := summaryService.loadTranscript(ctx, callID, sessionRecord)
	if err != nil {
		return "", err
	}

	template := firstNonEmpty(customPrompt, summaryService.storedPrompt(ctx, callID), DefaultPrompt)
	rendered := RenderPrompt(template, details, transcript)

	source := prometheus.SourceAI

	var summary string

	if summaryService.Completer == nil {
		source = prometheus.SourceHeuristic
		summary = summaryService.Analyzer.Summarize(transcript) + heuristicSuffix
	} else {
		summary, err = summaryService.Completer.Complete(ctx, rendered)
		if err != nil {
			logging.Logger.Error("[GenerateSummary] Completion failed",
				zap.String("call_id", callID),
				zap.String("error", err.Error()),
			)

			return "", err
		}
	}

	prometheus.SummaryDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

	if previewOnly {
		logging.Logger.Info("[GenerateSummary] Preview summary generated",
			zap.String("call_id", callID),
			zap.String("source", source),
		)

		return summary, nil
	}

	if ctx.Err() != nil {
		logging.Logger.Warn("[GenerateSummary] Context canceled before persisting summary",
			zap.String("call_id", callID),
			zap.Error(ctx.Err()),
		)

		return "", ctx.Err()
	}

	summaryService.persist(ctx, callID, summary)

	return summary, nil
}

// loadCallDetails fetches the Call and the Session of callID in parallel and merges
// them. Session wins for direction and numbers, Call for agent and duration.
func (summaryService *SummaryService) loadCallDetails(
	ctx context.Context,
	callID string,
) (CallDetails, *session.Session, error) {
	group, groupCtx := errgroup.WithContext(ctx)

	var (
		callRecord    *call.Call
		sessionRecord *session.Session
	)

	group.Go(func() error {
		record, err := summaryService.Calls.GetCallByID(groupCtx, callID)
		if err != nil {
			if database.IsRecordNotFound(err) {
				return nil
			}

			return fmt.Errorf("failed to fetch call: %w", err)
		}

		callRecord = record

		return nil
	})

	group.Go(func() error {
		record, err := summaryService.Sessions.GetSessionByID(groupCtx, callID)
		if err != nil {
			if database.IsRecordNotFound(err) {
				return nil
			}

			return fmt.Errorf("failed to fetch session: %w", err)
		}

		sessionRecord = record

		return nil
	})

	err := group.Wait()
	if err != nil {
		logging.Logger.Error("[loadCallDetails] Failed to load call records",
			zap.String("call_id", callID),
			zap.String("error", err.Error()),
		)

		return CallDetails{}, nil, err
	}

	if callRecord == nil && sessionRecord == nil {
		return CallDetails{}, nil, apperror.NotFound(apperror.ResourceCall)
	}

	if callRecord == nil {
		callRecord = &call.Call{}
	}

	var sessionView session.Session
	if sessionRecord != nil {
		sessionView = *sessionRecord
	}

	details := CallDetails{
		Direction:       firstNonEmpty(sessionView.Direction, callRecord.Direction, defaultDir),
		FromNumber:      firstNonEmpty(sessionView.FromNumber, callRecord.FromNumber),
		ToNumber:        firstNonEmpty(sessionView.ToNumber, callRecord.ToNumber),
		AgentEmail:      firstNonEmpty(callRecord.AgentEmail, defaultAgent),
		DurationSeconds: firstNonEmpty(callRecord.DurationSeconds, 0),
	}

	return details, sessionRecord, nil
}

func (summaryService *SummaryService) loadTranscript(
	ctx context.Context,
	callID string,
	sessionRecord *session.Session,
) (string, error) {
	var fullText string

	record, err := summaryService.Transcriptions.GetTranscriptionByCallID(ctx, callID)
	switch {
	case err == nil:
		fullText = record.FullText
	case !database.IsRecordNotFound(err):
		return "", fmt.Errorf("failed to fetch transcription: %w", err)
	}

	var sessionTranscript string
	if sessionRecord != nil {
		sessionTranscript = sessionRecord.Transcript
	}

	transcript := firstNonEmpty(fullText, sessionTranscript)
	if transcript == "" {
		return "", apperror.NotFound(apperror.ResourceTranscript)
	}

	return transcript, nil
}

// storedPrompt returns the summary_prompt setting, or "" when it is unset or unreadable.
func (summaryService *SummaryService) storedPrompt(ctx context.Context, callID string) string {
	stored, err := summaryService.Settings.GetSetting(ctx, setting.KeySummaryPrompt)
	if err != nil {
		if !database.IsRecordNotFound(err) {
			logging.Logger.Warn("[storedPrompt] Failed to read summary prompt setting, using default",
				zap.String("call_id", callID),
				zap.String("error", err.Error()),
			)
		}

		return ""
	}

	return stored.Value
}

// persist writes summary to the Session, or to the Transcription when the Session
// write fails. Errors are logged only.
func (summaryService *SummaryService) persist(ctx context.Context, callID string, summary string) {
	err := summaryService.Sessions.UpdateSummary(ctx, callID, summary, summaryService.Now())
	if err == nil {
		prometheus.SummaryPersistTotal.WithLabelValues(prometheus.TargetSession).Inc()
		return
	}

	logging.Logger.Info("[persist] Session update failed, writing summary to transcription",
		zap.String("call_id", callID),
		zap.String("error", err.Error()),
	)

	err = summaryService.Transcriptions.UpdateSummary(ctx, callID, summary)
	if err != nil {
		prometheus.SummaryPersistTotal.WithLabelValues(prometheus.TargetNone).Inc()
		logging.Logger.Error("[persist] Failed to persist summary",
			zap.String("call_id", callID),
			zap.String("error", err.Error()),
		)

		return
	}

	prometheus.SummaryPersistTotal.WithLabelValues(prometheus.TargetTranscription).Inc()
}
