package reprocess

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/duhman/volterra-call-intelligence-sub001/internal/apperror"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/call"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/transcription"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errDatabaseDown = errors.New("database down")

type fakeCalls struct {
	calls map[string]*call.Call
	// failOn makes UpdateCall fail when the update sets this status.
	failOn call.Status
	writes int
}

func (f *fakeCalls) UpdateCall(_ context.Context, callID string, updates map[string]any) error {
	record, ok := f.calls[callID]
	if !ok {
		return gorm.ErrRecordNotFound
	}

	if status, ok := updates["status"].(string); ok && call.Status(status) == f.failOn {
		return errDatabaseDown
	}

	f.writes++

	for column, value := range updates {
		switch column {
		case "status":
			record.Status = call.Status(value.(string))
		case "duration_seconds":
			record.DurationSeconds = value.(int)
		case "hubspot_call_id":
			record.HubspotCallID = nil
		case "hubspot_synced_at":
			record.HubspotSyncedAt = nil
		}
	}

	return nil
}

type fakeTranscriptions struct {
	byCall    map[string]*transcription.Transcription
	insertErr error
	deleteErr error
}

func (f *fakeTranscriptions) DeleteTranscriptionsByCallID(_ context.Context, callID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}

	delete(f.byCall, callID)

	return nil
}

func (f *fakeTranscriptions) UpsertTranscription(_ context.Context, t *transcription.Transcription) error {
	if f.insertErr != nil {
		return f.insertErr
	}

	copied := *t
	f.byCall[t.CallID] = &copied

	return nil
}

type fakeDispatcher struct {
	callIDs []string
	err     error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, callID string) error {
	f.callIDs = append(f.callIDs, callID)
	return f.err
}

func syncedCall(id string) *call.Call {
	hubspotID := "hs-1"
	syncedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	return &call.Call{
		ID:              id,
		Status:          call.StatusFailed,
		DurationSeconds: 33,
		HubspotCallID:   &hubspotID,
		HubspotSyncedAt: &syncedAt,
	}
}

type fixture struct {
	calls          *fakeCalls
	transcriptions *fakeTranscriptions
	dispatcher     *fakeDispatcher
}

func newFixture() *fixture {
	return &fixture{
		calls:          &fakeCalls{calls: map[string]*call.Call{"c1": syncedCall("c1")}},
		transcriptions: &fakeTranscriptions{byCall: map[string]*transcription.Transcription{}},
		dispatcher:     &fakeDispatcher{},
	}
}

func (f *fixture) service() *ReprocessService {
	return NewService(
		f.calls,
		NewTestModeStrategy(f.calls, f.transcriptions),
		NewBackendStrategy(f.dispatcher),
	)
}

func TestReprocessTestModeCompletesCall(t *testing.T) {
	f := newFixture()
	f.transcriptions.byCall["c1"] = &transcription.Transcription{CallID: "c1", FullText: "old text"}

	require.NoError(t, f.service().Reprocess(context.Background(), "c1", true))

	record := f.calls.calls["c1"]
	require.Equal(t, call.StatusCompleted, record.Status)
	require.Equal(t, MockDurationSeconds, record.DurationSeconds)
	require.Nil(t, record.HubspotCallID)
	require.Nil(t, record.HubspotSyncedAt)

	got := f.transcriptions.byCall["c1"]
	require.Equal(t, "[E2E Test] Mock transcription for call c1", got.FullText)
	require.Equal(t, "[E2E Test] Mock summary for call c1", got.Summary)
	require.Empty(t, f.dispatcher.callIDs)
}

func TestReprocessTestModeIsDeterministic(t *testing.T) {
	f := newFixture()
	svc := f.service()

	require.NoError(t, svc.Reprocess(context.Background(), "c1", true))
	first := *f.transcriptions.byCall["c1"]

	require.NoError(t, svc.Reprocess(context.Background(), "c1", true))
	second := *f.transcriptions.byCall["c1"]

	require.Equal(t, first, second)
	require.Equal(t, call.StatusCompleted, f.calls.calls["c1"].Status)
	require.Len(t, f.transcriptions.byCall, 1)
}

func TestReprocessTestModeInsertFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.transcriptions.insertErr = errDatabaseDown
	f.transcriptions.deleteErr = errDatabaseDown

	require.NoError(t, f.service().Reprocess(context.Background(), "c1", true))
	require.Equal(t, call.StatusCompleted, f.calls.calls["c1"].Status)
	require.Empty(t, f.transcriptions.byCall)
}

func TestReprocessTestModeCompletionFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.calls.failOn = call.StatusCompleted

	err := f.service().Reprocess(context.Background(), "c1", true)

	require.ErrorIs(t, err, apperror.ErrPersistence)
	require.ErrorIs(t, err, errDatabaseDown)
	require.Equal(t, call.StatusPending, f.calls.calls["c1"].Status)
}

func TestReprocessResetFailureAborts(t *testing.T) {
	f := newFixture()
	f.calls.failOn = call.StatusPending

	err := f.service().Reprocess(context.Background(), "c1", true)

	require.ErrorIs(t, err, apperror.ErrPersistence)
	require.Empty(t, f.transcriptions.byCall)
	require.Equal(t, call.StatusFailed, f.calls.calls["c1"].Status)
}

func TestReprocessMissingCall(t *testing.T) {
	f := newFixture()

	err := f.service().Reprocess(context.Background(), "missing", false)

	require.ErrorIs(t, err, apperror.ErrPersistence)
	require.ErrorIs(t, err, apperror.ErrNotFound)
	require.Empty(t, f.dispatcher.callIDs)
}

func TestReprocessBackendModeDispatches(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.service().Reprocess(context.Background(), "c1", false))

	record := f.calls.calls["c1"]
	require.Equal(t, call.StatusPending, record.Status)
	require.Nil(t, record.HubspotCallID)
	require.Nil(t, record.HubspotSyncedAt)
	require.Equal(t, []string{"c1"}, f.dispatcher.callIDs)
}

func TestReprocessBackendDispatchFailureIsIgnored(t *testing.T) {
	f := newFixture()
	f.dispatcher.err = errors.New("pool overloaded")

	require.NoError(t, f.service().Reprocess(context.Background(), "c1", false))
	require.Equal(t, call.StatusPending, f.calls.calls["c1"].Status)
}

func TestReprocessWithoutBackendIsConfigurationError(t *testing.T) {
	f := newFixture()
	svc := NewService(f.calls, NewTestModeStrategy(f.calls, f.transcriptions), nil)

	err := svc.Reprocess(context.Background(), "c1", false)

	require.ErrorIs(t, err, apperror.ErrConfiguration)
	require.Zero(t, f.calls.writes)
	require.Equal(t, call.StatusFailed, f.calls.calls["c1"].Status)
}

func TestMockTranscriptionDependsOnlyOnCallID(t *testing.T) {
	first, err := MockTranscription("c1")
	require.NoError(t, err)

	second, err := MockTranscription("c1")
	require.NoError(t, err)

	other, err := MockTranscription("c2")
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.NotEqual(t, first.ID, other.ID)
	require.JSONEq(t,
		`[{"speaker":"agent","start":0,"end":4.5,"text":"Hello, thank you for calling. How can I help?"},`+
			`{"speaker":"customer","start":4.5,"end":9,"text":"Hi, I have a question about my charger."}]`,
		string(first.SpeakerLabels),
	)
}
