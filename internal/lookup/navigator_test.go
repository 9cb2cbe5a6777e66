package lookup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jb-miles/castscout/internal/domain"
)

// fakeDriver scripts navigation failures and challenge pages.
type fakeDriver struct {
	timeoutsLeft   int   // Navigate calls that fail with DeadlineExceeded
	challengesLeft int   // challenge checks that present a verification page
	navErr         error // unconditional Navigate failure

	navCalls []time.Duration
	reloads  int
}

func (f *fakeDriver) Navigate(_ context.Context, _ string, timeout time.Duration) error {
	f.navCalls = append(f.navCalls, timeout)
	if f.navErr != nil {
		return f.navErr
	}
	if f.timeoutsLeft > 0 {
		f.timeoutsLeft--
		return context.DeadlineExceeded
	}
	return nil
}

func (f *fakeDriver) Reload(context.Context, time.Duration) error {
	f.reloads++
	return nil
}

func (f *fakeDriver) Title(context.Context) (string, error) {
	if f.challengesLeft > 0 {
		f.challengesLeft--
		return "Just a moment...", nil
	}
	return "Search Results", nil
}

func (f *fakeDriver) BodyText(context.Context) (string, error)   { return "", nil }
func (f *fakeDriver) HTML(context.Context) (string, error)       { return "<html></html>", nil }
func (f *fakeDriver) CanonicalURL(context.Context) (string, error) { return "", nil }
func (f *fakeDriver) Location(context.Context) (string, error)   { return "", nil }
func (f *fakeDriver) Relaunch(context.Context) error             { return nil }
func (f *fakeDriver) Close() error                               { return nil }

func (f *fakeDriver) Images(context.Context) ([]domain.PhotoCandidate, error) {
	return nil, nil
}

func newTestNavigator(drv *fakeDriver) *Navigator {
	nav := NewNavigator(drv, 10*time.Second, zap.NewNop())
	nav.challengeWait = time.Millisecond
	return nav
}

func TestNavigateCleanPage(t *testing.T) {
	drv := &fakeDriver{}
	err := newTestNavigator(drv).Navigate(context.Background(), "https://example.test/search")
	require.NoError(t, err)
	assert.Len(t, drv.navCalls, 1)
	assert.Zero(t, drv.reloads)
}

func TestNavigateRetriesTimeoutWithDoubledBudget(t *testing.T) {
	drv := &fakeDriver{timeoutsLeft: 1}
	err := newTestNavigator(drv).Navigate(context.Background(), "https://example.test/search")
	require.NoError(t, err)
	require.Len(t, drv.navCalls, 2)
	assert.Equal(t, 2*drv.navCalls[0], drv.navCalls[1])
}

func TestNavigateGivesUpAfterSecondTimeout(t *testing.T) {
	drv := &fakeDriver{timeoutsLeft: 2}
	err := newTestNavigator(drv).Navigate(context.Background(), "https://example.test/search")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, drv.navCalls, 2, "only one timeout retry")
}

func TestNavigateNonTimeoutFailureIsNotRetried(t *testing.T) {
	boom := errors.New("net::ERR_NAME_NOT_RESOLVED")
	drv := &fakeDriver{navErr: boom}
	err := newTestNavigator(drv).Navigate(context.Background(), "https://example.test/search")
	assert.ErrorIs(t, err, boom)
	assert.Len(t, drv.navCalls, 1, "timeout doubling applies only to timeout-classified failures")
}

func TestNavigateChallengeClearsAfterReload(t *testing.T) {
	drv := &fakeDriver{challengesLeft: 1}
	err := newTestNavigator(drv).Navigate(context.Background(), "https://example.test/search")
	require.NoError(t, err)
	assert.Equal(t, 1, drv.reloads)
}

func TestNavigateChallengePersists(t *testing.T) {
	drv := &fakeDriver{challengesLeft: 10}
	err := newTestNavigator(drv).Navigate(context.Background(), "https://example.test/search")
	assert.ErrorIs(t, err, ErrChallengePersisted)
	assert.Equal(t, 2, drv.reloads, "three checks mean two reload waits")
}
