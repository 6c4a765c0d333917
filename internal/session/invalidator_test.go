package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gxmovies/storefront-client/internal/auth"
	"github.com/gxmovies/storefront-client/internal/auth/authtest"
	"github.com/gxmovies/storefront-client/internal/notice"
	"github.com/gxmovies/storefront-client/internal/observability"
	"github.com/gxmovies/storefront-client/internal/tokenstore"
)

type countingNavigator struct {
	calls atomic.Int32
	last  atomic.Value
}

func (n *countingNavigator) Navigate(path string) {
	n.calls.Add(1)
	n.last.Store(path)
}

type fixture struct {
	store   *tokenstore.Memory
	manager *Manager
	board   *notice.Board
	nav     *countingNavigator
	metrics *observability.Metrics
	inv     *Invalidator
}

func newFixture(t *testing.T, autoAck bool) *fixture {
	t.Helper()
	f := &fixture{
		store:   tokenstore.NewMemory(),
		board:   notice.NewBoard(nil, autoAck, nil),
		nav:     &countingNavigator{},
		metrics: observability.NewMetrics(),
	}
	f.manager = NewManager(f.store, auth.NewDecoder(), nil, nil)
	f.inv = NewInvalidator(f.manager, f.store, f.board, f.nav, f.metrics, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = f.inv.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return f
}

func (f *fixture) login(t *testing.T, userID int) string {
	t.Helper()
	token := authtest.Token(t, userID, "USER")
	_, err := f.manager.Login(context.Background(), token)
	require.NoError(t, err)
	return token
}

func TestBlockedInvalidationWaitsForAckThenLogsOut(t *testing.T) {
	f := newFixture(t, false)
	token := f.login(t, 11)

	f.inv.InvalidateSession(context.Background(), token)

	var pending []notice.Notice
	require.Eventually(t, func() bool {
		pending = f.board.Pending()
		return len(pending) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, BlockedTitle, pending[0].Title)
	assert.Equal(t, BlockedMessage, pending[0].Message)
	assert.NotNil(t, f.manager.Identity(), "logout waits for acknowledgment")

	require.NoError(t, f.board.Ack(pending[0].ID))

	require.Eventually(t, func() bool { return f.nav.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, auth.LoginPath, f.nav.last.Load())
	assert.Nil(t, f.manager.Identity())
	_, err := f.store.Read(context.Background())
	assert.ErrorIs(t, err, tokenstore.ErrNotFound)
}

func TestConcurrentInvalidationsLogOutOnce(t *testing.T) {
	f := newFixture(t, true)
	token := f.login(t, 11)

	for i := 0; i < 5; i++ {
		f.inv.InvalidateSession(context.Background(), token)
		f.inv.Invalidate(ReasonInactive, token)
	}

	require.Eventually(t, func() bool { return f.nav.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int32(1), f.nav.calls.Load())
	assert.Nil(t, f.manager.Identity())
	count, err := testutil.GatherAndCount(f.metrics.Registry(), "gxmovies_client_forced_logouts_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "a single reason label was recorded")
}

func TestInactivityLogsOutAndToasts(t *testing.T) {
	f := newFixture(t, false)
	f.login(t, 11)

	f.inv.Expire()

	require.Eventually(t, func() bool { return f.nav.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Nil(t, f.manager.Identity())
	require.Eventually(t, func() bool { return len(f.board.List()) == 1 }, time.Second, 5*time.Millisecond)
	n := f.board.List()[0]
	assert.Equal(t, notice.KindToast, n.Kind)
	assert.Equal(t, InactiveMessage, n.Message)
}

func TestInvalidationWithoutSessionIsNoop(t *testing.T) {
	f := newFixture(t, false)

	f.inv.InvalidateSession(context.Background(), "gone")
	f.inv.Expire()
	time.Sleep(50 * time.Millisecond)

	assert.Zero(t, f.nav.calls.Load())
	assert.Empty(t, f.board.List())
}

func TestInvalidationForReplacedSessionIsIgnored(t *testing.T) {
	f := newFixture(t, false)
	first := f.login(t, 11)
	second := f.login(t, 12)

	f.inv.InvalidateSession(context.Background(), first)
	time.Sleep(50 * time.Millisecond)

	assert.Zero(t, f.nav.calls.Load())
	assert.Empty(t, f.board.List(), "no alert for a session that is already gone")
	assert.Equal(t, "12", f.manager.Identity().SubjectID)
	stored, err := f.store.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second, stored)
}

func TestAlertAcknowledgedAfterReloginKeepsNewSession(t *testing.T) {
	f := newFixture(t, false)
	first := f.login(t, 11)

	f.inv.InvalidateSession(context.Background(), first)
	alert := func() notice.Notice {
		var pending []notice.Notice
		require.Eventually(t, func() bool {
			pending = f.board.Pending()
			return len(pending) == 1
		}, time.Second, 5*time.Millisecond)
		return pending[0]
	}()

	f.manager.Logout(context.Background())
	second := f.login(t, 12)
	require.NoError(t, f.board.Ack(alert.ID))
	time.Sleep(50 * time.Millisecond)

	assert.Zero(t, f.nav.calls.Load())
	require.NotNil(t, f.manager.Identity())
	assert.Equal(t, "12", f.manager.Identity().SubjectID)
	stored, err := f.store.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second, stored)
	count, err := testutil.GatherAndCount(f.metrics.Registry(), "gxmovies_client_forced_logouts_total")
	require.NoError(t, err)
	assert.Zero(t, count)
}
