package gateway_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gxmovies/storefront-client/internal/auth"
	"github.com/gxmovies/storefront-client/internal/auth/authtest"
	"github.com/gxmovies/storefront-client/internal/gateway"
	"github.com/gxmovies/storefront-client/internal/notice"
	"github.com/gxmovies/storefront-client/internal/observability"
	"github.com/gxmovies/storefront-client/internal/session"
	"github.com/gxmovies/storefront-client/internal/tokenstore"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	header http.Header
	body   string
}

type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.requests...)
}

func backend(t *testing.T, status int, body string) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.requests = append(rec.requests, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			header: r.Header.Clone(),
			body:   string(raw),
		})
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

type navRecorder struct {
	calls atomic.Int32
	path  atomic.Value
}

func (n *navRecorder) Navigate(path string) {
	n.calls.Add(1)
	n.path.Store(path)
}

type stack struct {
	store    *tokenstore.Memory
	manager  *session.Manager
	board    *notice.Board
	nav      *navRecorder
	pipeline gateway.Doer
}

func newStack(t *testing.T) *stack {
	t.Helper()
	s := &stack{
		store: tokenstore.NewMemory(),
		board: notice.NewBoard(nil, true, nil),
		nav:   &navRecorder{},
	}
	s.manager = session.NewManager(s.store, auth.NewDecoder(), nil, nil)
	inv := session.NewInvalidator(s.manager, s.store, s.board, s.nav, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = inv.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	s.pipeline = gateway.New(http.DefaultClient, gateway.Options{
		Tokens:      s.store,
		Invalidator: inv,
		RateLimits:  s.board,
		Metrics:     observability.NewMetrics(),
	})
	return s
}

func get(t *testing.T, d gateway.Doer, url string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	require.NoError(t, err)
	return d.Do(req)
}

func TestOutgoingAttachesBearerOnlyWhenTokenStored(t *testing.T) {
	srv, rec := backend(t, http.StatusOK, `{"success":true}`)
	s := newStack(t)

	resp, err := get(t, s.pipeline, srv.URL+"/api/movies/all")
	require.NoError(t, err)
	resp.Body.Close()

	require.NoError(t, s.store.Save(context.Background(), "tok-123"))
	resp, err = get(t, s.pipeline, srv.URL+"/api/movies/all")
	require.NoError(t, err)
	resp.Body.Close()

	seen := rec.all()
	require.Len(t, seen, 2)
	assert.Empty(t, seen[0].header.Get("Authorization"))
	assert.Equal(t, "Bearer tok-123", seen[1].header.Get("Authorization"))
}

func TestOutgoingLeavesRequestOtherwiseUnchanged(t *testing.T) {
	srv, rec := backend(t, http.StatusOK, `{"success":true}`)
	s := newStack(t)
	require.NoError(t, s.store.Save(context.Background(), "tok"))

	req, err := http.NewRequestWithContext(context.Background(), http.MethodDelete,
		srv.URL+"/api/carts/user/3/movies?userId=3", strings.NewReader(`[1,2]`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.pipeline.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	seen := rec.all()
	require.Len(t, seen, 1)
	got := seen[0]
	assert.Equal(t, http.MethodDelete, got.method)
	assert.Equal(t, "/api/carts/user/3/movies", got.path)
	assert.Equal(t, "userId=3", got.query)
	assert.Equal(t, `[1,2]`, got.body)
	assert.Equal(t, "application/json", got.header.Get("Content-Type"))
	assert.Empty(t, req.Header.Get("Authorization"), "caller's request is not mutated")
}

func TestUnauthorizedWithTokenForcesLogoutExactlyOnce(t *testing.T) {
	srv, _ := backend(t, http.StatusUnauthorized, `{"success":false,"message":"blocked"}`)
	s := newStack(t)
	_, err := s.manager.Login(context.Background(), authtest.Token(t, 4, "USER"))
	require.NoError(t, err)

	errs := make([]error, 3)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = get(t, s.pipeline, srv.URL+"/api/carts/user/4")
		}(i)
	}
	wg.Wait()

	invalidated := 0
	for _, err := range errs {
		statusErr, ok := gateway.AsStatusError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
		assert.Equal(t, "blocked", statusErr.Message())
		if errors.Is(err, gateway.ErrSessionInvalidated) {
			invalidated++
		}
	}
	assert.GreaterOrEqual(t, invalidated, 1)

	require.Eventually(t, func() bool { return s.nav.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), s.nav.calls.Load())
	assert.Equal(t, auth.LoginPath, s.nav.path.Load())
	assert.Nil(t, s.manager.Identity())
	_, err = s.store.Read(context.Background())
	assert.ErrorIs(t, err, tokenstore.ErrNotFound)

	alerts := s.board.List()
	require.Len(t, alerts, 1)
	assert.Equal(t, notice.KindAlert, alerts[0].Kind)
	assert.Equal(t, session.BlockedTitle, alerts[0].Title)
}

func TestUnauthorizedWithoutTokenOnlyPropagates(t *testing.T) {
	srv, _ := backend(t, http.StatusUnauthorized, `{"success":false,"message":"Bad credentials"}`)
	s := newStack(t)

	_, err := get(t, s.pipeline, srv.URL+"/api/users/login")
	require.Error(t, err)
	assert.False(t, errors.Is(err, gateway.ErrSessionInvalidated))

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, s.nav.calls.Load())
	assert.Empty(t, s.board.List())
}

func TestTooManyRequestsRaisesNoticeWithBodyText(t *testing.T) {
	srv, _ := backend(t, http.StatusTooManyRequests, "Too many requests")
	s := newStack(t)
	_, err := s.manager.Login(context.Background(), authtest.Token(t, 4, "USER"))
	require.NoError(t, err)
	before := s.manager.State()

	_, err = get(t, s.pipeline, srv.URL+"/api/movies/all")
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrRateLimited)

	notices := s.board.List()
	require.Len(t, notices, 1)
	assert.Equal(t, notice.KindToast, notices[0].Kind)
	assert.Equal(t, "Too many requests", notices[0].Message)

	assert.Equal(t, before, s.manager.State())
	token, err := s.store.Read(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Zero(t, s.nav.calls.Load())
}

func TestOtherErrorStatusesPassThrough(t *testing.T) {
	srv, _ := backend(t, http.StatusNotFound, `{"success":false,"message":"Movie not found"}`)
	s := newStack(t)

	_, err := get(t, s.pipeline, srv.URL+"/api/movies/99")
	statusErr, ok := gateway.AsStatusError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Nil(t, statusErr.Unwrap())
	assert.Equal(t, "Movie not found", statusErr.Message())
	assert.Empty(t, s.board.List())
}

func TestTransportErrorsPropagateUnchanged(t *testing.T) {
	boom := errors.New("connection refused")
	d := gateway.Chain(
		gateway.DoerFunc(func(*http.Request) (*http.Response, error) { return nil, boom }),
		gateway.Incoming(gateway.IncomingConfig{}),
		gateway.Logging(nil),
		gateway.Metrics(observability.NewMetrics()),
	)

	_, err := get(t, d, "http://backend.invalid/api/movies/all")
	assert.Same(t, boom, err)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) gateway.Middleware {
		return func(next gateway.Doer) gateway.Doer {
			return gateway.DoerFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.Do(r)
			})
		}
	}
	base := gateway.DoerFunc(func(*http.Request) (*http.Response, error) {
		order = append(order, "transport")
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	_, err := get(t, gateway.Chain(base, mw("a"), mw("b")), "http://example.test/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "transport"}, order)
}

func TestUnauthorizedForReplacedSessionKeepsNewSession(t *testing.T) {
	s := newStack(t)
	first := authtest.Token(t, 4, "USER")
	second := authtest.Token(t, 5, "USER")
	_, err := s.manager.Login(context.Background(), first)
	require.NoError(t, err)

	var carried atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		carried.Store(r.Header.Get("Authorization"))
		// The user switches accounts while the old session's call is in flight.
		_, _ = s.manager.Login(context.Background(), second)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"success":false,"message":"expired"}`)
	}))
	t.Cleanup(srv.Close)

	_, err = get(t, s.pipeline, srv.URL+"/api/carts/user/4")
	statusErr, ok := gateway.AsStatusError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.False(t, errors.Is(err, gateway.ErrSessionInvalidated))
	assert.Equal(t, "Bearer "+first, carried.Load())

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, s.nav.calls.Load())
	assert.Empty(t, s.board.List())
	require.NotNil(t, s.manager.Identity())
	assert.Equal(t, "5", s.manager.Identity().SubjectID)
}

type invalidations struct {
	mu     sync.Mutex
	tokens []string
}

func (i *invalidations) InvalidateSession(_ context.Context, token string) {
	i.mu.Lock()
	i.tokens = append(i.tokens, token)
	i.mu.Unlock()
}

func (i *invalidations) all() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]string(nil), i.tokens...)
}

func TestIncomingComparesCarriedTokenWithStoredOne(t *testing.T) {
	store := tokenstore.NewMemory()
	require.NoError(t, store.Save(context.Background(), "tok-current"))
	inv := &invalidations{}
	d := gateway.Chain(
		gateway.DoerFunc(func(*http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusUnauthorized, Body: io.NopCloser(strings.NewReader("{}"))}, nil
		}),
		gateway.Incoming(gateway.IncomingConfig{Tokens: store, Invalidator: inv}),
	)

	send := func(authorization string) error {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://backend.test/api/users/1", nil)
		require.NoError(t, err)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		_, err = d.Do(req)
		return err
	}

	assert.ErrorIs(t, send("Bearer tok-current"), gateway.ErrSessionInvalidated)
	assert.False(t, errors.Is(send("Bearer tok-old"), gateway.ErrSessionInvalidated))
	assert.False(t, errors.Is(send(""), gateway.ErrSessionInvalidated))
	assert.Equal(t, []string{"tok-current"}, inv.all())
}
