package broker

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dropDatabas3/authbridge/internal/cache"
	"github.com/dropDatabas3/authbridge/internal/jwt"
	"github.com/dropDatabas3/authbridge/internal/providers"
	"github.com/dropDatabas3/authbridge/internal/signon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testPreshare = "dev-preshared-key"
	callbackURL  = "https://app.example.com/done?from=sso"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeProvider struct {
	name      string
	caches    bool
	profile   providers.UserProfile
	exchErr   error
	exchanges atomic.Int32
}

func (f *fakeProvider) Name() string         { return f.name }
func (f *fakeProvider) CachesIdentity() bool { return f.caches }
func (f *fakeProvider) Validate() error      { return nil }

func (f *fakeProvider) AuthorizeURL(state string) string {
	return "https://idp.example.com/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeProvider) Exchange(_ context.Context, code string) (*providers.TokenSet, error) {
	f.exchanges.Add(1)
	if f.exchErr != nil {
		return nil, f.exchErr
	}
	return &providers.TokenSet{AccessToken: "at-" + code}, nil
}

func (f *fakeProvider) UserInfo(_ context.Context, _ *providers.TokenSet) (*providers.UserProfile, error) {
	p := f.profile
	return &p, nil
}

type fakeSource map[string]providers.Provider

func (s fakeSource) Get(_ context.Context, name string) (providers.Provider, error) {
	p, ok := s[name]
	if !ok {
		return nil, providers.ErrUnknownProvider
	}
	return p, nil
}

type fixture struct {
	b      *Broker
	clk    *clock
	github *fakeProvider
	yikong *fakeProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}

	gh := &fakeProvider{name: "github", profile: providers.UserProfile{ProviderID: "42", Name: "octocat", Email: "octocat@github.com"}}
	yk := &fakeProvider{name: "yikong", caches: true, profile: providers.UserProfile{ProviderID: "zhiyuan", Name: "致远", Email: "zhiyuan@example.com"}}

	var chans []*Channel
	for _, n := range []string{"github", "yikong"} {
		ch, err := NewChannel(n, ChannelConfig{Now: clk.Now})
		require.NoError(t, err)
		chans = append(chans, ch)
	}
	ids, err := cache.New[signon.CachedIdentity](cache.Config{Name: "identity", TTL: 10 * time.Minute, Now: clk.Now})
	require.NoError(t, err)

	kr, err := jwt.NewKeyring([]byte(testSecret))
	require.NoError(t, err)

	b, err := New(Deps{
		Providers:  fakeSource{"github": gh, "yikong": yk},
		Channels:   chans,
		Identities: ids,
		Tokens:     jwt.NewService(kr, jwt.Options{Now: clk.Now}),
		Verifiers: signon.NewRegistry(
			signon.NewV5MD5(signon.V5MD5Config{Secret: testPreshare, Now: clk.Now}),
			signon.NewYikong(ids),
		),
		Now: clk.Now,
	})
	require.NoError(t, err)
	return &fixture{b: b, clk: clk, github: gh, yikong: yk}
}

// login runs authorize + callback and returns the redirect.
func (f *fixture) login(t *testing.T, provider, state string) *url.URL {
	t.Helper()
	ctx := context.Background()
	_, err := f.b.BeginAuthorization(ctx, provider, state, callbackURL)
	require.NoError(t, err)
	c, err := f.b.CompleteAuthorization(ctx, provider, CallbackParams{Code: "upstream-code", State: state})
	require.NoError(t, err)
	u, err := url.Parse(c.RedirectURL)
	require.NoError(t, err)
	return u
}

func TestBeginAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.b.BeginAuthorization(ctx, "github", "s-1", callbackURL)
	require.NoError(t, err)
	assert.Contains(t, u, "state=s-1")

	_, err = f.b.BeginAuthorization(ctx, "github", "s-1", callbackURL)
	require.ErrorIs(t, err, ErrStateDuplicate)

	_, err = f.b.BeginAuthorization(ctx, "github", "", callbackURL)
	require.ErrorIs(t, err, ErrStateRequired)

	_, err = f.b.BeginAuthorization(ctx, "github", "s-2", "/relative")
	require.ErrorIs(t, err, ErrCallbackInvalid)

	_, err = f.b.BeginAuthorization(ctx, "gitlab", "s-3", callbackURL)
	require.ErrorIs(t, err, ErrUnknownProvider)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCallbackRedirectCarriesCode(t *testing.T) {
	f := newFixture(t)
	u := f.login(t, "github", "abc")

	q := u.Query()
	assert.Equal(t, "app.example.com", u.Host)
	assert.Equal(t, "sso", q.Get("from"))
	assert.Equal(t, "abc", q.Get("state"))
	assert.Equal(t, "github", q.Get("provider"))
	assert.True(t, strings.HasPrefix(q.Get("code"), "github."))
	assert.Empty(t, q.Get("email"))
}

func TestUnknownStateNeverReachesUpstream(t *testing.T) {
	f := newFixture(t)
	_, err := f.b.CompleteAuthorization(context.Background(), "github", CallbackParams{Code: "c", State: "never-issued"})
	require.ErrorIs(t, err, ErrStateUnknown)
	assert.Equal(t, int32(0), f.github.exchanges.Load())
}

func TestStateIsSingleUse(t *testing.T) {
	f := newFixture(t)
	f.login(t, "github", "once")
	_, err := f.b.CompleteAuthorization(context.Background(), "github", CallbackParams{Code: "c", State: "once"})
	require.ErrorIs(t, err, ErrStateUnknown)
	assert.Equal(t, int32(1), f.github.exchanges.Load())
}

func TestStateExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.b.BeginAuthorization(ctx, "github", "slow", callbackURL)
	require.NoError(t, err)

	f.clk.Advance(DefaultStateTTL + time.Second)
	_, err = f.b.CompleteAuthorization(ctx, "github", CallbackParams{Code: "c", State: "slow"})
	require.ErrorIs(t, err, ErrStateUnknown)
}

func TestProviderDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.b.BeginAuthorization(ctx, "github", "d", callbackURL)
	require.NoError(t, err)

	_, err = f.b.CompleteAuthorization(ctx, "github", CallbackParams{State: "d", Error: "access_denied"})
	require.ErrorIs(t, err, ErrProviderDenied)
	assert.Equal(t, KindUpstream, KindOf(err))
	assert.Equal(t, int32(0), f.github.exchanges.Load())
}

func TestUpstreamFailureHidesCause(t *testing.T) {
	f := newFixture(t)
	f.github.exchErr = errors.New("bad_verification_code")
	ctx := context.Background()
	_, err := f.b.BeginAuthorization(ctx, "github", "u", callbackURL)
	require.NoError(t, err)

	_, err = f.b.CompleteAuthorization(ctx, "github", CallbackParams{Code: "c", State: "u"})
	require.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, KindUpstream, KindOf(err))
}

func TestRedeemOnce(t *testing.T) {
	f := newFixture(t)
	code := f.login(t, "github", "r").Query().Get("code")
	ctx := context.Background()

	res, err := f.b.Redeem(ctx, "github", code)
	require.NoError(t, err)
	assert.Equal(t, &Resource{Name: "octocat", Email: "octocat@github.com"}, res)

	_, err = f.b.Redeem(ctx, "github", code)
	require.ErrorIs(t, err, ErrResourceNotFound)

	// Un código de otro provider no existe en este canal.
	_, err = f.b.Redeem(ctx, "yikong", code)
	require.ErrorIs(t, err, ErrResourceNotFound)
}

func TestRedeemExpiresAfter24h(t *testing.T) {
	f := newFixture(t)
	c1 := f.login(t, "github", "e1").Query().Get("code")
	c2 := f.login(t, "github", "e2").Query().Get("code")
	ctx := context.Background()

	f.clk.Advance(DefaultResourceTTL - time.Second)
	_, err := f.b.Redeem(ctx, "github", c1)
	require.NoError(t, err)

	f.clk.Advance(2 * time.Second)
	_, err = f.b.Redeem(ctx, "github", c2)
	require.ErrorIs(t, err, ErrResourceExpired)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestConcurrentRedeem(t *testing.T) {
	f := newFixture(t)
	code := f.login(t, "github", "race").Query().Get("code")

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.b.Redeem(context.Background(), "github", code); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestYikongCallbackFeedsSignOn(t *testing.T) {
	f := newFixture(t)
	q := f.login(t, "yikong", "yk").Query()
	assert.Equal(t, "zhiyuan", q.Get("userId"))
	assert.Equal(t, "致远", q.Get("name"))
	assert.Equal(t, "zhiyuan@example.com", q.Get("email"))

	ctx := context.Background()
	res, err := f.b.CustomSignOn(ctx, "YIKONG", &signon.Payload{UserID: q.Get("userId"), Name: q.Get("name"), Email: q.Get("email")})
	require.NoError(t, err)

	v, err := f.b.VerifyToken(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "zhiyuan", v.Subject.ID)
	assert.Equal(t, "YIKONG", v.Header[jwt.HeaderAuthMethod])

	_, err = f.b.CustomSignOn(ctx, "YIKONG", &signon.Payload{UserID: "zhiyuan", Name: "impostor", Email: "zhiyuan@example.com"})
	require.ErrorIs(t, err, signon.ErrIdentityMismatch)
	assert.Equal(t, KindAuthentication, KindOf(err))
}

func TestYikongRelogReplacesCachedIdentity(t *testing.T) {
	f := newFixture(t)
	f.login(t, "yikong", "first")

	f.yikong.profile.Name = "致远二"
	f.clk.Advance(time.Minute)
	f.login(t, "yikong", "second")

	id, err := f.b.identities.Get(context.Background(), "zhiyuan")
	require.NoError(t, err)
	assert.Equal(t, "致远二", id.Name)
	assert.Equal(t, f.clk.Now(), id.CachedAt)
	assert.Equal(t, 1, f.b.identities.Len())
}

func TestCustomSignOnV5MD5(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tt := strconv.FormatInt(f.clk.Now().Unix(), 10)
	p := &signon.Payload{
		Empno: "12345",
		TTime: tt,
		Token: signon.Hash("12345", []byte(testPreshare), tt),
		Extra: map[string]any{"dept": "R&D"},
	}

	res, err := f.b.CustomSignOn(ctx, "V5_MD5", p)
	require.NoError(t, err)
	assert.Equal(t, f.clk.Now().Add(jwt.DefaultTTL).Unix(), res.ExpiresAt.Unix())

	v, err := f.b.VerifyToken(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "12345@example.com", v.Subject.Email)
	assert.Equal(t, map[string]any{"dept": "R&D"}, v.Payload["extra"])

	p.Token = "00000000000000000000000000000000"
	_, err = f.b.CustomSignOn(ctx, "V5_MD5", p)
	require.ErrorIs(t, err, signon.ErrInvalidToken)
	assert.Equal(t, KindAuthentication, KindOf(err))

	_, err = f.b.CustomSignOn(ctx, "KERBEROS", p)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.b.CustomSignOn(ctx, "", nil)
	require.ErrorIs(t, err, ErrSignOnRequest)
}

func TestTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.b.VerifyToken(ctx, "  ")
	require.ErrorIs(t, err, ErrTokenRequired)

	_, err = f.b.VerifyToken(ctx, "not.a.jwt")
	assert.Equal(t, KindAuthentication, KindOf(err))

	_, err = f.b.IssueToken(ctx, nil, nil)
	require.ErrorIs(t, err, ErrPayloadRequired)

	iss, err := f.b.IssueToken(ctx, map[string]any{"sub": "svc"}, map[string]any{"x-app": "crm"})
	require.NoError(t, err)
	v, err := f.b.VerifyToken(ctx, iss.Token)
	require.NoError(t, err)
	assert.Equal(t, "svc", v.Payload["sub"])
	assert.Equal(t, "crm", v.Header["x-app"])
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	f.login(t, "github", "st")
	stats := f.b.Stats()
	require.Len(t, stats, 5)
	assert.Equal(t, "github:state", stats[0].Name)
	assert.Equal(t, "identity", stats[4].Name)
}
