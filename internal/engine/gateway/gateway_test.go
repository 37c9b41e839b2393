package gateway_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go.trai.ch/gqlstore/internal/adapters/cache"
	"go.trai.ch/gqlstore/internal/core/domain"
	"go.trai.ch/gqlstore/internal/core/ports"
	"go.trai.ch/gqlstore/internal/core/ports/mocks"
	"go.trai.ch/gqlstore/internal/engine/gateway"
	"go.trai.ch/gqlstore/internal/engine/store"
)

const userQuery = "query User($id: ID!) { user(id: $id) { id name } }"

type fixture struct {
	gw        *gateway.Gateway
	store     *store.Store
	cache     *cache.Store
	transport *mocks.MockTransport
}

func newFixture(t *testing.T, opts ...gateway.Option) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	s, err := store.New([]domain.Model{{Name: "User"}, {Name: "Post"}})
	require.NoError(t, err)

	f := &fixture{
		store:     s,
		cache:     cache.NewStore(),
		transport: mocks.NewMockTransport(ctrl),
	}
	f.gw = gateway.New(f.store, f.transport, f.cache, opts...)
	t.Cleanup(f.gw.Close)
	return f
}

func userPayload(id, name string) map[string]any {
	return map[string]any{
		"user": map[string]any{"__typename": "User", "id": id, "name": name},
	}
}

type emission struct {
	value any
	err   error
}

func collect(seq func(func(any, error) bool)) []emission {
	var out []emission
	for v, err := range seq {
		out = append(out, emission{value: v, err: err})
	}
	return out
}

func request(f *fixture, policy domain.CachePolicy, vars map[string]any) []emission {
	return collect(f.gw.Request(context.Background(), domain.RequestOptions{
		Document:    userQuery,
		Variables:   vars,
		CachePolicy: policy,
	}))
}

func cacheKey(t *testing.T, vars map[string]any) string {
	t.Helper()
	key, err := gateway.CacheKey(userQuery, vars)
	require.NoError(t, err)
	return key
}

func TestRequest_IsLazy(t *testing.T) {
	f := newFixture(t)
	f.transport.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	seq := f.gw.Request(context.Background(), domain.RequestOptions{Document: userQuery})

	assert.NotNil(t, seq)
	assert.Equal(t, 0, f.cache.Len())
}

func TestRequest_PolicyMatrix(t *testing.T) {
	vars := map[string]any{"id": "1"}

	tests := []struct {
		name          string
		policy        domain.CachePolicy
		primed        bool
		wantEmissions []string
		wantCalls     int
		wantStored    bool
	}{
		{name: "no-cache miss", policy: domain.CachePolicyNoCache, wantEmissions: []string{"network"}, wantCalls: 1},
		{name: "no-cache hit ignored", policy: domain.CachePolicyNoCache, primed: true, wantEmissions: []string{"network"}, wantCalls: 1},
		{name: "cache-first miss", policy: domain.CachePolicyCacheFirst, wantEmissions: []string{"network"}, wantCalls: 1, wantStored: true},
		{name: "cache-first hit", policy: domain.CachePolicyCacheFirst, primed: true, wantEmissions: []string{"cached"}},
		{name: "cache-only hit", policy: domain.CachePolicyCacheOnly, primed: true, wantEmissions: []string{"cached"}},
		{name: "network-only miss", policy: domain.CachePolicyNetworkOnly, wantEmissions: []string{"network"}, wantCalls: 1, wantStored: true},
		{name: "network-only hit ignored", policy: domain.CachePolicyNetworkOnly, primed: true, wantEmissions: []string{"network"}, wantCalls: 1, wantStored: true},
		{name: "cache-and-network miss", policy: domain.CachePolicyCacheAndNetwork, wantEmissions: []string{"network"}, wantCalls: 1, wantStored: true},
		{name: "cache-and-network hit", policy: domain.CachePolicyCacheAndNetwork, primed: true, wantEmissions: []string{"cached", "network"}, wantCalls: 1, wantStored: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.primed {
				f.cache.Put(cacheKey(t, vars), "cached")
			}
			f.transport.EXPECT().
				Execute(gomock.Any(), userQuery, vars).
				Return(userPayload("1", "John"), nil).
				Times(tt.wantCalls)

			got := request(f, tt.policy, vars)

			require.Len(t, got, len(tt.wantEmissions))
			for i, want := range tt.wantEmissions {
				require.NoError(t, got[i].err)
				if want == "cached" {
					assert.Equal(t, "cached", got[i].value)
					continue
				}
				user := got[i].value.(map[string]any)["user"]
				assert.Same(t, f.store.Find("User", "1"), user)
			}

			cached, ok := f.cache.Get(cacheKey(t, vars))
			switch {
			case tt.wantStored:
				require.True(t, ok)
				assert.NotEqual(t, "cached", cached)
			case tt.primed:
				assert.Equal(t, "cached", cached)
			default:
				assert.False(t, ok)
			}
		})
	}
}

func TestRequest_CacheOnlyMiss(t *testing.T) {
	f := newFixture(t)
	f.transport.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	got := request(f, domain.CachePolicyCacheOnly, nil)

	require.Len(t, got, 1)
	assert.Nil(t, got[0].value)
	assert.True(t, errors.Is(got[0].err, domain.ErrNotFound))
}

func TestRequest_UsesDefaultPolicy(t *testing.T) {
	f := newFixture(t, gateway.WithDefaultPolicy(domain.CachePolicyCacheOnly))
	f.transport.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	got := request(f, "", nil)

	require.Len(t, got, 1)
	assert.True(t, errors.Is(got[0].err, domain.ErrNotFound))
	assert.Equal(t, domain.CachePolicyCacheOnly, f.gw.DefaultPolicy())
}

func TestRequest_UpsertsCacheEntry(t *testing.T) {
	f := newFixture(t)
	f.transport.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(userPayload("1", "John"), nil)
	f.transport.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(userPayload("2", "Jane"), nil)

	request(f, domain.CachePolicyNetworkOnly, nil)
	second := request(f, domain.CachePolicyNetworkOnly, nil)

	assert.Equal(t, 1, f.gw.CachedResponses())
	cached, ok := f.cache.Get(cacheKey(t, nil))
	require.True(t, ok)
	assert.Same(t, second[0].value, cached)
	assert.Same(t, f.store.Find("User", "2"), cached.(map[string]any)["user"])
}

func TestRequest_CachedValueIsLive(t *testing.T) {
	f := newFixture(t)
	f.transport.EXPECT().
		Execute(gomock.Any(), userQuery, gomock.Any()).
		Return(userPayload("1", "John"), nil)
	f.transport.EXPECT().
		Execute(gomock.Any(), "query { me { id name } }", gomock.Any()).
		Return(map[string]any{"me": map[string]any{"__typename": "User", "id": "1", "name": "Johnny"}}, nil)

	request(f, domain.CachePolicyCacheFirst, nil)
	collect(f.gw.Request(context.Background(), domain.RequestOptions{
		Document:    "query { me { id name } }",
		CachePolicy: domain.CachePolicyNetworkOnly,
	}))

	got := request(f, domain.CachePolicyCacheFirst, nil)
	require.Len(t, got, 1)
	user := got[0].value.(map[string]any)["user"].(*store.Entity)
	assert.Equal(t, "Johnny", user.Get("name"))
}

func TestRequest_EarlyBreakSkipsNetwork(t *testing.T) {
	f := newFixture(t)
	f.cache.Put(cacheKey(t, nil), "cached")
	f.transport.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	var got []any
	for v, err := range f.gw.Request(context.Background(), domain.RequestOptions{
		Document:    userQuery,
		CachePolicy: domain.CachePolicyCacheAndNetwork,
	}) {
		require.NoError(t, err)
		got = append(got, v)
		break
	}

	assert.Equal(t, []any{"cached"}, got)
}

func TestRequest_TransportErrorLeavesStoreIntact(t *testing.T) {
	f := newFixture(t)
	existing, err := f.store.Create("User", map[string]any{"id": "1", "name": "John"}, domain.SourceRemote)
	require.NoError(t, err)

	f.transport.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrTransportFailed)

	got := request(f, domain.CachePolicyNetworkOnly, nil)

	require.Len(t, got, 1)
	assert.True(t, errors.Is(got[0].err, domain.ErrTransportFailed))
	assert.Equal(t, "John", existing.Get("name"))
	assert.Equal(t, 1, f.store.Len("User"))
	assert.Equal(t, 0, f.gw.CachedResponses())
}

func TestRequest_CacheHitThenTransportError(t *testing.T) {
	f := newFixture(t)
	f.cache.Put(cacheKey(t, nil), "cached")
	f.transport.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrTransportFailed)

	got := request(f, domain.CachePolicyCacheAndNetwork, nil)

	require.Len(t, got, 2)
	assert.Equal(t, "cached", got[0].value)
	assert.NoError(t, got[0].err)
	assert.True(t, errors.Is(got[1].err, domain.ErrTransportFailed))
}

func TestRequest_StrictResolveFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	s, err := store.New([]domain.Model{{Name: "User"}}, store.WithStrict(true))
	require.NoError(t, err)
	transport := mocks.NewMockTransport(ctrl)
	responses := cache.NewStore()
	gw := gateway.New(s, transport, responses)
	defer gw.Close()

	transport.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(map[string]any{"thing": map[string]any{"__typename": "Unknown", "id": "1"}}, nil)

	got := collect(gw.Request(context.Background(), domain.RequestOptions{Document: userQuery}))

	require.Len(t, got, 1)
	assert.True(t, errors.Is(got[0].err, domain.ErrModelNotRecognized))
	assert.Equal(t, 0, responses.Len())
}

func TestRequest_InvalidOptions(t *testing.T) {
	f := newFixture(t)
	f.transport.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	missing := collect(f.gw.Request(context.Background(), domain.RequestOptions{Document: "  "}))
	require.Len(t, missing, 1)
	assert.True(t, errors.Is(missing[0].err, domain.ErrMissingDocument))

	invalid := collect(f.gw.Request(context.Background(), domain.RequestOptions{
		Document:    userQuery,
		CachePolicy: "sometimes",
	}))
	require.Len(t, invalid, 1)
	assert.True(t, errors.Is(invalid[0].err, domain.ErrInvalidCachePolicy))
}

func TestOnAfterResolve(t *testing.T) {
	f := newFixture(t)
	vars := map[string]any{"id": "1"}
	f.transport.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(userPayload("1", "John"), nil).
		Times(2)

	var events []domain.ResolveEvent
	unregister := f.gw.OnAfterResolve(func(ev domain.ResolveEvent) {
		events = append(events, ev)
	})

	got := request(f, domain.CachePolicyCacheAndNetwork, vars)
	require.Len(t, events, 1)
	assert.Same(t, got[0].value, events[0].Value)
	assert.Equal(t, userQuery, events[0].Document)
	assert.Equal(t, vars, events[0].Variables)

	// cache hits do not resolve anything
	request(f, domain.CachePolicyCacheFirst, vars)
	assert.Len(t, events, 1)

	unregister()
	request(f, domain.CachePolicyNetworkOnly, vars)
	assert.Len(t, events, 1)
}

func TestCache_RewrittenOnRemove(t *testing.T) {
	f := newFixture(t)
	f.transport.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(map[string]any{"users": []any{
			map[string]any{"__typename": "User", "id": "1"},
			map[string]any{"__typename": "User", "id": "2"},
		}}, nil)

	request(f, domain.CachePolicyNetworkOnly, nil)
	require.NoError(t, f.store.Remove(f.store.Find("User", "1")))

	cached, ok := f.cache.Get(cacheKey(t, nil))
	require.True(t, ok)
	users := cached.(map[string]any)["users"].([]any)
	require.Len(t, users, 1)
	assert.Same(t, f.store.Find("User", "2"), users[0])
}

func TestCache_EvictedWhenRootRemoved(t *testing.T) {
	f := newFixture(t)
	f.transport.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(map[string]any{"__typename": "User", "id": "1", "name": "John"}, nil)

	request(f, domain.CachePolicyNetworkOnly, nil)
	require.NoError(t, f.store.Remove(f.store.Find("User", "1")))

	_, ok := f.cache.Get(cacheKey(t, nil))
	assert.False(t, ok)

	got := request(f, domain.CachePolicyCacheOnly, nil)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].value)
	assert.True(t, errors.Is(got[0].err, domain.ErrNotFound))
}

func TestEmissions_TagCachedValues(t *testing.T) {
	f := newFixture(t)
	f.cache.Put(cacheKey(t, nil), "cached")
	f.transport.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(userPayload("1", "John"), nil)

	var got []domain.Emission
	for em, err := range f.gw.Emissions(context.Background(), domain.RequestOptions{
		Document:    userQuery,
		CachePolicy: domain.CachePolicyCacheAndNetwork,
	}) {
		require.NoError(t, err)
		got = append(got, em)
	}

	require.Len(t, got, 2)
	assert.Equal(t, domain.Emission{Value: "cached", Cached: true}, got[0])
	assert.False(t, got[1].Cached)
	assert.Same(t, f.store.Find("User", "1"), got[1].Value.(map[string]any)["user"])
}

func TestCache_RewrittenOnReplace(t *testing.T) {
	f := newFixture(t)
	f.transport.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(userPayload("1", "John"), nil)

	request(f, domain.CachePolicyCacheFirst, nil)
	target := f.store.Find("User", "1")
	replacement, err := f.store.Build("User", map[string]any{"id": "1", "name": "Replaced"}, domain.SourceRemote)
	require.NoError(t, err)
	require.NoError(t, f.store.Replace(target, replacement))

	got := request(f, domain.CachePolicyCacheFirst, nil)
	require.Len(t, got, 1)
	assert.Same(t, replacement, got[0].value.(map[string]any)["user"])
}

func TestClose_StopsCacheRewrites(t *testing.T) {
	f := newFixture(t)
	f.transport.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(userPayload("1", "John"), nil)

	request(f, domain.CachePolicyCacheFirst, nil)
	user := f.store.Find("User", "1")
	f.gw.Close()
	require.NoError(t, f.store.Remove(user))

	cached, _ := f.cache.Get(cacheKey(t, nil))
	assert.Same(t, user, cached.(map[string]any)["user"])
}

func TestRequest_RecordsSpan(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracer := mocks.NewMockTracer(ctrl)
	span := mocks.NewMockSpan(ctrl)
	f := newFixture(t, gateway.WithTracer(tracer))
	key := cacheKey(t, nil)

	f.cache.Put(key, "cached")
	f.transport.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(userPayload("1", "John"), nil)

	tracer.EXPECT().Start(gomock.Any(), "gateway.request").
		DoAndReturn(func(ctx context.Context, _ string) (context.Context, ports.Span) {
			return ctx, span
		})
	span.EXPECT().SetAttribute("policy", "cache-and-network")
	span.EXPECT().SetAttribute("cache_key", key)
	span.EXPECT().SetAttribute("cache_hit", true)
	span.EXPECT().SetAttribute("emissions", 2)
	span.EXPECT().End()

	got := request(f, domain.CachePolicyCacheAndNetwork, nil)
	assert.Len(t, got, 2)
}

func TestRequest_RecordsSpanError(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracer := mocks.NewMockTracer(ctrl)
	span := mocks.NewMockSpan(ctrl)
	log := mocks.NewMockLogger(ctrl)
	f := newFixture(t, gateway.WithTracer(tracer), gateway.WithLogger(log))

	f.transport.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrTransportFailed)

	tracer.EXPECT().Start(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string) (context.Context, ports.Span) {
			return ctx, span
		})
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	span.EXPECT().RecordError(domain.ErrTransportFailed)
	span.EXPECT().End()
	log.EXPECT().Error(domain.ErrTransportFailed)

	got := request(f, domain.CachePolicyNoCache, nil)
	require.Len(t, got, 1)
	assert.Error(t, got[0].err)
}

func TestRequest_CacheInteractions(t *testing.T) {
	ctrl := gomock.NewController(t)
	s, err := store.New([]domain.Model{{Name: "User"}})
	require.NoError(t, err)
	transport := mocks.NewMockTransport(ctrl)
	responses := mocks.NewMockResponseCache(ctrl)
	gw := gateway.New(s, transport, responses)
	defer gw.Close()
	key := cacheKey(t, nil)

	gomock.InOrder(
		responses.EXPECT().Get(key).Return(nil, false),
		transport.EXPECT().Execute(gomock.Any(), userQuery, gomock.Nil()).Return(userPayload("1", "John"), nil),
		responses.EXPECT().Put(key, gomock.Any()),
		responses.EXPECT().Range(gomock.Any()),
	)

	got := collect(gw.Request(context.Background(), domain.RequestOptions{
		Document:    userQuery,
		CachePolicy: domain.CachePolicyCacheFirst,
	}))
	require.Len(t, got, 1)

	require.NoError(t, s.Remove(s.Find("User", "1")))
}

func TestRequest_SupersededEndsSilently(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	f := newFixture(t, gateway.WithLogger(log))

	ctx, cancel := context.WithCancelCause(context.Background())
	f.transport.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ map[string]any) (any, error) {
			cancel(domain.ErrSuperseded)
			return nil, context.Cause(ctx)
		})
	log.EXPECT().Info(gomock.Any())

	got := collect(f.gw.Request(ctx, domain.RequestOptions{
		Document:    userQuery,
		CachePolicy: domain.CachePolicyNetworkOnly,
	}))

	assert.Empty(t, got)
	assert.Equal(t, 0, f.gw.CachedResponses())
}
