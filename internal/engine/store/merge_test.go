package store_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go.trai.ch/gqlstore/internal/core/domain"
	"go.trai.ch/gqlstore/internal/core/ports/mocks"
	"go.trai.ch/gqlstore/internal/engine/store"
)

func TestCreate(t *testing.T) {
	s := newStore(t)

	t.Run("with identifier", func(t *testing.T) {
		user, err := s.Create("User", map[string]any{"id": "1", "name": "John"}, domain.SourceRemote)
		require.NoError(t, err)
		assert.Equal(t, "1", user.ID())
		assert.Equal(t, domain.SourceRemote, user.Source())
		assert.Same(t, user, s.Find("User", "1"))
	})

	t.Run("generated identifier is local", func(t *testing.T) {
		user, err := s.Create("User", map[string]any{"name": "Jane"}, domain.SourceRemote)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(user.ID(), domain.LocalIDPrefix))
		assert.Equal(t, domain.SourceLocal, user.Source())
		assert.Equal(t, user.ID(), user.Get("id"))
		assert.Equal(t, "User", user.Get("__typename"))
	})

	t.Run("duplicate identifier", func(t *testing.T) {
		_, err := s.Create("User", map[string]any{"id": "1"}, domain.SourceLocal)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrAlreadyExists))
	})

	t.Run("unknown model", func(t *testing.T) {
		_, err := s.Create("Comment", map[string]any{"id": "1"}, domain.SourceLocal)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrModelNotRecognized))
	})
}

func TestCreate_RetriesTakenLocalIDs(t *testing.T) {
	ids := []string{"local:a", "local:a", "local:b"}
	next := 0
	s := newStore(t, store.WithIDGenerator(func() string {
		id := ids[next]
		next++
		return id
	}))

	first, err := s.Create("Post", nil, domain.SourceLocal)
	require.NoError(t, err)
	second, err := s.Create("Post", nil, domain.SourceLocal)
	require.NoError(t, err)

	assert.Equal(t, "local:a", first.ID())
	assert.Equal(t, "local:b", second.ID())
	assert.Equal(t, 3, next)
}

func TestCreate_AppliesDefaults(t *testing.T) {
	s, err := store.New([]domain.Model{{
		Name:     "Post",
		Defaults: map[string]any{"meta": map[string]any{"views": 0}, "draft": true},
	}})
	require.NoError(t, err)

	a, err := s.Create("Post", map[string]any{"id": "1", "draft": false}, domain.SourceLocal)
	require.NoError(t, err)
	b, err := s.Create("Post", map[string]any{"id": "2"}, domain.SourceLocal)
	require.NoError(t, err)

	assert.Equal(t, false, a.Get("draft"))
	assert.Equal(t, true, b.Get("draft"))

	_, err = s.Update("Post", "1", map[string]any{"meta": map[string]any{"views": 10}}, domain.SourceLocal)
	require.NoError(t, err)
	assert.Equal(t, 10, a.Get("meta").(map[string]any)["views"])
	assert.Equal(t, 0, b.Get("meta").(map[string]any)["views"])
}

func TestUpdate(t *testing.T) {
	s := newStore(t)
	user, err := s.Create("User", map[string]any{"id": "1", "name": "John"}, domain.SourceLocal)
	require.NoError(t, err)

	updated, err := s.Update("User", "1", map[string]any{"name": "Johnny"}, domain.SourceRemote)
	require.NoError(t, err)
	assert.Same(t, user, updated)
	assert.Equal(t, "Johnny", user.Get("name"))
	assert.Equal(t, domain.SourceRemote, user.Source())

	_, err = s.Update("User", "404", map[string]any{"name": "x"}, domain.SourceRemote)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInstanceNotFound))
}

func TestUpdate_IdentityFieldsAreNotWritable(t *testing.T) {
	s := newStore(t)
	user, err := s.Create("User", map[string]any{"id": "1"}, domain.SourceLocal)
	require.NoError(t, err)

	_, err = s.Update("User", "1", map[string]any{"id": "2", "__typename": "Post"}, domain.SourceLocal)
	require.NoError(t, err)

	assert.Equal(t, "1", user.Get("id"))
	assert.Equal(t, "User", user.Get("__typename"))
	assert.Same(t, user, s.Find("User", "1"))
}

func TestUpdate_ReadOnlyFieldsAreSkipped(t *testing.T) {
	s, err := store.New([]domain.Model{{Name: "User", ReadOnly: []string{"createdAt"}}})
	require.NoError(t, err)

	_, err = s.Resolve(map[string]any{"__typename": "User", "id": "1", "createdAt": "then"}, domain.SourceRemote)
	require.NoError(t, err)

	user := s.Find("User", "1")
	assert.False(t, user.Has("createdAt"))
}

func TestBuild_DoesNotRegister(t *testing.T) {
	s := newStore(t)

	post, err := s.Build("Post", map[string]any{"id": "1", "title": "draft"}, domain.SourceLocal)
	require.NoError(t, err)

	assert.Equal(t, "draft", post.Get("title"))
	assert.Nil(t, s.Find("Post", "1"))
}

func TestMerge(t *testing.T) {
	s := newStore(t)

	t.Run("plain map", func(t *testing.T) {
		dst := map[string]any{"a": map[string]any{"b": 1}}
		require.NoError(t, s.Merge(dst, map[string]any{"a": map[string]any{"c": 2}, "d": 3}))
		assert.Equal(t, map[string]any{"a": map[string]any{"b": 1, "c": 2}, "d": 3}, dst)
	})

	t.Run("entity", func(t *testing.T) {
		user, err := s.Create("User", map[string]any{"id": "1"}, domain.SourceLocal)
		require.NoError(t, err)
		require.NoError(t, s.Merge(user, map[string]any{"name": "John"}))
		assert.Equal(t, "John", user.Get("name"))
	})

	t.Run("entity values are assigned by reference", func(t *testing.T) {
		post, err := s.Create("Post", map[string]any{"id": "1", "title": "kept"}, domain.SourceLocal)
		require.NoError(t, err)
		dst := map[string]any{"post": map[string]any{"title": "plain"}}

		require.NoError(t, s.Merge(dst, map[string]any{"post": post}))
		assert.Same(t, post, dst["post"])
		assert.Equal(t, "kept", post.Get("title"))
	})

	t.Run("unsupported target", func(t *testing.T) {
		err := s.Merge([]any{1}, map[string]any{"a": 1})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrAssignNotSupported))
	})
}

func TestWriteNotifier_ObservesEveryWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockWriteNotifier(ctrl)

	s := newStore(t, store.WithNotifier(notifier))

	gomock.InOrder(
		notifier.EXPECT().FieldWritten("User", "1", "__typename"),
		notifier.EXPECT().FieldWritten("User", "1", "id"),
		notifier.EXPECT().FieldWritten("User", "1", "name"),
		notifier.EXPECT().FieldWritten("User", "1", "profile"),
	)
	_, err := s.Resolve(map[string]any{
		"__typename": "User", "id": "1", "name": "John", "profile": map[string]any{"bio": "x"},
	}, domain.SourceRemote)
	require.NoError(t, err)

	notifier.EXPECT().FieldWritten("User", "1", "profile.bio")
	_, err = s.Update("User", "1", map[string]any{"profile": map[string]any{"bio": "y"}}, domain.SourceRemote)
	require.NoError(t, err)
}

// readingNotifier reads the written field back from the store on every notification.
type readingNotifier struct {
	store *store.Store
	reads []any
}

func (n *readingNotifier) FieldWritten(typename, id, field string) {
	if e := n.store.Find(typename, id); e != nil {
		n.reads = append(n.reads, e.Get(field))
	}
}

func TestWriteNotifier_MayReadStore(t *testing.T) {
	notifier := &readingNotifier{}
	s := newStore(t, store.WithNotifier(notifier))
	notifier.store = s

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Resolve(map[string]any{"__typename": "User", "id": "1", "name": "John"}, domain.SourceRemote)
		_, _ = s.Update("User", "1", map[string]any{"name": "Johnny"}, domain.SourceLocal)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("notifier reading the written entity blocked the store")
	}

	assert.Equal(t, []any{"User", "1", "John", "Johnny"}, notifier.reads)
}

func TestEntity_NestedReadsDuringMerges(t *testing.T) {
	s := newStore(t)
	user := mustResolve(t, s, map[string]any{
		"__typename": "User", "id": "1", "profile": map[string]any{"k0": 0},
	}).(*store.Entity)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 200 {
			_, _ = s.Resolve(map[string]any{
				"__typename": "User", "id": "1",
				"profile": map[string]any{fmt.Sprintf("k%d", i%7): i},
				"tags":    []any{i},
			}, domain.SourceRemote)
		}
	}()
	go func() {
		defer wg.Done()
		for range 200 {
			profile := user.Get("profile").(map[string]any)
			for k, v := range profile {
				_, _ = k, v
			}
			for _, v := range user.Fields() {
				_ = v
			}
		}
	}()
	wg.Wait()

	profile := user.Get("profile").(map[string]any)
	assert.Len(t, profile, 7)
	assert.Equal(t, []any{199}, user.Get("tags"))
}
