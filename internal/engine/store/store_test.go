package store_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/gqlstore/internal/core/domain"
	"go.trai.ch/gqlstore/internal/engine/store"
)

func TestNew_RejectsBadModels(t *testing.T) {
	_, err := store.New([]domain.Model{{Name: ""}})
	assert.True(t, errors.Is(err, domain.ErrInvalidModelName))

	_, err = store.New([]domain.Model{{Name: "User"}, {Name: "User"}})
	assert.True(t, errors.Is(err, domain.ErrInvalidModelName))
}

func TestNewFromConfig(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Strict = true
	cfg.Conventions.IdentifierField = "key"
	cfg.Models = []domain.Model{{Name: "Post"}, {Name: "User"}}

	s, err := store.NewFromConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"Post", "User"}, s.Models())
	assert.Equal(t, "key", s.Conventions().IdentifierField)
	assert.Equal(t, "__typename", s.Conventions().TypenameField)

	_, err = s.Resolve(map[string]any{"__typename": "Comment"}, domain.SourceRemote)
	assert.True(t, errors.Is(err, domain.ErrModelNotRecognized))
}

func TestQueries(t *testing.T) {
	s := newStore(t)
	mustResolve(t, s, []any{
		map[string]any{"__typename": "Post", "id": "b", "rank": 2},
		map[string]any{"__typename": "Post", "id": "a", "rank": 1},
		map[string]any{"__typename": "Post", "id": "c", "rank": 2},
	})

	all := s.FindAll("Post")
	require.Len(t, all, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{all[0].ID(), all[1].ID(), all[2].ID()})

	rank2 := func(e *store.Entity) bool { return e.Get("rank") == 2 }
	assert.Equal(t, "b", s.FindBy("Post", rank2).ID())
	assert.Len(t, s.Where("Post", rank2), 2)
	assert.Nil(t, s.FindBy("Post", func(*store.Entity) bool { return false }))
	assert.Empty(t, s.Where("User", rank2))
	assert.Nil(t, s.Find("Comment", "a"))
}

func TestSnapshot_CyclesAreBounded(t *testing.T) {
	s := newStore(t)
	user, _ := mutualPair(t, s)

	snap := s.Snapshot(user).(map[string]any)

	posts := snap["posts"].([]any)
	require.Len(t, posts, 1)
	post := posts[0].(map[string]any)
	assert.Equal(t, "Hello", post["title"])
	assert.Equal(t, map[string]any{"__typename": "User", "id": "1"}, post["author"])
}

func TestSnapshot_SharedEntitiesExpandOnce(t *testing.T) {
	s := newStore(t)

	// Every user refers twice to the next one, so a per-path expansion would double at each level.
	const levels = 60
	for i := levels; i >= 0; i-- {
		payload := map[string]any{"__typename": "User", "id": strconv.Itoa(i)}
		if i < levels {
			next := map[string]any{"__typename": "User", "id": strconv.Itoa(i + 1)}
			payload["left"], payload["right"] = next, next
		}
		mustResolve(t, s, payload)
	}

	node := s.Snapshot(s.Find("User", "0")).(map[string]any)
	for range levels {
		require.Equal(t, node["left"], node["right"])
		node = node["left"].(map[string]any)
	}
	assert.Equal(t, "60", node["id"])
	assert.NotContains(t, node, "left")
}

func TestSnapshot_IncludesComputedFields(t *testing.T) {
	s, err := store.New([]domain.Model{{
		Name: "User",
		Computed: map[string]func(domain.FieldReader) any{
			"label": func(r domain.FieldReader) any { return r.Typename() + "#" + r.ID() },
		},
	}})
	require.NoError(t, err)

	out := mustResolve(t, s, map[string]any{"wrapper": map[string]any{"__typename": "User", "id": "1"}})
	snap := s.Snapshot(out).(map[string]any)
	assert.Equal(t, "User#1", snap["wrapper"].(map[string]any)["label"])
}
