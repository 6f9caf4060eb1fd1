package confirm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompt(t *testing.T) {
	tests := []struct {
		name          string
		choices       []bool
		wantConfirmed int
		wantCancelled int
	}{
		{name: "confirm", choices: []bool{true}, wantConfirmed: 1},
		{name: "cancel", choices: []bool{false}, wantCancelled: 1},
		{name: "confirm then cancel", choices: []bool{true, false}, wantConfirmed: 1},
		{name: "cancel then confirm", choices: []bool{false, true}, wantCancelled: 1},
		{name: "confirm twice", choices: []bool{true, true}, wantConfirmed: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var confirmed, cancelled int
			p := NewPrompt("Seguro que querés eliminar este curso?", func() { confirmed++ }, func() { cancelled++ })
			assert.Equal(t, StateIdle, p.State())
			require.True(t, p.Ask())
			assert.Equal(t, StateAwaiting, p.State())

			for i, choice := range tt.choices {
				assert.Equal(t, i == 0, p.Resolve(choice))
			}
			assert.Equal(t, StateResolved, p.State())
			assert.Equal(t, tt.wantConfirmed, confirmed)
			assert.Equal(t, tt.wantCancelled, cancelled)
			assert.Equal(t, tt.wantConfirmed == 1, p.Confirmed())
		})
	}
}

func TestPrompt_notAsked(t *testing.T) {
	var calls int
	p := NewPrompt("?", func() { calls++ }, func() { calls++ })
	assert.False(t, p.Confirm(), "an idle prompt cannot be resolved")
	assert.Zero(t, calls)

	require.True(t, p.Ask())
	assert.False(t, p.Ask())
}

func TestPrompt_concurrentResolve(t *testing.T) {
	var mu sync.Mutex
	var calls int
	p := NewPrompt("?", func() { mu.Lock(); calls++; mu.Unlock() }, func() { mu.Lock(); calls++; mu.Unlock() })
	require.True(t, p.Ask())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p.Resolve(i%2 == 0)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, calls)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	var deleted bool
	p := NewPrompt("Seguro que querés eliminar esta clase?", func() { deleted = true }, nil)

	id, replaced, err := r.Add("user-1", "lesson:delete:1", p)
	require.NoError(t, err)
	assert.Empty(t, replaced)
	assert.Equal(t, StateAwaiting, p.State())
	assert.Equal(t, []string{id}, r.Pending("user-1"))

	_, err = r.Get("user-2", id)
	assert.Equal(t, ErrPromptNotFound, err, "prompts are private to their owner")
	_, err = r.Resolve("user-2", id, true)
	assert.Equal(t, ErrPromptNotFound, err)
	assert.False(t, deleted)

	got, err := r.Get("user-1", id)
	require.NoError(t, err)
	assert.Same(t, p, got)

	ok, err := r.Resolve("user-1", id, true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, deleted)

	_, err = r.Resolve("user-1", id, false)
	assert.Equal(t, ErrPromptNotFound, err, "resolved prompts are forgotten")
	assert.Empty(t, r.Pending("user-1"))

	_, _, err = r.Add("user-1", "lesson:delete:1", p)
	assert.Equal(t, ErrAlreadyAsked, err)
}

func TestRegistry_replacesSameKey(t *testing.T) {
	r := NewRegistry()
	var calls []string
	ask := func(name string) *Prompt {
		return NewPrompt("Seguro que querés eliminar este curso?", func() { calls = append(calls, name) }, nil)
	}

	first, _, err := r.Add("user-1", "course:delete:7", ask("first"))
	require.NoError(t, err)
	other, _, err := r.Add("user-1", "course:delete:8", ask("other"))
	require.NoError(t, err)
	foreign, _, err := r.Add("user-2", "course:delete:7", ask("foreign"))
	require.NoError(t, err)

	second, replaced, err := r.Add("user-1", "course:delete:7", ask("second"))
	require.NoError(t, err)
	assert.Equal(t, first, replaced)
	assert.ElementsMatch(t, []string{other, second}, r.Pending("user-1"))
	assert.Equal(t, []string{foreign}, r.Pending("user-2"))

	_, err = r.Resolve("user-1", first, true)
	assert.Equal(t, ErrPromptNotFound, err, "replaced prompts are forgotten")

	ok, err := r.Resolve("user-1", second, true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"second"}, calls)

	// once answered, the key is free again
	third, replaced, err := r.Add("user-1", "course:delete:7", ask("third"))
	require.NoError(t, err)
	assert.Empty(t, replaced)
	assert.ElementsMatch(t, []string{other, third}, r.Pending("user-1"))
}

func TestRegistry_noKey(t *testing.T) {
	r := NewRegistry()
	a, _, err := r.Add("user-1", "", NewPrompt("?", nil, nil))
	require.NoError(t, err)
	b, replaced, err := r.Add("user-1", "", NewPrompt("?", nil, nil))
	require.NoError(t, err)
	assert.Empty(t, replaced)
	assert.ElementsMatch(t, []string{a, b}, r.Pending("user-1"))
}
