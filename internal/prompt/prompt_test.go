package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsMissingSlot(t *testing.T) {
	_, err := New("bad", "no placeholders here", "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing slot "query"`)
}

func TestRender(t *testing.T) {
	tpl, err := New("greet", "Hello {{name}}, ask about {{topic}}.", "name", "topic")
	require.NoError(t, err)

	out, err := tpl.Render(map[string]string{"name": "Ada", "topic": "chaos"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada, ask about chaos.", out)
}

func TestRenderMissingValue(t *testing.T) {
	tpl := MustNew("greet", "Hello {{name}}.", "name")

	_, err := tpl.Render(map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no value for slot "name"`)
}

func TestPackageTemplatesRender(t *testing.T) {
	cases := []struct {
		tpl    *Template
		values map[string]string
	}{
		{Rewrite, map[string]string{"query": "what is OGY"}},
		{Classify, map[string]string{"query": "r=3.9 chaotic?"}},
		{GroundedAnswer, map[string]string{"context": "excerpt", "question": "q"}},
		{FallbackAnswer, map[string]string{"question": "q"}},
		{CasualChat, map[string]string{"question": "hi"}},
	}

	for _, c := range cases {
		out, err := c.tpl.Render(c.values)
		require.NoError(t, err, c.tpl.Name())
		assert.NotContains(t, out, "{{", c.tpl.Name())
	}
}
