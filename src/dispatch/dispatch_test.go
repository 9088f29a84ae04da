package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ryan-RCNR/quiz-party/src/types"
)

func env(t *testing.T, raw string) types.Envelope {
	t.Helper()
	e, ok := types.ParseEnvelope([]byte(raw))
	if !ok {
		t.Fatalf("frame should parse: %s", raw)
	}
	return e
}

func TestDispatchInvokesExactlyMatchingHandler(t *testing.T) {
	calls := map[string]int{}
	d := New(map[string]HandlerFunc{
		types.TagQuestion:     func(types.Envelope) { calls["question"]++ },
		types.TagAnswerResult: func(types.Envelope) { calls["answer_result"]++ },
	})

	ok := d.Dispatch(env(t, `{"type":"question","question_id":"q1"}`))
	assert.True(t, ok)
	assert.Equal(t, 1, calls["question"])
	assert.Zero(t, calls["answer_result"])
}

func TestDispatchUnknownTagInvokesNothing(t *testing.T) {
	invoked := false
	d := New(map[string]HandlerFunc{
		types.TagQuestion: func(types.Envelope) { invoked = true },
	})

	ok := d.Dispatch(env(t, `{"type":"mystery"}`))
	assert.False(t, ok)
	assert.False(t, invoked)
}

func TestRegisterReplacesHandler(t *testing.T) {
	var got string
	d := New(nil)
	d.Register(types.TagSessionEnded, func(types.Envelope) { got = "first" })
	d.Register(types.TagSessionEnded, func(types.Envelope) { got = "second" })

	d.Dispatch(env(t, `{"type":"session_ended"}`))
	assert.Equal(t, "second", got)
}

func TestNewCopiesMapping(t *testing.T) {
	handlers := map[string]HandlerFunc{
		types.TagQuestion: func(types.Envelope) {},
	}
	d := New(handlers)
	delete(handlers, types.TagQuestion)

	assert.True(t, d.Dispatch(env(t, `{"type":"question"}`)))
}
