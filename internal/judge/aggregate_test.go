package judge

import (
	"testing"

	"algoforge/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateAllPassed(t *testing.T) {
	out := Aggregate([]Result{
		{StatusID: StatusAccepted, Time: 0.01, Memory: 200},
		{StatusID: StatusAccepted, Time: 0.02, Memory: 150},
		{StatusID: StatusAccepted, Time: 0.015, Memory: 300},
	})

	assert.Equal(t, model.StatusAccepted, out.Status)
	assert.Equal(t, 3, out.TestCasesPassed)
	assert.Equal(t, 0.02, out.Runtime)
	assert.Equal(t, 300, out.Memory)
	assert.Nil(t, out.ErrorMessage)
}

func TestAggregateWrongAnswer(t *testing.T) {
	out := Aggregate([]Result{
		{StatusID: StatusAccepted, Time: 0.01, Memory: 100},
		{StatusID: StatusWrongAnswer, Stderr: "diff on line 1"},
		{StatusID: StatusAccepted, Time: 0.03, Memory: 120},
	})

	assert.Equal(t, model.StatusWrong, out.Status)
	assert.Equal(t, 2, out.TestCasesPassed)
	// Worst case among passed entries only.
	assert.Equal(t, 0.03, out.Runtime)
	assert.Equal(t, 120, out.Memory)
	require.NotNil(t, out.ErrorMessage)
	assert.Equal(t, "diff on line 1", *out.ErrorMessage)
}

func TestAggregateFirstFailureWins(t *testing.T) {
	out := Aggregate([]Result{
		{StatusID: 6, CompileOutput: "main.cpp:3: expected ';'"},
		{StatusID: StatusWrongAnswer, Stderr: "later failure"},
	})

	assert.Equal(t, model.StatusError, out.Status)
	assert.Equal(t, 0, out.TestCasesPassed)
	require.NotNil(t, out.ErrorMessage)
	assert.Equal(t, "main.cpp:3: expected ';'", *out.ErrorMessage)
}

func TestAggregateRuntimeErrorBeforeWrongAnswer(t *testing.T) {
	out := Aggregate([]Result{
		{StatusID: StatusWrongAnswer},
		{StatusID: 11, Message: "Exited with error status 1"},
	})

	// The first non-passing case fixed the verdict as wrong even though a
	// harder failure follows.
	assert.Equal(t, model.StatusWrong, out.Status)
}

func TestAggregateMessageFallbackChain(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{"stderr first", Result{StatusID: 11, Stderr: "segfault", CompileOutput: "cc", Message: "m"}, "segfault"},
		{"compile output next", Result{StatusID: 6, CompileOutput: "cc"}, "cc"},
		{"message next", Result{StatusID: 13, Message: "Internal Error"}, "Internal Error"},
		{"generic fallback", Result{StatusID: 11}, "Execution Error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := Aggregate([]Result{tc.result})
			require.NotNil(t, out.ErrorMessage)
			assert.Equal(t, tc.want, *out.ErrorMessage)
		})
	}
}
