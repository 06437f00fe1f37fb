package tt

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------
// Message Sequence Assertions
// -----------------------------------------------------------------------------

// AssertMessagesEqual asserts that two message histories are equal
// element by element. On mismatch it reports a line-per-message unified
// diff, which reads better than a struct dump for long histories.
func AssertMessagesEqual[M any](t *testing.T, expected, actual []M) bool {
	t.Helper()

	if reflect.DeepEqual(normalizeEmpty(expected), normalizeEmpty(actual)) {
		return true
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        renderLines(expected),
		B:        renderLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  2,
	})
	if err != nil {
		diff = fmt.Sprintf("(diff failed: %v)", err)
	}
	return assert.Fail(t, "message histories differ", "\n%s", diff)
}

// AssertOrderPreserved asserts that every element of subset appears in
// original, in the same relative order. Elements not found in original
// (e.g. a synthetic summary) are skipped.
func AssertOrderPreserved[M comparable](t *testing.T, original, subset []M) bool {
	t.Helper()

	index := make(map[M]int, len(original))
	for i, m := range original {
		index[m] = i
	}

	last := -1
	for _, m := range subset {
		i, ok := index[m]
		if !ok {
			continue
		}
		if i <= last {
			return assert.Fail(t, "relative order not preserved",
				"%v appears at original index %d after index %d", m, i, last)
		}
		last = i
	}
	return true
}

func renderLines[M any](messages []M) []string {
	lines := make([]string, len(messages))
	for i, m := range messages {
		lines[i] = fmt.Sprintf("[%d] %+v\n", i, m)
	}
	return lines
}

// normalizeEmpty makes nil and empty slices compare equal.
func normalizeEmpty[M any](messages []M) []M {
	if len(messages) == 0 {
		return nil
	}
	return messages
}

// IDs returns the ID of each Msg, for compact expectations.
func IDs(messages []Msg) string {
	ids := make([]string, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
	}
	return strings.Join(ids, ",")
}
