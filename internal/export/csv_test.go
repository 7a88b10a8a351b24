package export

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectHeadersUnion(t *testing.T) {
	rows := []Row{
		{"a": "1", "b": "2"},
		{"b": "3", "c": "4"},
		{"a": "5"},
	}

	headers := CollectHeaders(rows)

	assert.ElementsMatch(t, []string{"a", "b", "c"}, headers)

	seen := map[string]int{}
	for _, h := range headers {
		seen[h]++
	}
	for h, n := range seen {
		assert.Equal(t, 1, n, "header %s appears more than once", h)
	}
}

func TestCSVContentMissingKeysRenderEmpty(t *testing.T) {
	rows := []Row{
		{"a": "1"},
		{"b": "2"},
	}
	content := CSVContent(rows, CollectHeaders(rows))

	lines := strings.Split(content, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "1,", lines[1])
	assert.Equal(t, ",2", lines[2])
}

func TestCSVContentPreservesRowOrder(t *testing.T) {
	rows := []Row{
		{"id": "z"},
		{"id": "a"},
		{"id": "m"},
	}
	content := CSVContent(rows, []string{"id"})

	assert.Equal(t, "Id\nz\na\nm", content)
}

func TestEscapeField(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"comma and quote", `a,b"c`, `"a,b""c"`},
		{"newline", "a\nb", "\"a\nb\""},
		{"carriage return", "a\rb", "\"a\rb\""},
		{"leading space stays unquoted", " padded", " padded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeField(tt.in))
		})
	}
}

func TestHeaderTitle(t *testing.T) {
	assert.Equal(t, "Production Source Id", headerTitle("production_source_id"))
	assert.Equal(t, "Type Name", headerTitle("type_name"))
	assert.Equal(t, "Amounts 1 Amount", headerTitle("amounts_1_amount"))
}

func TestCSVContentRoundTrip(t *testing.T) {
	rows := []Row{
		{"name": `quo"ted`, "notes": "line1\nline2", "plain": "x"},
		{"name": "a,b", "notes": "", "plain": "y"},
	}
	headers := CollectHeaders(rows)
	content := CSVContent(rows, headers)

	parsed, err := csv.NewReader(strings.NewReader(content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 3)

	for i, row := range rows {
		for j, h := range headers {
			assert.Equal(t, row[h], parsed[i+1][j])
		}
	}
}

func TestGridContent(t *testing.T) {
	content := GridContent([][]string{
		{"a", "b,c"},
		{"d", `e"f`},
	})

	assert.Equal(t, "a,\"b,c\"\nd,\"e\"\"f\"", content)
}
