package export

import (
	"sort"
	"strings"
)

// CollectHeaders returns the union of column keys across all rows, in
// first-seen order. Different rows may carry different optional derived
// columns, so the header set must be computed from the full row set before
// any row is emitted (two-pass, never streaming).
func CollectHeaders(rows []Row) []string {
	seen := make(map[string]bool)
	headers := []string{}
	for _, row := range rows {
		for _, key := range rowKeys(row) {
			if !seen[key] {
				seen[key] = true
				headers = append(headers, key)
			}
		}
	}
	return headers
}

// CSVContent serializes rows under the given headers. Missing keys render as
// empty strings and row order is preserved.
func CSVContent(rows []Row, headers []string) string {
	var b strings.Builder

	headerCells := make([]string, len(headers))
	for i, h := range headers {
		headerCells[i] = escapeField(headerTitle(h))
	}
	b.WriteString(strings.Join(headerCells, ","))

	cells := make([]string, len(headers))
	for _, row := range rows {
		for i, h := range headers {
			cells[i] = escapeField(row[h])
		}
		b.WriteString("\n")
		b.WriteString(strings.Join(cells, ","))
	}
	return b.String()
}

// GridContent serializes pre-shaped rows (used by the transposed TCAT layout
// where cells are already positional).
func GridContent(rows [][]string) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = escapeField(cell)
		}
		lines[i] = strings.Join(cells, ",")
	}
	return strings.Join(lines, "\n")
}

// escapeField quotes a field if and only if it contains a comma, a double
// quote or a line break, doubling any internal quotes.
func escapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return "\"" + strings.ReplaceAll(s, "\"", "\"\"") + "\""
}

// headerTitle turns a column key into a display header: underscores become
// spaces and the first letter of every word is upper-cased.
func headerTitle(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// rowKeys returns the row's keys in a stable order so header union output is
// deterministic across runs.
func rowKeys(row Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
