package tcat

import "fmt"

// Transpose pivots mapped certificates into the TCAT template layout:
// certificates become columns ("Project 1".."Project N") and disclosure
// fields become rows. For N certificates and a 16-field schema the result is
// 17 rows of N+2 columns. This orientation is a template requirement;
// downstream consumers expect one column per reported project.
func Transpose(mapped []*MappedData, fields []FieldDefinition) [][]string {
	header := make([]string, 0, len(mapped)+2)
	header = append(header, "Disclosure Category", "Description")
	for i := range mapped {
		header = append(header, fmt.Sprintf("Project %d", i+1))
	}

	rows := make([][]string, 0, len(fields)+1)
	rows = append(rows, header)

	for _, f := range fields {
		row := make([]string, 0, len(mapped)+2)
		row = append(row, f.Key+". "+f.Label, f.Description)
		for _, m := range mapped {
			row = append(row, m.FieldValue(f.Field))
		}
		rows = append(rows, row)
	}
	return rows
}
