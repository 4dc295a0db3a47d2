package csvparser

import "strings"

// SampleTemplate is the downloadable example file.
const SampleTemplate = `first_name,last_name,email,company,title
John,Doe,john.doe@example.com,Tech Corp,CEO
Jane,Smith,jane.smith@startup.io,Startup Inc,CTO
Bob,Johnson,bob@consulting.com,Bob's Consulting,Consultant`

// Format writes a table back out using the same quoting rules Parse
// understands: values containing a comma or a quote are wrapped in double
// quotes with inner quotes doubled. Padded and empty values are quoted too
// so the padding survives the trim and an empty single-column row is not
// read back as a blank line.
func Format(headers []string, rows []Row) string {
	var b strings.Builder

	b.WriteString(strings.Join(headers, ","))

	for _, row := range rows {
		b.WriteString("\n")
		for i, h := range headers {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quote(row[h]))
		}
	}

	return b.String()
}

func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, `,"`) && v == strings.TrimSpace(v) {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
