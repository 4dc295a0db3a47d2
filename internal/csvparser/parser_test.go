package csvparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_HeadersAndRowsInFileOrder(t *testing.T) {
	text := "first_name,last_name,email\nJohn,Doe,john@example.com\nJane,Smith,jane@example.com\n"

	table, err := Parse(text)
	require.NoError(t, err)

	assert.Equal(t, []string{"first_name", "last_name", "email"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, Row{"first_name": "John", "last_name": "Doe", "email": "john@example.com"}, table.Rows[0])
	assert.Equal(t, "Jane", table.Rows[1]["first_name"])
	assert.Empty(t, table.Skipped)
}

func TestParse_LineEndings(t *testing.T) {
	for name, text := range map[string]string{
		"crlf":  "a,b\r\n1,2\r\n3,4",
		"cr":    "a,b\r1,2\r3,4",
		"lf":    "a,b\n1,2\n3,4",
		"mixed": "a,b\r\n1,2\r3,4\n",
	} {
		t.Run(name, func(t *testing.T) {
			table, err := Parse(text)
			require.NoError(t, err)
			require.Len(t, table.Rows, 2)
			assert.Equal(t, "3", table.Rows[1]["a"])
			assert.Equal(t, "4", table.Rows[1]["b"])
		})
	}
}

func TestParse_QuotedFields(t *testing.T) {
	text := "name,quote\n\"Smith, Jr.\",\"She said \"\"hi\"\"\""

	table, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	assert.Equal(t, "Smith, Jr.", table.Rows[0]["name"])
	assert.Equal(t, `She said "hi"`, table.Rows[0]["quote"])
}

func TestParse_HeaderQuotesStripped(t *testing.T) {
	table, err := Parse("\"Email Address\",'First Name'\nx@y.io,Ann")
	require.NoError(t, err)

	assert.Equal(t, []string{"Email Address", "First Name"}, table.Headers)
	assert.Equal(t, "Ann", table.Rows[0]["First Name"])
}

func TestParse_MismatchedRowSkipped(t *testing.T) {
	text := "a,b,c\n1,2,3\n1,2\n4,5,6,7\n7,8,9"

	table, err := Parse(text)
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "7", table.Rows[1]["a"])

	require.Len(t, table.Skipped, 2)
	assert.Equal(t, SkippedRow{Line: 3, Expected: 3, Got: 2, Content: "1,2"}, table.Skipped[0])
	assert.Equal(t, 4, table.Skipped[1].Got)
}

func TestParse_BlankLinesIgnored(t *testing.T) {
	table, err := Parse("a,b\n\n1,2\n   \n3,4")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
	assert.Empty(t, table.Skipped)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, ErrNoHeaders)

	_, err = Parse("  \r\n \n")
	assert.ErrorIs(t, err, ErrNoHeaders)

	_, err = Parse("first_name,email\n")
	assert.ErrorIs(t, err, ErrNoDataRows)

	table, err := Parse("a,b\n1\n2")
	assert.ErrorIs(t, err, ErrNoDataRows)
	require.NotNil(t, table)
	assert.Len(t, table.Skipped, 2)

	_, err = Parse("email,email\nx,y")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Error(), "duplicate")
}

func TestFormat_RoundTrip(t *testing.T) {
	headers := []string{"first_name", "company", "notes"}
	rows := []Row{
		{"first_name": "John", "company": "Smith, Jr. & Co", "notes": `She said "hi"`},
		{"first_name": "Ann", "company": "", "notes": "  padded  "},
		{"first_name": `"quoted"`, "company": "Acme", "notes": "a,b,c"},
	}

	table, err := Parse(Format(headers, rows))
	require.NoError(t, err)

	assert.Equal(t, headers, table.Headers)
	assert.Equal(t, rows, table.Rows)
	assert.Empty(t, table.Skipped)
}

func TestFormat_EmptySingleColumn(t *testing.T) {
	headers := []string{"notes"}
	rows := []Row{{"notes": "first"}, {"notes": ""}, {"notes": "last"}}

	text := Format(headers, rows)
	assert.Equal(t, "notes\nfirst\n\"\"\nlast", text)

	table, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, rows, table.Rows)
}

func TestSampleTemplate(t *testing.T) {
	table, err := Parse(SampleTemplate)
	require.NoError(t, err)

	assert.Equal(t, []string{"first_name", "last_name", "email", "company", "title"}, table.Headers)
	assert.Len(t, table.Rows, 3)
	assert.Equal(t, "Bob's Consulting", table.Rows[2]["company"])
}
