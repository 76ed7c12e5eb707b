package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanPatterns(t *testing.T) {
	tests := []struct {
		name         string
		code         string
		wantCount    int
		wantCategory string
		wantLine     int
	}{
		{
			name:         "sql concatenation",
			code:         `rows := db.query("SELECT id FROM t WHERE n=" + name)`,
			wantCount:    1,
			wantCategory: CategorySQLInjection,
			wantLine:     1,
		},
		{
			name:      "sql marker without concatenation",
			code:      `rows := db.query("SELECT id FROM t WHERE n=$1", name)`,
			wantCount: 0,
		},
		{
			name:         "xss document.write",
			code:         "render()\ndocument.write(input)",
			wantCount:    1,
			wantCategory: CategoryXSS,
			wantLine:     2,
		},
		{
			name:         "eval is flagged unconditionally",
			code:         "eval(code)",
			wantCount:    1,
			wantCategory: CategoryXSS,
			wantLine:     1,
		},
		{
			name:         "secret with double quotes",
			code:         `api_key = "sk-live-123"`,
			wantCount:    1,
			wantCategory: CategoryHardcodedSecrets,
			wantLine:     1,
		},
		{
			name:      "secret assignment without literal",
			code:      "password = os.environ['PW_VAR_NAME_ONLY']",
			wantCount: 1, // single-quoted index counts as a quoted literal
		},
		{
			name:      "secret marker without quotes",
			code:      "password = getPassword()",
			wantCount: 0,
		},
		{
			name:      "case insensitive markers",
			code:      `Cursor.EXECUTE("SELECT * FROM t" + x)`,
			wantCount: 3, // execute(, cursor.execute(, select * from
		},
		{
			name:      "clean code",
			code:      "a := 1\nb := a + 2\n",
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := scanPatterns(tt.code)
			require.Len(t, findings, tt.wantCount)
			if tt.wantCount == 1 && tt.wantCategory != "" {
				assert.Equal(t, tt.wantCategory, findings[0].Category)
				assert.Equal(t, tt.wantLine, findings[0].LineNumber)
			}
		})
	}
}

func TestScanPatternsColumnAndSnippet(t *testing.T) {
	findings := scanPatterns("  eval(x)")

	require.Len(t, findings, 1)
	assert.Equal(t, 2, findings[0].ColumnNumber)
	assert.Equal(t, "eval(x)", findings[0].CodeSnippet)
}

func TestScanPatternsMultipleLinesKeepOrder(t *testing.T) {
	code := "eval(a)\nclean line\npassword = 'x'\n"

	findings := scanPatterns(code)

	require.Len(t, findings, 2)
	assert.Equal(t, 1, findings[0].LineNumber)
	assert.Equal(t, CategoryXSS, findings[0].Category)
	assert.Equal(t, 3, findings[1].LineNumber)
	assert.Equal(t, CategoryHardcodedSecrets, findings[1].Category)
}
