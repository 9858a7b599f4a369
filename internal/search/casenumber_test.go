package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qepting91/edikte-scraper/internal/domain"
	"github.com/qepting91/edikte-scraper/internal/search"
)

func TestParseCaseNumber(t *testing.T) {
	testCases := []struct {
		raw    string
		want   domain.CaseNumberParts
		wantOK bool
	}{
		{"3 E 456/23w", domain.CaseNumberParts{RegistryPrefix: "3", RegistryLetter: "E", Number: "456", Year: "2023"}, true},
		{"12 e 7/2019", domain.CaseNumberParts{RegistryPrefix: "12", RegistryLetter: "E", Number: "7", Year: "2019"}, true},
		{" 1 Nc 10/05 ", domain.CaseNumberParts{RegistryPrefix: "1", RegistryLetter: "NC", Number: "10", Year: "2005"}, true},
		{"E 456/23", domain.CaseNumberParts{}, false},
		{"3 E 456-23", domain.CaseNumberParts{}, false},
		{"3 E 456/123", domain.CaseNumberParts{}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := search.ParseCaseNumber(tc.raw)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCaseNumberRoundTrip(t *testing.T) {
	parts, ok := search.ParseCaseNumber("3 E 456/23w")
	require.True(t, ok)

	formatted := search.FormatCaseNumber(parts)
	assert.Equal(t, "3 E 456/2023", formatted)

	again, ok := search.ParseCaseNumber(formatted)
	require.True(t, ok)
	assert.Equal(t, parts, again)
}

func TestNormalizeYear(t *testing.T) {
	assert.Equal(t, "2023", search.NormalizeYear("23"))
	assert.Equal(t, "2005", search.NormalizeYear("05"))
	assert.Equal(t, "1999", search.NormalizeYear("1999"))
	assert.Equal(t, "xx", search.NormalizeYear("xx"))
}
