package handlers

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const importHeader = "date,description,side,account_code,sub_account_code,partner_code,analysis_code,department_code,base_amount,tax_amount,total_amount,tax_code,memo\n"

func TestParseJournalsCSV(t *testing.T) {
	input := importHeader +
		"2024-01-15,1月分売上,DEBIT,1010,,,,,100,0,100,,\n" +
		"2024-01-15,1月分売上,CREDIT,4000,,,PRJ01,D01,91,9,100,T10,備考\n" +
		"2024-01-15,備品購入,DEBIT,5010,,,,,3000,0,3000,,\n" +
		"2024-01-15,備品購入,CREDIT,1010,,,,,3000,0,3000,,\n"

	reqs, err := parseJournalsCSV(csv.NewReader(strings.NewReader(input)))
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	first := reqs[0]
	assert.Equal(t, "1月分売上", first.Description)
	assert.True(t, first.Date.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	require.Len(t, first.Details, 2)
	assert.Equal(t, "DEBIT", first.Details[0].Side)
	assert.Nil(t, first.Details[0].AnalysisCode)
	require.NotNil(t, first.Details[1].AnalysisCode)
	assert.Equal(t, "PRJ01", *first.Details[1].AnalysisCode)
	require.NotNil(t, first.Details[1].TaxCode)
	assert.Equal(t, "T10", *first.Details[1].TaxCode)

	second := reqs[1]
	assert.Equal(t, "備品購入", second.Description)
	assert.Len(t, second.Details, 2)
}

// A date change splits entries even when the description is unchanged.
func TestParseJournalsCSV_SplitsOnDate(t *testing.T) {
	input := importHeader +
		"2024-01-15,A,DEBIT,1010,,,,,10,0,10,,\n" +
		"2024-01-15,A,CREDIT,4000,,,,,10,0,10,,\n" +
		"2024-01-16,A,DEBIT,1010,,,,,20,0,20,,\n" +
		"2024-01-16,A,CREDIT,4000,,,,,20,0,20,,\n"

	reqs, err := parseJournalsCSV(csv.NewReader(strings.NewReader(input)))
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.True(t, reqs[0].Date.Before(reqs[1].Date))
}

func TestParseJournalsCSV_Invalid(t *testing.T) {
	cases := map[string]string{
		"header only":  importHeader,
		"bad date":     importHeader + "15/01/2024,x,DEBIT,1010,,,,,10,0,10,,\n",
		"bad amount":   importHeader + "2024-01-15,x,DEBIT,1010,,,,,ten,0,10,,\n",
		"wrong header": "date,description\n2024-01-15,x\n",
	}
	for name, input := range cases {
		_, err := parseJournalsCSV(csv.NewReader(strings.NewReader(input)))
		assert.Error(t, err, name)
	}
}
