package domain_test

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
)

func TestFormatJournalNumber(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	number, err := domain.FormatJournalNumber(date, 1)
	require.NoError(t, err)
	assert.Equal(t, "20240115000001", number)
	assert.Len(t, number, domain.JournalNumberLength)

	number, err = domain.FormatJournalNumber(date, 999999)
	require.NoError(t, err)
	assert.Equal(t, "20240115999999", number)
}

func TestFormatJournalNumber_SequenceOutOfRange(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	_, err := domain.FormatJournalNumber(date, 0)
	assert.Error(t, err)

	_, err = domain.FormatJournalNumber(date, domain.MaxJournalSeq+1)
	assert.Error(t, err)
}

func TestParseJournalNumber_RoundTrip(t *testing.T) {
	date := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	number, err := domain.FormatJournalNumber(date, 42)
	require.NoError(t, err)

	parsedDate, seq, err := domain.ParseJournalNumber(number)
	require.NoError(t, err)
	assert.True(t, parsedDate.Equal(date))
	assert.Equal(t, 42, seq)
}

func TestParseJournalNumber_Invalid(t *testing.T) {
	cases := []string{
		"",
		"2024011500001",    // 13 chars
		"202401150000001",  // 15 chars
		"20240115abcdef",   // non-numeric suffix
		"20241345000001",   // impossible date
		"aaaaaaaa000001",   // non-numeric date
	}
	for _, input := range cases {
		_, _, err := domain.ParseJournalNumber(input)
		assert.Error(t, err, "input %q", input)
	}
}

// Lexicographic order of journal numbers must equal chronological-then-
// sequence order, which is what listing and pagination rely on.
func TestJournalNumber_LexicographicOrder(t *testing.T) {
	d1 := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	var numbers []string
	for _, spec := range []struct {
		date time.Time
		seq  int
	}{
		{d1, 1}, {d1, 2}, {d1, 10}, {d1, 999999}, {d2, 1}, {d2, 3},
	} {
		n, err := domain.FormatJournalNumber(spec.date, spec.seq)
		require.NoError(t, err)
		numbers = append(numbers, n)
	}

	assert.True(t, sort.StringsAreSorted(numbers))
}

func TestDatePrefix(t *testing.T) {
	date := time.Date(2024, 1, 15, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "20240115", domain.DatePrefix(date))
}
