package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Journal numbers are fixed-width strings: an 8-digit YYYYMMDD date prefix
// immediately followed by a zero-padded 6-digit sequence, 14 digits total.
// Lexicographic ordering on this format equals chronological-then-sequence
// ordering, which report queries rely on when sorting by journal number.
const (
	JournalDateLayout   = "20060102"
	JournalSeqWidth     = 6
	JournalNumberLength = len(JournalDateLayout) + JournalSeqWidth

	// MaxJournalSeq is the largest sequence the fixed width can carry.
	MaxJournalSeq = 999999
)

// DatePrefix returns the 8-digit prefix for a posting date.
func DatePrefix(date time.Time) string {
	return date.Format(JournalDateLayout)
}

// FormatJournalNumber composes a date prefix and a sequence into the
// canonical 14-digit journal number.
func FormatJournalNumber(date time.Time, seq int) (string, error) {
	if seq < 1 || seq > MaxJournalSeq {
		return "", fmt.Errorf("journal sequence %d out of range 1..%d", seq, MaxJournalSeq)
	}
	return fmt.Sprintf("%s%0*d", DatePrefix(date), JournalSeqWidth, seq), nil
}

// ParseJournalNumber splits a journal number back into its posting date and
// numeric sequence.
func ParseJournalNumber(number string) (time.Time, int, error) {
	if len(number) != JournalNumberLength {
		return time.Time{}, 0, fmt.Errorf("journal number %q must be %d digits", number, JournalNumberLength)
	}
	date, err := time.Parse(JournalDateLayout, number[:len(JournalDateLayout)])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("journal number %q has invalid date prefix: %w", number, err)
	}
	seq, err := strconv.Atoi(number[len(JournalDateLayout):])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("journal number %q has non-numeric sequence: %w", number, err)
	}
	if seq < 1 {
		return time.Time{}, 0, fmt.Errorf("journal number %q has sequence below 1", number)
	}
	return date, seq, nil
}
