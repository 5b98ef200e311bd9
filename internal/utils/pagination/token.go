package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Tokens are opaque base64 strings carrying the cursor fields of the last row
// of a page, joined by '|'. Journal listings use a single field (the journal
// number, whose lexicographic order is chronological-then-sequence order).

// EncodeMultiFieldToken creates a token from any number of string fields.
func EncodeMultiFieldToken(fields ...string) string {
	tokenStr := strings.Join(fields, "|")
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeMultiFieldToken decodes a token back into its component fields.
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}

	return strings.Split(string(decodedBytes), "|"), nil
}
