package integration

import "fmt"

// FormatSequence renders the n-th value of a sequence, e.g. ("ORD-Q", 7) -> "ORD-Q/00007"
func FormatSequence(code string, n int64) string {
	return fmt.Sprintf("%s/%05d", code, n)
}
