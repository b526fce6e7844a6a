package store

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewSKU builds PREFIX-TOKEN-RND: the first three letters of the category
// (GEN when there are none), the base-36 millisecond clock and three random
// base-36 characters, all upper case.
func NewSKU(category string, now time.Time, intn func(n int) int) string {
	prefix := make([]rune, 0, 3)
	for _, r := range strings.TrimSpace(category) {
		if len(prefix) == 3 {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			prefix = append(prefix, unicode.ToUpper(r))
		}
	}
	if len(prefix) == 0 {
		prefix = []rune("GEN")
	}

	token := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))

	suffix := make([]byte, 3)
	for i := range suffix {
		suffix[i] = base36[intn(len(base36))]
	}
	return string(prefix) + "-" + token + "-" + string(suffix)
}
