package receipt

import "time"

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewDisplayID formats the human receipt number BILL-DDMMYYYY-HHMM-XXXX from
// the store-local time and four random base-36 characters. It is not unique
// and never used as a key.
func NewDisplayID(at time.Time, intn func(n int) int) string {
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = idAlphabet[intn(len(idAlphabet))]
	}
	return "BILL-" + at.Format("02012006") + "-" + at.Format("1504") + "-" + string(suffix)
}
