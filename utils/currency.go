package utils

import (
	"strconv"
	"strings"
)

// FormatRupiah memformat nominal integer Rupiah dengan pemisah ribuan,
// misal 90000 -> "Rp 90.000"
func FormatRupiah(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)

	var result []string
	for i := len(digits); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		result = append([]string{digits[start:i]}, result...)
	}

	formatted := "Rp " + strings.Join(result, ".")
	if negative {
		return "-" + formatted
	}
	return formatted
}
