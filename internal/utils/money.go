package utils

import (
	"fmt"
	"strconv"
	"strings"

	"busbooking/internal/domain"
)

// FormatMoney renders paise as rupees with thousand separators, e.g. "₹1,250" or "₹750.50".
func FormatMoney(amount domain.Money) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	rupees := int64(amount) / 100
	paise := int64(amount) % 100
	if paise == 0 {
		return fmt.Sprintf("%s₹%s", sign, formatThousand(rupees))
	}
	return fmt.Sprintf("%s₹%s.%02d", sign, formatThousand(rupees), paise)
}

// ParseMoney parses "₹750", "Rs 1,250.50", "INR 900" or "750" into paise.
func ParseMoney(s string) (domain.Money, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, prefix := range []string{"₹", "rs.", "rs", "inr"} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.NewReplacer(",", "", " ", "").Replace(s)
	if s == "" {
		return 0, fmt.Errorf("invalid amount")
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	rupees, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	var paise int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		if len(frac) == 1 {
			frac += "0"
		}
		paise, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
	}
	if rupees < 0 {
		return 0, fmt.Errorf("negative amount %q", s)
	}
	return domain.Money(rupees*100 + paise), nil
}

// Rupees converts whole rupees to paise.
func Rupees(n int64) domain.Money {
	return domain.Money(n * 100)
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
