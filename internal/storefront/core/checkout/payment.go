package checkout

import (
	"strings"

	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
)

const (
	blikDigits   = 6
	cardDigits   = 16
	expiryDigits = 4
	cvcDigits    = 3
)

// PaymentFields are collected for display only and never sent anywhere.
type PaymentFields struct {
	BlikCode   string `json:"blik_code"`
	CardNumber string `json:"card_number"`
	CardExpiry string `json:"card_expiry"`
	CardCVC    string `json:"card_cvc"`
}

func digits(raw string, max int) string {
	var b strings.Builder
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		if b.Len() == max {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

func FormatBlik(raw string) string {
	return digits(raw, blikDigits)
}

// FormatCardNumber keeps up to 16 digits grouped in blocks of 4.
func FormatCardNumber(raw string) string {
	d := digits(raw, cardDigits)
	var b strings.Builder
	for i, r := range d {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatCardExpiry turns up to 4 digits into MM/YY. The slash appears as soon
// as the month is complete.
func FormatCardExpiry(raw string) string {
	d := digits(raw, expiryDigits)
	if len(d) < 2 {
		return d
	}
	return d[:2] + "/" + d[2:]
}

func FormatCVC(raw string) string {
	return digits(raw, cvcDigits)
}

// MaskBlik shows only the last 3 digits of the code.
func MaskBlik(code string) string {
	d := digits(code, blikDigits)
	if d == "" {
		return "BLIK (no code)"
	}
	if len(d) > 3 {
		d = d[len(d)-3:]
	}
	return "BLIK ***" + d
}

// MaskCard shows only the last 4 digits of the card number.
func MaskCard(number string) string {
	d := digits(number, cardDigits)
	if d == "" {
		return "Card **** ****"
	}
	if len(d) > 4 {
		d = d[len(d)-4:]
	}
	return "Card **** " + d
}

func maskPayment(method entity.PaymentMethod, f PaymentFields) string {
	if method == entity.PaymentCard {
		return MaskCard(f.CardNumber)
	}
	return MaskBlik(f.BlikCode)
}
