package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatters(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"blik strips non digits", FormatBlik, "12a-34 5", "12345"},
		{"blik max 6", FormatBlik, "123456789", "123456"},
		{"card grouped", FormatCardNumber, "4111111111111111", "4111 1111 1111 1111"},
		{"card partial group", FormatCardNumber, "411111", "4111 11"},
		{"card regroups spaced input", FormatCardNumber, "4111 1111 11", "4111 1111 11"},
		{"card max 16", FormatCardNumber, "41111111111111112222", "4111 1111 1111 1111"},
		{"expiry single digit", FormatCardExpiry, "1", "1"},
		{"expiry month complete", FormatCardExpiry, "12", "12/"},
		{"expiry full", FormatCardExpiry, "1227", "12/27"},
		{"expiry reformats slash", FormatCardExpiry, "12/279", "12/27"},
		{"cvc max 3", FormatCVC, "12x34", "123"},
		{"empty", FormatCVC, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.in))
		})
	}
}

func TestMasks(t *testing.T) {
	assert.Equal(t, "BLIK ***456", MaskBlik("123456"))
	assert.Equal(t, "BLIK ***12", MaskBlik("12"))
	assert.Equal(t, "BLIK (no code)", MaskBlik(""))
	assert.Equal(t, "Card **** 1111", MaskCard("4111 1111 1111 1111"))
	assert.Equal(t, "Card **** ****", MaskCard(""))
}

func TestTimeSlots(t *testing.T) {
	at := func(hour int) time.Time {
		return time.Date(2026, 3, 14, hour, 15, 0, 0, time.UTC)
	}

	assert.Equal(t, []string{"22:00", "22:30"}, TimeSlots(at(21)))
	assert.Empty(t, TimeSlots(at(22)))
	assert.Empty(t, TimeSlots(at(23)))

	morning := TimeSlots(at(6))
	assert.Equal(t, "10:00", morning[0])
	assert.Equal(t, "22:30", morning[len(morning)-1])
	assert.Len(t, morning, 26)

	noon := TimeSlots(at(12))
	assert.Equal(t, "13:00", noon[0])
	assert.Contains(t, noon, "13:30")
	assert.NotContains(t, noon, "12:30")
}
