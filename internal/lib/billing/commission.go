package billing

import (
	"math"
	"time"

	"github.com/magabrotheeeer/venue-billing/internal/models"
)

// DefaultDurationHours длительность, подставляемая вместо некорректного
// или отсутствующего времени окончания бронирования.
const DefaultDurationHours = 1.0

// DurationHours возвращает длительность слота в часах по строкам
// "HH:MM" или "HH:MM:SS". Некорректные строки и неположительная
// длительность деградируют до DefaultDurationHours, ошибок нет.
func DurationHours(startTime, endTime string) float64 {
	start, okStart := clockMinutes(startTime)
	end, okEnd := clockMinutes(endTime)
	if !okStart || !okEnd {
		return DefaultDurationHours
	}
	minutes := end - start
	if minutes <= 0 {
		return DefaultDurationHours
	}
	return float64(minutes) / 60
}

// Commission считает комиссию по бронированиям внутри окна цикла.
//
// Учитываются только бронирования со статусом completed и датой внутри
// [window.Start, window.End). Комиссия бронирования — округлённое
// произведение длительности в часах на ставку ratePerHour (минорные
// единицы за час). Бронирования с датой не позже trialCutoff комиссию
// не дают: пробный период вырезается из начисления.
func Commission(bookings []models.Booking, window Cycle, trialCutoff *time.Time, ratePerHour int) int {
	total := 0
	for _, b := range bookings {
		if b.Status != models.BookingCompleted {
			continue
		}
		if !window.Contains(b.Date) {
			continue
		}
		if trialCutoff != nil && !b.Date.After(*trialCutoff) {
			continue
		}
		hours := DurationHours(b.StartTime, b.EndTime)
		total += int(math.Round(hours * float64(ratePerHour)))
	}
	return total
}

// clockMinutes переводит "HH:MM[:SS]" в минуты от полуночи.
func clockMinutes(s string) (int, bool) {
	if len(s) < 5 || s[2] != ':' {
		return 0, false
	}
	for _, c := range s[:2] + s[3:5] {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
