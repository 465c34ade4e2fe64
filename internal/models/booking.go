package models

import "time"

// BookingStatus статус бронирования, как он хранится в источнике данных.
type BookingStatus string

const (
	// BookingActive бронирование подтверждено, слот ещё не прошёл.
	BookingActive BookingStatus = "active"
	// BookingCompleted слот состоялся, бронирование участвует в расчёте комиссии.
	BookingCompleted BookingStatus = "completed"
	// BookingCancelled бронирование отменено, комиссия не начисляется.
	BookingCancelled BookingStatus = "cancelled"
)

// Booking представляет бронирование корта. Ядро биллинга эту сущность
// не создаёт и не изменяет, только читает для расчёта комиссии.
// Времена начала и конца приходят строками "HH:MM" или "HH:MM:SS".
type Booking struct {
	ID        int           // Идентификатор бронирования
	OwnerUID  string        // UID владельца площадки
	VenueID   int           // Идентификатор площадки
	Date      time.Time     // Календарная дата слота
	StartTime string        // Время начала слота
	EndTime   string        // Время окончания слота, может быть пустым
	Price     int           // Стоимость бронирования в минорных единицах
	Status    BookingStatus // Статус в хранилище
}

// EffectiveStatus возвращает производный статус бронирования на момент now.
// Отменённое остаётся отменённым; активное бронирование, чей слот уже
// закончился, считается завершённым и облагается комиссией.
func (b Booking) EffectiveStatus(now time.Time) BookingStatus {
	if b.Status == BookingCancelled {
		return BookingCancelled
	}
	if b.Status == BookingCompleted {
		return BookingCompleted
	}
	end := b.EndTime
	if end == "" {
		end = b.StartTime
	}
	h, m, ok := parseClock(end)
	if !ok {
		h, m = 23, 59
	}
	slotEnd := time.Date(b.Date.Year(), b.Date.Month(), b.Date.Day(), h, m, 0, 0, b.Date.Location())
	if slotEnd.Before(now) {
		return BookingCompleted
	}
	return BookingActive
}

// parseClock разбирает "HH:MM" или "HH:MM:SS", секунды игнорируются.
func parseClock(s string) (hour, minute int, ok bool) {
	if len(s) < 5 || s[2] != ':' {
		return 0, 0, false
	}
	for _, c := range s[:2] + s[3:5] {
		if c < '0' || c > '9' {
			return 0, 0, false
		}
	}
	hour = int(s[0]-'0')*10 + int(s[1]-'0')
	minute = int(s[3]-'0')*10 + int(s[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
