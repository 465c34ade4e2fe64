// Package billing содержит чистую математику биллингового ядра:
// вычисление границ месячного цикла по якорному дню и расчёт комиссии
// по завершённым бронированиям. Пакет не обращается к хранилищу и
// не имеет побочных эффектов.
package billing

import "time"

// Cycle полуоткрытый интервал [Start, End) одного биллингового цикла
// длиной в календарный месяц.
type Cycle struct {
	Start time.Time
	End   time.Time
}

// Contains сообщает, попадает ли момент t в интервал цикла.
func (c Cycle) Contains(t time.Time) bool {
	return !t.Before(c.Start) && t.Before(c.End)
}

// LocalDateString форматирует t как календарную дату "2006-01-02"
// в локации самого t, без приведения к UTC. Используется везде, где
// дата сравнивается с датами бронирований, чтобы исключить сдвиг
// на сутки около полуночи.
func LocalDateString(t time.Time) string {
	return t.Format("2006-01-02")
}

// CycleFor возвращает биллинговый цикл, содержащий момент now,
// с якорем на дне месяца даты anchor.
//
// Кандидат начала — якорный день в месяце now; если now раньше
// кандидата, начало откатывается на месяц назад. Конец — якорный день
// следующего месяца. Если якорный день превышает число дней месяца
// (якорь 31, февраль), time.Date нормализует дату переносом на
// следующий месяц; политика выбрана намеренно и закреплена тестами.
func CycleFor(anchor, now time.Time) Cycle {
	day := anchor.Day()
	loc := now.Location()

	year, month := now.Year(), now.Month()
	start := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if now.Before(start) {
		month--
		start = time.Date(year, month, day, 0, 0, 0, 0, loc)
	}
	// Конец считается от того же счётчика месяцев, что и начало,
	// иначе нормализация якорного дня растянула бы цикл на два месяца.
	end := time.Date(year, month+1, day, 0, 0, 0, 0, loc)
	return Cycle{Start: start, End: end}
}

// TrialEnd возвращает дату окончания пробного периода:
// anchor плюс trialDays календарных дней.
func TrialEnd(anchor time.Time, trialDays int) time.Time {
	return anchor.AddDate(0, 0, trialDays)
}

// TrialDaysLeft возвращает число оставшихся дней пробного периода,
// округлённое вверх до целых суток. Для now за пределами периода
// возвращает 0.
func TrialDaysLeft(trialEnd, now time.Time) int {
	if !now.Before(trialEnd) {
		return 0
	}
	left := trialEnd.Sub(now)
	days := int(left / (24 * time.Hour))
	if left%(24*time.Hour) != 0 {
		days++
	}
	return days
}
