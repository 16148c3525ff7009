package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/dms-admin-api/internal/models"
	appErrors "github.com/noah-isme/dms-admin-api/pkg/errors"
)

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// ParseWeekday accepts full or abbreviated English day names.
func ParseWeekday(raw string) (time.Weekday, error) {
	day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return time.Sunday, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown weekday %q", raw))
	}
	return day, nil
}

// CompleteLesson logs one lesson on an active card. Crossing the ceiling
// moves the lesson to renewal_needed and is reported as such.
func CompleteLesson(lesson *models.LessonSchedule) (models.LessonOutcome, error) {
	if state := lesson.State(); state != models.LessonStateActive {
		return "", appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot complete a lesson while %s", state))
	}
	lesson.CurrentLessonNumber++
	if lesson.CurrentLessonNumber > lesson.MaxLessons {
		return models.LessonOutcomeRenewalNeeded, nil
	}
	return models.LessonOutcomeCompleted, nil
}

// RenewCard starts a new card on an exhausted or inactive lesson.
func RenewCard(lesson *models.LessonSchedule, cardNumber string) error {
	cardNumber = strings.TrimSpace(cardNumber)
	if cardNumber == "" {
		return appErrors.Clone(appErrors.ErrValidation, "card number is required")
	}
	if state := lesson.State(); state == models.LessonStateActive {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "card is still active")
	}
	lesson.LessonCardNumber = cardNumber
	lesson.CurrentLessonNumber = 1
	lesson.Active = true
	return nil
}

// Deactivate stops a lesson without touching its counters.
func Deactivate(lesson *models.LessonSchedule) {
	lesson.Active = false
}

// GenerateRecurring expands base into one lesson per (week, weekday) in
// chronological order. Lesson numbers continue from base and emission stops at
// the card ceiling, so a recurrence never spans two cards.
func GenerateRecurring(base models.LessonSchedule, rec models.Recurrence) ([]models.LessonSchedule, error) {
	if rec.Weeks <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "weeks must be positive")
	}
	days, err := distinctWeekdays(rec.Days)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one day is required")
	}
	if rec.FrequencyPerWeek > 0 && rec.FrequencyPerWeek != len(days) {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("frequencyPerWeek %d does not match %d selected days", rec.FrequencyPerWeek, len(days)))
	}
	if base.MaxLessons <= 0 {
		base.MaxLessons = models.DefaultMaxLessons
	}
	if base.CurrentLessonNumber <= 0 {
		base.CurrentLessonNumber = 1
	}
	if base.CurrentLessonNumber > base.MaxLessons {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "card is exhausted, renew before scheduling")
	}

	start := base.StartDate
	offsets := make([]int, len(days))
	for i, day := range days {
		offsets[i] = (int(day) - int(start.Weekday()) + 7) % 7
	}
	sort.Ints(offsets)

	normalized := models.Recurrence{FrequencyPerWeek: len(days), Weeks: rec.Weeks}
	for _, off := range offsets {
		normalized.Days = append(normalized.Days, start.AddDate(0, 0, off).Weekday().String())
	}

	var out []models.LessonSchedule
	number := base.CurrentLessonNumber
	for week := 0; week < rec.Weeks; week++ {
		for _, off := range offsets {
			if number > base.MaxLessons {
				return out, nil
			}
			date := start.AddDate(0, 0, week*7+off)
			lesson := base
			lesson.ID = ""
			lesson.StartDate = date
			lesson.DayOfWeek = date.Weekday().String()
			lesson.CurrentLessonNumber = number
			lesson.Active = true
			r := normalized
			lesson.Recurrence = &r
			out = append(out, lesson)
			number++
		}
	}
	return out, nil
}

func distinctWeekdays(raw []string) ([]time.Weekday, error) {
	seen := make(map[time.Weekday]struct{}, len(raw))
	var days []time.Weekday
	for _, name := range raw {
		day, err := ParseWeekday(name)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	return days, nil
}
