package services

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// UnknownDate выводится вместо отсутствующей даты.
const UnknownDate = "unknown date"

// localeLayout связывает поддерживаемую локаль с форматом даты и времени.
// Форматы повторяют то, как браузеры выводят дату для этих локалей.
type localeLayout struct {
	tag    language.Tag
	layout string
}

// Первая запись используется по умолчанию.
var localeLayouts = []localeLayout{
	{language.AmericanEnglish, "1/2/2006, 3:04:05 PM"},
	{language.BritishEnglish, "02/01/2006, 15:04:05"},
	{language.German, "2.1.2006, 15:04:05"},
	{language.French, "02/01/2006 15:04:05"},
	{language.Spanish, "2/1/2006, 15:04:05"},
	{language.Italian, "2/1/2006, 15:04:05"},
	{language.Russian, "02.01.2006, 15:04:05"},
	{language.Japanese, "2006/1/2 15:04:05"},
	{language.Chinese, "2006/1/2 15:04:05"},
}

var localeMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(localeLayouts))
	for i, l := range localeLayouts {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// TimeFormatter выводит время в часовом поясе и по правилам локали зрителя.
// Результат детерминирован для пары (локаль, часовой пояс).
type TimeFormatter struct {
	loc    *time.Location
	locale localeLayout
}

// NewTimeFormatter создает форматтер. Пустая или нераспознанная локаль дает en-US,
// пустой часовой пояс или "Local" означает локальный пояс процесса.
func NewTimeFormatter(locale, timezone string) (*TimeFormatter, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &TimeFormatter{loc: loc, locale: matchLocale(locale)}, nil
}

// LoadLocation загружает часовой пояс по имени IANA.
func LoadLocation(timezone string) (*time.Location, error) {
	timezone = strings.TrimSpace(timezone)
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", timezone, err)
	}
	return loc, nil
}

func matchLocale(preferred ...string) localeLayout {
	var tags []language.Tag
	for _, p := range preferred {
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return localeLayouts[0]
	}
	_, idx, confidence := localeMatcher.Match(tags...)
	if confidence == language.No {
		return localeLayouts[0]
	}
	return localeLayouts[idx]
}

// Format выводит момент времени. Нулевое время означает отсутствующую дату.
func (f *TimeFormatter) Format(t time.Time) string {
	if t.IsZero() {
		return UnknownDate
	}
	return t.In(f.loc).Format(f.locale.layout)
}

// Locale возвращает выбранную локаль в формате BCP 47.
func (f *TimeFormatter) Locale() string {
	return f.locale.tag.String()
}

// Location возвращает часовой пояс форматтера.
func (f *TimeFormatter) Location() *time.Location {
	return f.loc
}

// WithAcceptLanguage возвращает копию форматтера с локалью, выбранной по заголовку
// Accept-Language. Если заголовок пуст или не распознан, локаль не меняется.
func (f *TimeFormatter) WithAcceptLanguage(header string) *TimeFormatter {
	if strings.TrimSpace(header) == "" {
		return f
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return f
	}
	if _, _, confidence := localeMatcher.Match(tags...); confidence == language.No {
		return f
	}
	return &TimeFormatter{loc: f.loc, locale: matchLocale(header)}
}

// WithLocation возвращает копию форматтера с другим часовым поясом.
// Пустое имя оставляет текущий пояс.
func (f *TimeFormatter) WithLocation(timezone string) (*TimeFormatter, error) {
	if strings.TrimSpace(timezone) == "" {
		return f, nil
	}
	loc, err := LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &TimeFormatter{loc: loc, locale: f.locale}, nil
}
