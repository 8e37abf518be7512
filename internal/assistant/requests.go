package assistant

import (
	"fmt"
	"time"
	_ "time/tzdata" // зоны есть и в образах без /usr/share/zoneinfo
)

// NewNluRequest подставляет дефолты (es-CL, America/Santiago) и
// проверяет, что таймзона есть в IANA.
func NewNluRequest(text, locale, timezone string, hints map[string]any, taxonomy []string) (NluRequest, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	if timezone == "" {
		timezone = DefaultTimezone
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return NluRequest{}, &ValidationError{Msg: fmt.Sprintf("timezone: unknown zone %q", timezone)}
	}

	return NluRequest{
		Text:     text,
		Locale:   locale,
		Timezone: timezone,
		Hints:    hints,
		Taxonomy: taxonomy,
		loc:      loc,
	}, nil
}

// Location — для запросов в обход NewNluRequest берём дефолтную зону.
func (r NluRequest) Location() *time.Location {
	if r.loc != nil {
		return r.loc
	}
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}
