// Package timezone renders audit timestamps in the guesthouse's local time.
//
// The zone is APP_TIMEZONE when it names an IANA location, otherwise a fixed
// zone built from APP_UTC_OFFSET_MINUTES, the same offset that drives the
// day arithmetic in package calendar.
package timezone

import (
	"fmt"
	"sync"
	"time"

	"guesthouse/config"

	"github.com/rs/zerolog/log"
)

var location = sync.OnceValue(func() *time.Location {
	cfg := config.Get()

	return resolve(cfg.App.Timezone, cfg.App.UTCOffsetMinutes)
})

func resolve(name string, offsetMinutes int) *time.Location {
	if name != "" {
		loc, err := time.LoadLocation(name)
		if err == nil {
			log.Info().Str("timezone", loc.String()).Msg("Application timezone initialized")

			return loc
		}

		log.Error().Err(err).Str("timezone", name).Msg("Unknown timezone, falling back to the configured UTC offset")
	}

	return FixedZone(offsetMinutes)
}

// FixedZone names the zone after its offset, e.g. UTC+03:00.
func FixedZone(offsetMinutes int) *time.Location {
	if offsetMinutes == 0 {
		return time.UTC
	}

	sign := '+'
	abs := offsetMinutes

	if abs < 0 {
		sign = '-'
		abs = -abs
	}

	return time.FixedZone(fmt.Sprintf("UTC%c%02d:%02d", sign, abs/60, abs%60), offsetMinutes*60)
}

func Now() time.Time {
	return time.Now().In(location())
}

func ToAppTime(t time.Time) time.Time {
	return t.In(location())
}

func GetLocation() *time.Location {
	return location()
}

// Parse reads value in the application zone when the layout carries no offset.
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, location())
}

func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}
