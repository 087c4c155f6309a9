package weather

import (
	"errors"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-weather/internal/domain"
	"github.com/tidwall/gjson"
)

const obTimeLayout = "2006-01-02 15:04"

func parseCurrent(body []byte) (domain.Observation, error) {
	if !gjson.ValidBytes(body) {
		return domain.Observation{}, errors.New("response is not valid json")
	}

	doc := gjson.ParseBytes(body)
	cur := doc.Get("data.0")
	if !cur.Exists() {
		return domain.Observation{}, errors.New("response has no data entries")
	}

	obs := domain.Observation{
		City:          strings.TrimSpace(cur.Get("city_name").String()),
		CountryCode:   strings.TrimSpace(cur.Get("country_code").String()),
		Latitude:      cur.Get("lat").Float(),
		Longitude:     cur.Get("lon").Float(),
		TemperatureC:  cur.Get("temp").Float(),
		FeelsLikeC:    cur.Get("app_temp").Float(),
		HumidityPct:   cur.Get("rh").Float(),
		WindSpeedMS:   cur.Get("wind_spd").Float(),
		WindDirection: cur.Get("wind_cdir").String(),
		PressureMB:    cur.Get("pres").Float(),
		Description:   strings.TrimSpace(cur.Get("weather.description").String()),
		ObservedAt:    observedAt(cur),
	}

	for _, p := range doc.Get("minutely.#.precip").Array() {
		obs.PrecipNextHourMM += p.Float()
	}

	return obs, nil
}

// observedAt prefers the unix ts field and falls back to ob_time (UTC).
func observedAt(cur gjson.Result) time.Time {
	if ts := cur.Get("ts").Int(); ts > 0 {
		return time.Unix(ts, 0).UTC()
	}
	if raw := strings.TrimSpace(cur.Get("ob_time").String()); raw != "" {
		if t, err := time.ParseInLocation(obTimeLayout, raw, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}
