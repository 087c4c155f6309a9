package publishers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-weather/internal/domain"
)

// Event represents the payload published downstream.
type Event struct {
	LocationID   string             `json:"location_id"`
	LocationName string             `json:"location_name"`
	Observation  domain.Observation `json:"observation"`
	CollectedAt  time.Time          `json:"collected_at"`
}

// NewEvent constructs an Event for the given location + observation.
func NewEvent(locationID, locationName string, obs domain.Observation) Event {
	return Event{
		LocationID:   locationID,
		LocationName: locationName,
		Observation:  obs,
		CollectedAt:  time.Now().UTC(),
	}
}

// Fields returns the event as generic JSON values, keyed by its json tags.
func (e Event) Fields() (map[string]any, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return out, nil
}
