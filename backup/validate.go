package backup

import (
	"encoding/json"
	"fmt"

	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/worktime"
)

// Validate performs the structural checks on a raw blob before any
// conversion: timeEntries must be an array whose items have an id, a date,
// a numeric workedHours and a known type; weeklyTargetHours must be an
// object with a number for every weekday; absenceSettings must be an object.
func Validate(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", generic.ErrInvalidBackup, err)
	}

	entries, ok := raw["timeEntries"].([]any)
	if !ok {
		return invalid("timeEntries", "must be an array")
	}
	for i, item := range entries {
		path := fmt.Sprintf("timeEntries[%d]", i)
		e, ok := item.(map[string]any)
		if !ok {
			return invalid(path, "must be an object")
		}
		if s, _ := e["id"].(string); s == "" {
			return invalid(path+".id", "is required")
		}
		if s, _ := e["date"].(string); s == "" {
			return invalid(path+".date", "is required")
		}
		if _, ok := e["workedHours"].(float64); !ok {
			return invalid(path+".workedHours", "must be a number")
		}
		typ, _ := e["type"].(string)
		if !worktime.EntryType(typ).Valid() {
			return invalid(path+".type", "must be one of work, vacation, sick, holiday")
		}
	}

	targets, ok := raw["weeklyTargetHours"].(map[string]any)
	if !ok {
		return invalid("weeklyTargetHours", "must be an object")
	}
	for _, day := range worktime.Weekdays {
		name := worktime.WeekdayName(day)
		if _, ok := targets[name].(float64); !ok {
			return invalid("weeklyTargetHours."+name, "must be a number")
		}
	}

	if _, ok := raw["absenceSettings"].(map[string]any); !ok {
		return invalid("absenceSettings", "must be an object")
	}

	if h, present := raw["overtimeHistory"]; present && h != nil {
		if _, ok := h.([]any); !ok {
			return invalid("overtimeHistory", "must be an array")
		}
	}

	return nil
}
