package wellknown

const (
	// KeyActivated is the settings key for the activation flag ("1" or "0").
	KeyActivated = "theme_state"

	// KeyLastActivatedTime is the settings key for the instant the flag last flipped.
	// Value format: RFC3339 timestamp; legacy values hold epoch milliseconds.
	KeyLastActivatedTime = "theme_last_activated_time"

	// KeyAutoMode is the settings key for the active policy kind (0 = fixed window, 1 = oracle).
	KeyAutoMode = "theme_auto_mode"

	// KeyCustomStartTime is the settings key for the window start, in milliseconds since local midnight.
	KeyCustomStartTime = "theme_custom_start_time"

	// KeyCustomEndTime is the settings key for the window end, in milliseconds since local midnight.
	KeyCustomEndTime = "theme_custom_end_time"
)

// SettingsKeys lists every key the scheduler reads or writes.
var SettingsKeys = []string{
	KeyActivated,
	KeyLastActivatedTime,
	KeyAutoMode,
	KeyCustomStartTime,
	KeyCustomEndTime,
}
