package settings

// Defaults returns the factory settings tree. Categories mirror the
// dashboard surfaces: display chrome, family identity, system behavior,
// and per-widget preferences.
func Defaults() map[string]any {
	return map[string]any{
		"display": map[string]any{
			"theme":     "dark",
			"sleepTime": "22:00",
			"wakeTime":  "06:30",
		},
		"family": map[string]any{
			"name": "",
		},
		"system": map[string]any{
			"debug":      false,
			"kioskMode":  true,
			"gridPreset": "dashboard",
		},
		"photos": map[string]any{
			"intervalSeconds": 30,
			"shuffle":         true,
		},
		"clock": map[string]any{
			"format24h": false,
		},
		"weather": map[string]any{
			"postalCode": "",
			"country":    "us",
			"units":      "imperial",
		},
	}
}
