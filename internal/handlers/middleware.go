package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// allowedStreamParams defines the whitelist of allowed query parameters for
// the SSE spectator stream
var allowedStreamParams = map[string]bool{
	"datastar": true, // Datastar automatically sends this with client state
}

// allowedStreamSignals holds the signal names the stream patches. A
// reconnecting client can only legitimately echo these back.
var allowedStreamSignals = map[string]bool{
	"status":      true,
	"scoreboard":  true,
	"secondsLeft": true,
	"image":       true,
	"word":        true,
	"roundNumber": true,
	"drawer":      true,
	"lastGuess":   true,
	"endReason":   true,
}

// ValidateStreamRequest validates spectator stream query parameters for
// security
func ValidateStreamRequest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Check total query string length
		if len(r.URL.RawQuery) > 10000 { // 10KB limit
			http.Error(w, "Query string too large", http.StatusRequestURITooLong)
			return
		}

		// Parse query parameters
		params, err := url.ParseQuery(r.URL.RawQuery)
		if err != nil {
			http.Error(w, "Invalid query parameters", http.StatusBadRequest)
			return
		}

		// Validate against whitelist
		for key, values := range params {
			if !allowedStreamParams[key] {
				http.Error(w, "Invalid parameter", http.StatusBadRequest)
				return
			}

			switch key {
			case "datastar":
				// Datastar should only have one value
				if len(values) != 1 {
					http.Error(w, "Invalid datastar parameter", http.StatusBadRequest)
					return
				}
				// Check size limit for datastar state
				if len(values[0]) > 8192 { // 8KB limit
					http.Error(w, "Datastar state too large", http.StatusBadRequest)
					return
				}

				// Parse and validate the JSON structure
				if values[0] != "" { // Empty is OK
					var signals map[string]interface{}
					if err := json.Unmarshal([]byte(values[0]), &signals); err != nil {
						http.Error(w, "Invalid datastar JSON", http.StatusBadRequest)
						return
					}

					// Validate each signal name
					for signalName := range signals {
						if !allowedStreamSignals[signalName] {
							http.Error(w, "Invalid signal in datastar", http.StatusBadRequest)
							return
						}
					}
				}
			}
		}

		next(w, r)
	}
}
