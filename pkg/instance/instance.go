package instance

import "os"

// GetID returns the identifier this process logs under, or "local".
func GetID() string {
	for _, key := range []string{"FROZIFY_INSTANCE_ID", "DYNO", "HOSTNAME"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
