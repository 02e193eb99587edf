package directory

import (
	"fmt"

	"github.com/estate/estate/internal/people"
)

// V1 used its own phrasing for the status line
func onlineStatus(schema people.Schema, message string) string {
	if schema == people.SchemaV1 {
		return "Backend says: " + message
	}
	return "Online: " + message
}

func offlineStatus(schema people.Schema, err error) string {
	if schema == people.SchemaV1 {
		return fmt.Sprintf("Error connecting to backend: %v", err)
	}
	return fmt.Sprintf("Offline: %v", err)
}
