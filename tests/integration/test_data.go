package integration

import (
	"fmt"
	"time"
)

// TestApplicant generates a unique registration payload using a timestamp
func TestApplicant(suffix string) map[string]string {
	ts := time.Now().UnixNano()
	return map[string]string{
		"name":  "Test Applicant " + suffix,
		"email": fmt.Sprintf("applicant-%d-%s@example.com", ts, suffix),
		"title": "Field Engineer",
		"phone": "5551234567",
	}
}
