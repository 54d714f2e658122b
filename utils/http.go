package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by outbound API calls (the Groq scribe).
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}
