// Package client holds the shared outbound HTTP clients.
package client

import (
	"net/http"
	"time"
)

// HTTPClient carries no fixed timeout; callers bound requests with contexts.
var HTTPClient = &http.Client{}

// ImpatientHTTPClient serves short external probes (TestRail lookups).
var ImpatientHTTPClient = &http.Client{
	Timeout: 10 * time.Second,
}
