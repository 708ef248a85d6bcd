package common

import "time"

var Version = "v0.4.0"

// StartTime is unix timestamp of process start, reported by /api/status.
var StartTime = time.Now().Unix()
