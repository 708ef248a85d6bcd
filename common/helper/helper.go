package helper

import "fmt"

const RequestIdKey = "X-Scriptgen-Request-Id"

func GenRequestID() (requestId string) {
	return GetTimeString() + GetRandomNumberString(8)
}

func MessageWithRequestId(message string, id string) string {
	return fmt.Sprintf("%s (request id: %s)", message, id)
}
