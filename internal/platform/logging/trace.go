package logging

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"
)

const traceparentHeader = "traceparent"

// W3C Trace Context: {version}-{trace-id}-{parent-id}-{trace-flags}
var traceHeaderRe = regexp.MustCompile(`^([0-9a-fA-F]{2})-([0-9a-fA-F]{32})-([0-9a-fA-F]{16})-([0-9a-fA-F]{2})$`)

// traceContext is the parsed form of a traceparent header.
type traceContext struct {
	traceID string
	spanID  string
	sampled bool
}

func parseTraceparent(header string) (traceContext, bool) {
	m := traceHeaderRe.FindStringSubmatch(header)
	if len(m) != 5 {
		return traceContext{}, false
	}
	return traceContext{traceID: m[2], spanID: m[3], sampled: m[4] == "01"}, true
}

func traceResource(projectID, traceID string) string {
	return fmt.Sprintf("projects/%s/traces/%s", projectID, traceID)
}

// loggerWithTrace decorates base with the request ID and, when projectID is set and
// header is a valid traceparent, the Cloud Logging trace correlation fields.
func loggerWithTrace(base *zap.Logger, header, projectID, requestID string) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	var fields []zap.Field
	if tc, ok := parseTraceparent(header); ok && projectID != "" {
		fields = append(fields,
			zap.String("logging.googleapis.com/trace", traceResource(projectID, tc.traceID)),
			zap.String("logging.googleapis.com/spanId", tc.spanID),
			zap.Bool("logging.googleapis.com/trace_sampled", tc.sampled),
		)
	}
	if requestID != "" {
		fields = append(fields, zap.String("requestId", requestID))
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// correlationID picks the Cloud Trace resource when available, otherwise the request ID.
func correlationID(header, projectID, requestID string) string {
	if tc, ok := parseTraceparent(header); ok && projectID != "" {
		return traceResource(projectID, tc.traceID)
	}
	return requestID
}
