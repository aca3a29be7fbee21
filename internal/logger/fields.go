package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldJobID        = "job_id"
	FieldResumeID     = "resume_id"
	FieldEvaluationID = "evaluation_id"
	FieldCandidate    = "candidate"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger. A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CandidateFields describes a candidate in a job context. Empty values are skipped.
func CandidateFields(jobID, resumeID, name string) []zap.Field {
	return StringFields(
		StringField{Key: FieldJobID, Value: jobID},
		StringField{Key: FieldResumeID, Value: resumeID},
		StringField{Key: FieldCandidate, Value: name},
	)
}

func WithCandidate(logger *zap.Logger, jobID, resumeID, name string) *zap.Logger {
	return WithFields(logger, CandidateFields(jobID, resumeID, name)...)
}
