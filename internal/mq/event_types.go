package mq

import "time"

// Routing keys for the collaborator events this engine consumes. The
// publishing modules own the payloads; shapes here must stay in sync with
// them.
const (
	KeyProcessCreated      = "process.created"
	KeyPublicationRecorded = "publication.recorded"
	KeyStageAdvanced       = "process.stage_advanced"
	KeyInterviewScheduled  = "interview.scheduled"
	KeyTestScheduled       = "test.scheduled"
	KeyProcessClosed       = "process.closed"
)

type ProcessCreatedPayload struct {
	ProcessID   int64     `json:"process_id"`
	ServiceType string    `json:"service_type"`
	StartedOn   time.Time `json:"started_on"`
}

type PublicationRecordedPayload struct {
	ProcessID     int64     `json:"process_id"`
	PublicationID int64     `json:"publication_id"`
	RecordedAt    time.Time `json:"recorded_at"`
}

type StageAdvancedPayload struct {
	ProcessID int64     `json:"process_id"`
	FromStage string    `json:"from_stage"`
	ToStage   string    `json:"to_stage"`
	MovedAt   time.Time `json:"moved_at"`
}

type InterviewScheduledPayload struct {
	ProcessID    int64     `json:"process_id"`
	ScheduledFor time.Time `json:"scheduled_for"`
	RecordedAt   time.Time `json:"recorded_at"`
}

type TestScheduledPayload struct {
	ProcessID    int64     `json:"process_id"`
	ScheduledFor time.Time `json:"scheduled_for"`
	RecordedAt   time.Time `json:"recorded_at"`
}

type ProcessClosedPayload struct {
	ProcessID int64     `json:"process_id"`
	ClosedAt  time.Time `json:"closed_at"`
}
