package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	TypeTranscodeLesson = "lesson:transcode"
	TypeGenerateVideo   = "lesson:generate_video"

	QueueTranscoding = "transcoding"
	QueueGeneration  = "generation"
)

type TranscodeLessonPayload struct {
	LessonID string `json:"lesson_id"`
}

// NewTranscodeLessonTask creates an Asynq task for transcoding a lesson's video by ID.
func NewTranscodeLessonTask(lessonID string) (*asynq.Task, error) {
	p := TranscodeLessonPayload{LessonID: lessonID}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("could not marshal transcode-lesson payload: %w", err)
	}
	return asynq.NewTask(TypeTranscodeLesson, data), nil
}

// ParseTranscodeLessonPayload parses the task payload to TranscodeLessonPayload.
func ParseTranscodeLessonPayload(t *asynq.Task) (TranscodeLessonPayload, error) {
	var p TranscodeLessonPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return TranscodeLessonPayload{}, fmt.Errorf("could not unmarshal payload: %w", err)
	}
	return p, nil
}

type GenerateVideoPayload struct {
	LessonID string `json:"lesson_id"`
}

// NewGenerateVideoTask creates an Asynq task for generating a lesson's avatar video by ID.
func NewGenerateVideoTask(lessonID string) (*asynq.Task, error) {
	p := GenerateVideoPayload{LessonID: lessonID}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("could not marshal generate-video payload: %w", err)
	}
	return asynq.NewTask(TypeGenerateVideo, data), nil
}

// ParseGenerateVideoPayload parses the task payload to GenerateVideoPayload.
func ParseGenerateVideoPayload(t *asynq.Task) (GenerateVideoPayload, error) {
	var p GenerateVideoPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return GenerateVideoPayload{}, fmt.Errorf("could not unmarshal payload: %w", err)
	}
	return p, nil
}
