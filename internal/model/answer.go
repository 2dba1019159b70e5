package model

import (
	"time"

	"github.com/google/uuid"
)

// Answer is a student's recorded choice for one question of an attempt
// ("respuesta"). There is at most one row per (attempt, question); later
// submissions overwrite it with no history kept.
type Answer struct {
	AttemptID   uuid.UUID `json:"attempt_id"`
	QuestionID  uuid.UUID `json:"question_id"`
	GivenLetter string    `json:"given_letter"`
	IsCorrect   bool      `json:"is_correct"`
	AnsweredAt  time.Time `json:"answered_at"`
}

// SubmitAnswerRequest is the payload for recording one answer.
// GivenLetter is normalized to uppercase; only A-D are accepted.
type SubmitAnswerRequest struct {
	QuestionID  uuid.UUID `json:"question_id" binding:"required"`
	GivenLetter string    `json:"given_letter" binding:"required,len=1"`
}
