package model

import "github.com/google/uuid"

// Question is a four-option multiple choice question. CorrectLetter is the
// answer key (A-D) and must never reach student-facing payloads before the
// attempt review.
type Question struct {
	ID            uuid.UUID `json:"id"`
	Statement     string    `json:"statement"`
	OptionA       string    `json:"option_a"`
	OptionB       string    `json:"option_b"`
	OptionC       string    `json:"option_c"`
	OptionD       string    `json:"option_d"`
	CorrectLetter string    `json:"-"`
}

// QuestionForStudent is a question stripped of its answer key, as served to
// students while an attempt is in progress.
type QuestionForStudent struct {
	ID        uuid.UUID `json:"id"`
	Statement string    `json:"statement"`
	OptionA   string    `json:"option_a"`
	OptionB   string    `json:"option_b"`
	OptionC   string    `json:"option_c"`
	OptionD   string    `json:"option_d"`
	Position  int       `json:"position"`
}
