package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paeslab/ensayos-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int { return &n }

func TestValidateStartInput(t *testing.T) {
	examID := uuid.New()
	windowID := uuid.New()

	tests := []struct {
		name    string
		req     model.StartAttemptRequest
		wantErr error
	}{
		{"exam only", model.StartAttemptRequest{ExamID: &examID}, nil},
		{"window only", model.StartAttemptRequest{WindowID: &windowID}, nil},
		{"neither", model.StartAttemptRequest{}, ErrValidation},
		{"both", model.StartAttemptRequest{ExamID: &examID, WindowID: &windowID}, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateStartInput(tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCheckWindowedAdmission(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	window := &model.Window{
		StartsAt:        start,
		EndsAt:          start.Add(90 * time.Minute),
		DurationMinutes: 90,
	}
	exam := &model.Exam{Availability: model.AvailabilityWindowed, MaxAttempts: intPtr(2)}
	inside := start.Add(30 * time.Minute)

	tests := []struct {
		name      string
		now       time.Time
		isMember  bool
		attempted bool
		count     int
		wantErr   error
	}{
		{"eligible", inside, true, false, 0, nil},
		{"before window", start.Add(-time.Second), true, false, 0, ErrOutsideWindow},
		{"after window", window.EndsAt.Add(time.Second), true, false, 0, ErrOutsideWindow},
		{"at start boundary", start, true, false, 0, nil},
		{"at end boundary", window.EndsAt, true, false, 0, nil},
		{"not enrolled", inside, false, false, 0, ErrNotEnrolled},
		{"already attempted", inside, true, true, 0, ErrAlreadyAttempted},
		{"quota spent", inside, true, false, 2, ErrQuotaExceeded},
		// Timing outranks enrollment, enrollment outranks the window rule,
		// and the quota is always the last check.
		{"outside window and not enrolled", start.Add(-time.Hour), false, false, 0, ErrOutsideWindow},
		{"not enrolled and attempted", inside, false, true, 0, ErrNotEnrolled},
		{"attempted and quota spent", inside, true, true, 5, ErrAlreadyAttempted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkWindowedAdmission(exam, window, tt.now, tt.isMember, tt.attempted, tt.count)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCheckWindowedAdmissionUnlimitedQuota(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	window := &model.Window{StartsAt: start, EndsAt: start.Add(time.Hour)}
	exam := &model.Exam{Availability: model.AvailabilityWindowed, MaxAttempts: nil}

	err := checkWindowedAdmission(exam, window, start.Add(time.Minute), true, false, 99)
	assert.NoError(t, err)
}

func TestCheckPermanentAdmission(t *testing.T) {
	tests := []struct {
		name    string
		exam    *model.Exam
		count   int
		wantErr error
	}{
		{"eligible", &model.Exam{Availability: model.AvailabilityPermanent, MaxAttempts: intPtr(3)}, 2, nil},
		{"unlimited", &model.Exam{Availability: model.AvailabilityPermanent}, 100, nil},
		{"quota spent", &model.Exam{Availability: model.AvailabilityPermanent, MaxAttempts: intPtr(3)}, 3, ErrQuotaExceeded},
		{"over quota", &model.Exam{Availability: model.AvailabilityPermanent, MaxAttempts: intPtr(1)}, 4, ErrQuotaExceeded},
		{"windowed exam via exam_id", &model.Exam{Availability: model.AvailabilityWindowed}, 0, ErrWrongMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkPermanentAdmission(tt.exam, tt.count)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
