package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paeslab/ensayos-backend/internal/config"
	"github.com/paeslab/ensayos-backend/internal/database"
	"github.com/paeslab/ensayos-backend/internal/logger"
	"github.com/paeslab/ensayos-backend/internal/model"
	"github.com/paeslab/ensayos-backend/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a small demo dataset: one cohort with a teacher and three students,
// a permanent practice exam and a windowed exam with a window opening now.
// Intended for local development only.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)

	hash, err := bcrypt.GenerateFromPassword([]byte("demo1234"), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash demo password")
	}

	// ─── Cohort ────────────────────────────────────────────────────────
	var cohortID int
	err = pool.QueryRow(ctx,
		`INSERT INTO cohorts (name) VALUES ($1) RETURNING id`,
		"4° Medio A",
	).Scan(&cohortID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create cohort")
	}

	// ─── Users ─────────────────────────────────────────────────────────
	teacher := &model.User{
		Name:         "Profesora Rojas",
		Email:        "rojas@demo.local",
		PasswordHash: string(hash),
		Role:         model.RoleTeacher,
	}
	if err := userRepo.Create(ctx, teacher); err != nil {
		log.Fatal().Err(err).Msg("Failed to create teacher")
	}
	if err := userRepo.AddCohortMember(ctx, &model.CohortMember{
		CohortID: cohortID, UserID: teacher.ID, Role: model.CohortRoleTeacher,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to enroll teacher")
	}

	studentNames := []string{"Valentina Soto", "Matías Pérez", "Camila Díaz"}
	for i, name := range studentNames {
		student := &model.User{
			Name:         name,
			Email:        fmt.Sprintf("student%d@demo.local", i+1),
			PasswordHash: string(hash),
			Role:         model.RoleStudent,
		}
		if err := userRepo.Create(ctx, student); err != nil {
			log.Fatal().Err(err).Msg("Failed to create student")
		}
		if err := userRepo.AddCohortMember(ctx, &model.CohortMember{
			CohortID: cohortID, UserID: student.ID, Role: model.CohortRoleStudent,
		}); err != nil {
			log.Fatal().Err(err).Msg("Failed to enroll student")
		}
	}

	// ─── Exams ─────────────────────────────────────────────────────────
	practiceID := seedExam(ctx, pool, log, "Ensayo PAES Matemática (práctica)", teacher.ID, model.AvailabilityPermanent, 3)
	windowedID := seedExam(ctx, pool, log, "Ensayo PAES Matemática (oficial)", teacher.ID, model.AvailabilityWindowed, 0)

	// ─── Window opening now ────────────────────────────────────────────
	startsAt := time.Now().Truncate(time.Minute)
	endsAt := startsAt.Add(90 * time.Minute)
	_, err = pool.Exec(ctx,
		`INSERT INTO exam_windows (exam_id, cohort_id, starts_at, ends_at, duration_minutes, period)
		 VALUES ($1, $2, $3, $4, $5, tstzrange($3, $4, '[]'))`,
		windowedID, cohortID, startsAt, endsAt, 90)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create window")
	}

	fmt.Println("Demo data seeded:")
	fmt.Printf("  cohort %d (%d students)\n", cohortID, len(studentNames))
	fmt.Printf("  practice exam %s\n", practiceID)
	fmt.Printf("  windowed exam %s (window %s - %s)\n", windowedID,
		startsAt.Format(time.RFC3339), endsAt.Format(time.RFC3339))
}

func seedExam(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, title string, authorID int, availability model.Availability, maxAttempts int) uuid.UUID {
	var examID uuid.UUID
	var quota *int
	if maxAttempts > 0 {
		quota = &maxAttempts
	}
	err := pool.QueryRow(ctx,
		`INSERT INTO exams (title, author_id, availability, max_attempts)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		title, authorID, availability, quota,
	).Scan(&examID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create exam")
	}

	questions := []struct {
		statement string
		correct   string
	}{
		{"¿Cuál es el valor de 2 + 2 × 3?", "B"},
		{"Si f(x) = x² - 1, ¿cuánto vale f(3)?", "C"},
		{"¿Cuál es la pendiente de la recta y = 4x + 7?", "A"},
	}
	for i, q := range questions {
		var questionID uuid.UUID
		err := pool.QueryRow(ctx,
			`INSERT INTO questions (statement, option_a, option_b, option_c, option_d, correct_letter)
			 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			q.statement, "Opción A", "Opción B", "Opción C", "Opción D", q.correct,
		).Scan(&questionID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create question")
		}
		_, err = pool.Exec(ctx,
			`INSERT INTO exam_questions (exam_id, question_id, position) VALUES ($1, $2, $3)`,
			examID, questionID, i+1)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to link question")
		}
	}
	return examID
}
