package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/trivialuned/trivial-bot/internal/domain"
	"github.com/trivialuned/trivial-bot/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS students (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cid INTEGER NOT NULL UNIQUE,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		view_mode TEXT NOT NULL DEFAULT '1',
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS subject (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'A'
	);

	CREATE TABLE IF NOT EXISTS student_subject (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		id_student INTEGER NOT NULL,
		id_subject INTEGER NOT NULL,
		state TEXT NOT NULL DEFAULT 'P',
		level INTEGER NOT NULL DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS idx_student_subject_student ON student_subject(id_student);

	CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		id_subject INTEGER NOT NULL,
		state TEXT NOT NULL DEFAULT 'A',
		level INTEGER NOT NULL,
		question TEXT NOT NULL,
		solution INTEGER NOT NULL,
		why TEXT NOT NULL DEFAULT '',
		answer1 TEXT NOT NULL,
		answer2 TEXT NOT NULL,
		answer3 TEXT,
		answer4 TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_questions_level ON questions(level, state);

	CREATE TABLE IF NOT EXISTS student_question (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		id_student INTEGER NOT NULL,
		id_question INTEGER NOT NULL,
		num_attempts INTEGER NOT NULL DEFAULT 0,
		mistake_number INTEGER NOT NULL DEFAULT 0,
		first_attempt INTEGER NOT NULL DEFAULT 0,
		second_attempt INTEGER NOT NULL DEFAULT 0,
		first_attempt_date INTEGER NOT NULL,
		last_attempt_date INTEGER NOT NULL,
		UNIQUE(id_student, id_question)
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// GetEnrollmentStatus returns the approval state for a chat participant.
// The latest student_subject row wins, matching administrative updates.
func (s *SQLiteStore) GetEnrollmentStatus(ctx context.Context, user domain.UserID) (domain.EnrollmentStatus, error) {
	query := `
		SELECT ss.state
		FROM student_subject ss
		JOIN students st ON st.id = ss.id_student
		WHERE st.cid = ?
		ORDER BY ss.id DESC LIMIT 1`

	var state string
	err := s.db.QueryRowContext(ctx, query, int64(user)).Scan(&state)
	if err == sql.ErrNoRows {
		return domain.Unregistered, nil
	}
	if err != nil {
		return domain.Unregistered, fmt.Errorf("query enrollment state: %w", err)
	}

	switch state {
	case "A":
		return domain.Active, nil
	case "P":
		return domain.PendingApproval, nil
	case "B":
		return domain.Suspended, nil
	default:
		return domain.Unregistered, fmt.Errorf("unknown enrollment state %q", state)
	}
}

// GetStudent retrieves the student record for a chat participant.
func (s *SQLiteStore) GetStudent(ctx context.Context, user domain.UserID) (*domain.Student, error) {
	query := `SELECT id, cid, name, email FROM students WHERE cid = ?`

	var st domain.Student
	var cid int64
	err := s.db.QueryRowContext(ctx, query, int64(user)).Scan(&st.ID, &cid, &st.Name, &st.Email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan student row: %w", err)
	}

	st.ChatID = domain.UserID(cid)
	return &st, nil
}

// RegisterStudent creates a student pending approval, enrolled at level 1
// in every active subject.
func (s *SQLiteStore) RegisterStudent(ctx context.Context, user domain.UserID, name, email string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registration: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO students (cid, name, email, created_at) VALUES (?, ?, ?, ?)`,
		int64(user), name, email, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert student: %w", err)
	}

	studentID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("student insert id: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO student_subject (id_student, id_subject, state, level)
		 SELECT ?, id, 'P', 1 FROM subject WHERE status = 'A'`,
		studentID,
	)
	if err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit registration: %w", err)
	}
	return nil
}

// GetCurrentLevel returns the student's current level, defaulting to 1.
func (s *SQLiteStore) GetCurrentLevel(ctx context.Context, studentID int64) (int, error) {
	var level int
	err := s.db.QueryRowContext(ctx,
		`SELECT level FROM student_subject WHERE id_student = ? LIMIT 1`, studentID,
	).Scan(&level)
	if err == sql.ErrNoRows {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query student level: %w", err)
	}
	return level, nil
}

// LoadActiveQuestions returns the active questions for a level ordered by id.
func (s *SQLiteStore) LoadActiveQuestions(ctx context.Context, level int) ([]domain.Question, error) {
	query := `
		SELECT id, id_subject, level, question, solution, why,
		       answer1, answer2, answer3, answer4
		FROM questions
		WHERE level = ? AND state = 'A'
		ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, level)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close question rows", "error", closeErr)
		}
	}()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		var answer1, answer2 string
		var answer3, answer4 sql.NullString

		if err := rows.Scan(
			&q.ID, &q.SubjectID, &q.Level, &q.Prompt, &q.Solution, &q.Explanation,
			&answer1, &answer2, &answer3, &answer4,
		); err != nil {
			return nil, fmt.Errorf("scan question row: %w", err)
		}

		q.Options = []string{answer1, answer2}
		// A question carries either 2 or 4 options; a lone third option
		// is treated as a 2-option question, matching the source data.
		if answer3.Valid && answer4.Valid {
			q.Options = append(q.Options, answer3.String, answer4.String)
		}
		questions = append(questions, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate question rows: %w", err)
	}

	return questions, nil
}

// GetDisplayPreference returns how the student wants options rendered.
func (s *SQLiteStore) GetDisplayPreference(ctx context.Context, studentID int64) (domain.DisplayMode, error) {
	var mode string
	err := s.db.QueryRowContext(ctx,
		`SELECT view_mode FROM students WHERE id = ?`, studentID,
	).Scan(&mode)
	if err == sql.ErrNoRows {
		return domain.DisplayExtended, nil
	}
	if err != nil {
		return domain.DisplayExtended, fmt.Errorf("query view mode: %w", err)
	}

	if mode == "2" {
		return domain.DisplayPaginated, nil
	}
	return domain.DisplayExtended, nil
}

// SetDisplayPreference updates the student's rendering preference.
func (s *SQLiteStore) SetDisplayPreference(ctx context.Context, studentID int64, mode domain.DisplayMode) error {
	value := "1"
	if mode == domain.DisplayPaginated {
		value = "2"
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE students SET view_mode = ? WHERE id = ?`, value, studentID,
	)
	if err != nil {
		return fmt.Errorf("update view mode: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("student %d not found", studentID)
	}
	return nil
}

// UpsertAttempt records one submitted answer. The whole scoring rule lives
// in a single conflict-update statement so counters never drift under
// concurrent writes. Retries on SQLite busy/locked conflicts.
func (s *SQLiteStore) UpsertAttempt(ctx context.Context, studentID, questionID int64, isCorrect bool) error {
	maxRetries := 3
	baseDelay := 50 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = s.upsertAttemptOnce(ctx, studentID, questionID, isCorrect)
		if err == nil {
			return nil
		}

		if shared.IsSQLiteConflictError(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i)
			slog.Debug("attempt upsert hit SQLITE_BUSY, retrying",
				"student_id", studentID,
				"question_id", questionID,
				"attempt", i+1,
				"delay", delay)
			time.Sleep(delay)
			continue
		}
		break
	}

	return fmt.Errorf("upsert attempt for student %d question %d: %w", studentID, questionID, err)
}

func (s *SQLiteStore) upsertAttemptOnce(ctx context.Context, studentID, questionID int64, isCorrect bool) error {
	mistake := 1
	correct := 0
	if isCorrect {
		mistake = 0
		correct = 1
	}
	now := time.Now().Unix()

	// On insert this is the 1st attempt: first_attempt carries the result.
	// On conflict the new attempt count decides which flag (if any) the
	// result lands in; the 3rd and later attempts touch neither flag.
	query := `
	INSERT INTO student_question (
		id_student, id_question, num_attempts, mistake_number,
		first_attempt, second_attempt, first_attempt_date, last_attempt_date
	) VALUES (?, ?, 1, ?, ?, 0, ?, ?)
	ON CONFLICT(id_student, id_question) DO UPDATE SET
		num_attempts = student_question.num_attempts + 1,
		mistake_number = student_question.mistake_number + excluded.mistake_number,
		second_attempt = CASE
			WHEN student_question.num_attempts + 1 = 2 THEN excluded.first_attempt
			ELSE student_question.second_attempt
		END,
		last_attempt_date = excluded.last_attempt_date`

	_, err := s.db.ExecContext(ctx, query,
		studentID, questionID, mistake, correct, now, now,
	)
	return err
}

// CountRemainingUnanswered returns how many of the level's active questions
// the student has never answered, across any number of sessions.
func (s *SQLiteStore) CountRemainingUnanswered(ctx context.Context, studentID int64, level int) (int, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM questions WHERE level = ? AND state = 'A') -
			(SELECT COUNT(DISTINCT sq.id_question)
			 FROM student_question sq
			 JOIN questions q ON q.id = sq.id_question
			 WHERE sq.id_student = ? AND q.level = ? AND q.state = 'A')`

	var remaining int
	if err := s.db.QueryRowContext(ctx, query, level, studentID, level).Scan(&remaining); err != nil {
		return 0, fmt.Errorf("count remaining questions: %w", err)
	}
	return remaining, nil
}

// CountActiveQuestions returns the number of active questions at a level.
func (s *SQLiteStore) CountActiveQuestions(ctx context.Context, level int) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE level = ? AND state = 'A'`, level,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active questions: %w", err)
	}
	return count, nil
}

// MaxLevel returns the highest level with active questions.
func (s *SQLiteStore) MaxLevel(ctx context.Context) (int, error) {
	var max int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(level), 1) FROM questions WHERE state = 'A'`,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("query max level: %w", err)
	}
	return max, nil
}

// PromoteLevel increments the student's level by one.
func (s *SQLiteStore) PromoteLevel(ctx context.Context, studentID int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE student_subject SET level = level + 1 WHERE id_student = ?`, studentID,
	)
	if err != nil {
		return fmt.Errorf("promote student: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		slog.Warn("PromoteLevel affected 0 rows", "student_id", studentID)
	}
	return nil
}
