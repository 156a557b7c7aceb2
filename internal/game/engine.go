package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/trivialuned/trivial-bot/internal/domain"
	"github.com/trivialuned/trivial-bot/internal/store"
)

// Direction is a paging move within the current question's options.
type Direction int

const (
	Previous Direction = iota
	Next
)

// Engine drives one user's game session: confirmation, question delivery,
// answer grading, advancement and the completion/promotion decision.
//
// Every public operation serializes per user for its full duration,
// including repository and messenger calls, so events for one user apply
// in arrival order. Different users run fully in parallel.
type Engine struct {
	sessions *SessionStore
	repo     store.Repository
	loader   *QuestionLoader
	msg      Messenger

	mu    sync.Mutex
	users map[domain.UserID]*sync.Mutex
}

// NewEngine creates a session engine.
func NewEngine(sessions *SessionStore, repo store.Repository, loader *QuestionLoader, msg Messenger) *Engine {
	return &Engine{
		sessions: sessions,
		repo:     repo,
		loader:   loader,
		msg:      msg,
		users:    make(map[domain.UserID]*sync.Mutex),
	}
}

func (e *Engine) lockUser(user domain.UserID) func() {
	e.mu.Lock()
	lock, ok := e.users[user]
	if !ok {
		lock = &sync.Mutex{}
		e.users[user] = lock
	}
	e.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// sendRetry surfaces a generic retry message after a failed read. Best
// effort: the underlying failure is what gets reported.
func (e *Engine) sendRetry(ctx context.Context, user domain.UserID) {
	if err := e.msg.SendText(ctx, user, textRetry); err != nil {
		slog.Warn("failed to send retry message", "user", user, "error", err)
	}
}

// gate checks the enrollment status and emits the matching message for
// anything but an active student.
func (e *Engine) gate(ctx context.Context, user domain.UserID) error {
	status, err := e.repo.GetEnrollmentStatus(ctx, user)
	if err != nil {
		e.sendRetry(ctx, user)
		return fmt.Errorf("check enrollment: %w", err)
	}

	switch status {
	case domain.Unregistered:
		_ = e.msg.SendText(ctx, user, textNotRegistered)
		return ErrNotRegistered
	case domain.PendingApproval:
		_ = e.msg.SendText(ctx, user, textPendingApproval)
		return ErrPendingApproval
	case domain.Suspended:
		_ = e.msg.SendText(ctx, user, textSuspended)
		return ErrSuspended
	}
	return nil
}

// RequestPlay handles a play request. Active students get a fresh session
// awaiting confirmation, unconditionally superseding any prior session,
// plus a confirmation prompt. Returns the snapshot level.
func (e *Engine) RequestPlay(ctx context.Context, user domain.UserID) (int, error) {
	unlock := e.lockUser(user)
	defer unlock()

	if err := e.gate(ctx, user); err != nil {
		return 0, err
	}

	student, err := e.repo.GetStudent(ctx, user)
	if err != nil {
		e.sendRetry(ctx, user)
		return 0, fmt.Errorf("load student: %w", err)
	}
	if student == nil {
		// Active enrollment without a student row is a data integrity
		// problem, not a gating outcome.
		e.sendRetry(ctx, user)
		return 0, fmt.Errorf("active enrollment but no student record for user %d", user)
	}

	level, err := e.repo.GetCurrentLevel(ctx, student.ID)
	if err != nil {
		e.sendRetry(ctx, user)
		return 0, fmt.Errorf("load student level: %w", err)
	}

	sess := &GameSession{
		User:        user,
		StudentID:   student.ID,
		StudentName: student.Name,
		Level:       level,
		Phase:       AwaitingConfirmation,
	}
	e.sessions.Put(user, sess)

	ref, err := e.msg.SendConfirmation(ctx, user, student.Name, level)
	if err != nil {
		return 0, fmt.Errorf("send confirmation prompt: %w", err)
	}
	sess.LastMsg = ref

	slog.Info("play requested", "user", user, "student_id", student.ID, "level", level)
	return level, nil
}

// Confirm starts the game for a session awaiting confirmation.
func (e *Engine) Confirm(ctx context.Context, user domain.UserID) error {
	unlock := e.lockUser(user)
	defer unlock()

	sess, ok := e.sessions.Get(user)
	if !ok || sess.Phase != AwaitingConfirmation {
		_ = e.msg.SendText(ctx, user, textRestartHint)
		return ErrInvalidState
	}

	questions, err := e.loader.Load(ctx, sess.Level)
	if err != nil {
		e.sendRetry(ctx, user)
		return err
	}

	if len(questions) == 0 {
		e.sessions.Remove(user)
		_ = e.msg.SendText(ctx, user, textNoQuestions(sess.Level))
		slog.Info("no questions for level", "user", user, "level", sess.Level)
		return ErrNoQuestions
	}

	// Drop the confirmation prompt; the game replaces it.
	if sess.LastMsg != (MessageRef{}) {
		if err := e.msg.Delete(ctx, sess.LastMsg); err != nil {
			slog.Warn("failed to delete confirmation prompt", "user", user, "error", err)
		}
	}

	sess.Questions = questions
	sess.Cursor = 0
	sess.Phase = InProgress

	if err := e.msg.SendText(ctx, user, textGameStart(sess.Level, len(questions))); err != nil {
		return fmt.Errorf("send game start: %w", err)
	}

	slog.Info("game started", "user", user, "level", sess.Level, "questions", len(questions))
	return e.deliverCurrent(ctx, sess)
}

// Cancel tears down a session awaiting confirmation.
func (e *Engine) Cancel(ctx context.Context, user domain.UserID) error {
	unlock := e.lockUser(user)
	defer unlock()

	sess, ok := e.sessions.Get(user)
	if !ok || sess.Phase != AwaitingConfirmation {
		return ErrInvalidState
	}

	if sess.LastMsg != (MessageRef{}) {
		if err := e.msg.Delete(ctx, sess.LastMsg); err != nil {
			slog.Warn("failed to delete confirmation prompt", "user", user, "error", err)
		}
	}

	e.sessions.Remove(user)
	slog.Info("game cancelled", "user", user)
	return e.msg.SendText(ctx, user, textFarewell)
}

// Answer grades the selected option (1-based) for the current question,
// records the attempt and advances the session. Answers are single-shot:
// the question message loses its controls once graded. A failed attempt
// write is logged but never blocks advancement.
func (e *Engine) Answer(ctx context.Context, user domain.UserID, option int) error {
	unlock := e.lockUser(user)
	defer unlock()

	sess, ok := e.sessions.Get(user)
	if !ok || sess.Phase != InProgress {
		return ErrInvalidState
	}

	q := sess.Current()
	correct := q.IsCorrect(option)

	result := textIncorrect(q.Explanation)
	if correct {
		result = textCorrect(q.Explanation)
	}
	if err := e.msg.EditText(ctx, sess.LastMsg, result); err != nil {
		return fmt.Errorf("edit graded question: %w", err)
	}

	if err := e.repo.UpsertAttempt(ctx, sess.StudentID, q.ID, correct); err != nil {
		// Grading takes priority over write durability: advance anyway.
		slog.Error("failed to record attempt",
			"user", user,
			"student_id", sess.StudentID,
			"question_id", q.ID,
			"error", err)
	}

	sess.Cursor++
	sess.Page = 0

	slog.Info("answer graded",
		"user", user,
		"question_id", q.ID,
		"correct", correct,
		"cursor", sess.Cursor,
		"total", len(sess.Questions))

	if sess.Exhausted() {
		sess.Phase = Finished
		e.sessions.Remove(user)
		return e.finishBatch(ctx, sess)
	}

	return e.deliverCurrent(ctx, sess)
}

// Navigate moves the option page of the current question. Only meaningful
// for a paginated question with more than 2 options; out-of-range moves
// are silently ignored. Never advances the cursor, never grades.
func (e *Engine) Navigate(ctx context.Context, user domain.UserID, dir Direction) error {
	unlock := e.lockUser(user)
	defer unlock()

	sess, ok := e.sessions.Get(user)
	if !ok || sess.Phase != InProgress {
		return ErrInvalidState
	}

	q := sess.Current()
	if sess.Mode != domain.DisplayPaginated || q.OptionCount() <= 2 {
		return nil
	}

	page := sess.Page
	if dir == Next {
		page++
	} else {
		page--
	}
	if page < 0 || page >= q.OptionCount() {
		return nil
	}

	sess.Page = page
	return e.msg.EditQuestion(ctx, sess.LastMsg, e.questionView(sess))
}

// CheckPromotion handles an explicit promotion-status request outside
// active play. Same predicate and promotion action as the end-of-batch
// check, with richer messaging.
func (e *Engine) CheckPromotion(ctx context.Context, user domain.UserID) error {
	unlock := e.lockUser(user)
	defer unlock()

	if err := e.gate(ctx, user); err != nil {
		return err
	}

	student, err := e.repo.GetStudent(ctx, user)
	if err != nil || student == nil {
		e.sendRetry(ctx, user)
		if err != nil {
			return fmt.Errorf("load student: %w", err)
		}
		return fmt.Errorf("active enrollment but no student record for user %d", user)
	}

	level, err := e.repo.GetCurrentLevel(ctx, student.ID)
	if err != nil {
		e.sendRetry(ctx, user)
		return fmt.Errorf("load student level: %w", err)
	}

	total, err := e.repo.CountActiveQuestions(ctx, level)
	if err != nil {
		e.sendRetry(ctx, user)
		return fmt.Errorf("count level questions: %w", err)
	}

	remaining, err := e.repo.CountRemainingUnanswered(ctx, student.ID, level)
	if err != nil {
		e.sendRetry(ctx, user)
		return fmt.Errorf("count remaining questions: %w", err)
	}

	if remaining > 0 {
		return e.msg.SendText(ctx, user, textPromotionPending(student.Name, level, total-remaining, total))
	}

	nextCount, err := e.repo.CountActiveQuestions(ctx, level+1)
	if err != nil {
		e.sendRetry(ctx, user)
		return fmt.Errorf("count next level questions: %w", err)
	}
	if nextCount == 0 {
		return e.msg.SendText(ctx, user, textPromotionMax(student.Name, level, total))
	}

	if err := e.repo.PromoteLevel(ctx, student.ID); err != nil {
		e.sendRetry(ctx, user)
		return fmt.Errorf("promote student: %w", err)
	}

	slog.Info("student promoted", "user", user, "student_id", student.ID, "new_level", level+1)
	return e.msg.SendText(ctx, user, textPromotionSuccess(student.Name, level, level+1, total))
}

// finishBatch runs the completion check once a session exhausts its
// question list. Promotion happens only when no active question of the
// level remains unanswered across all of the student's sessions.
func (e *Engine) finishBatch(ctx context.Context, sess *GameSession) error {
	remaining, err := e.repo.CountRemainingUnanswered(ctx, sess.StudentID, sess.Level)
	if err != nil {
		e.sendRetry(ctx, sess.User)
		return fmt.Errorf("count remaining questions: %w", err)
	}

	if remaining > 0 {
		slog.Info("batch complete",
			"user", sess.User, "level", sess.Level, "remaining", remaining)
		return e.msg.SendText(ctx, sess.User, textBatchComplete)
	}

	if err := e.repo.PromoteLevel(ctx, sess.StudentID); err != nil {
		e.sendRetry(ctx, sess.User)
		return fmt.Errorf("promote student: %w", err)
	}

	slog.Info("level completed, student promoted",
		"user", sess.User, "student_id", sess.StudentID, "new_level", sess.Level+1)
	return e.msg.SendText(ctx, sess.User, textLevelUp(sess.Level+1))
}

// deliverCurrent formats and sends the question at the cursor, honoring
// the student's display preference, and records the message handle for
// later edits.
func (e *Engine) deliverCurrent(ctx context.Context, sess *GameSession) error {
	mode, err := e.repo.GetDisplayPreference(ctx, sess.StudentID)
	if err != nil {
		// Preference is cosmetic; fall back rather than block the game.
		slog.Warn("display preference unavailable, using extended mode",
			"user", sess.User, "error", err)
		mode = domain.DisplayExtended
	}
	sess.Mode = mode
	sess.Page = 0

	ref, err := e.msg.SendQuestion(ctx, sess.User, e.questionView(sess))
	if err != nil {
		return fmt.Errorf("send question: %w", err)
	}
	sess.LastMsg = ref

	q := sess.Current()
	slog.Info("question delivered",
		"user", sess.User,
		"question_id", q.ID,
		"index", sess.Cursor+1,
		"total", len(sess.Questions))
	return nil
}

func (e *Engine) questionView(sess *GameSession) QuestionView {
	q := sess.Current()
	return QuestionView{
		Level:     sess.Level,
		Index:     sess.Cursor + 1,
		Total:     len(sess.Questions),
		Prompt:    q.Prompt,
		Options:   q.Options,
		Paginated: sess.Mode == domain.DisplayPaginated && q.OptionCount() > 2,
		Page:      sess.Page,
	}
}
