package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/openacre/loam/internal/types"
	_ "modernc.org/sqlite"
)

// SQLiteStore represents the SQLite-backed inquiry database.
type SQLiteStore struct {
	db      *sql.DB
	dbPath  string
	snapDir string

	snapshotMu sync.Mutex
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLiteStore instance.
// It initializes the database with WAL mode, applies pragmas, and runs
// migrations. An empty snapshotDir defaults to a snapshots directory next
// to the database file.
func NewSQLiteStore(dbPath, snapshotDir string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable pragmas for performance and safety
	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	// Run goose migrations
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if snapshotDir == "" {
		snapshotDir = filepath.Join(filepath.Dir(dbPath), "snapshots")
	}

	return &SQLiteStore{db: db, dbPath: dbPath, snapDir: snapshotDir}, nil
}

// enablePragmas sets SQLite pragmas for optimal performance and safety.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// inquiryColumns is the canonical column order every inquiry SELECT uses.
// scanInquiry depends on this order.
const inquiryColumns = `id, address, lot_size_acres, user_context, current_question,
	questionnaire_complete, answers, status, project_name, project_description,
	location, area_hectares, projection, total_revenue, total_costs,
	total_net_cash_flow, model_used, generation_seconds, error_message,
	processing_started_at, created_at, updated_at`

// scanInquiry reads one inquiry row from a *sql.Row or *sql.Rows scanner.
func scanInquiry(scanner interface{ Scan(dest ...any) error }) (*types.Inquiry, error) {
	var (
		inq               types.Inquiry
		complete          int
		answersJSON       string
		status            string
		projectName       string
		projectDesc       string
		location          string
		areaHectares      sql.NullFloat64
		projectionJSON    sql.NullString
		totalRevenue      sql.NullFloat64
		totalCosts        sql.NullFloat64
		totalNet          sql.NullFloat64
		modelUsed         string
		generationSeconds sql.NullFloat64
		processingStarted sql.NullString
		createdAt         string
		updatedAt         string
	)

	err := scanner.Scan(
		&inq.ID, &inq.Address, &inq.LotSizeAcres, &inq.UserContext, &inq.CurrentQuestion,
		&complete, &answersJSON, &status, &projectName, &projectDesc,
		&location, &areaHectares, &projectionJSON, &totalRevenue, &totalCosts,
		&totalNet, &modelUsed, &generationSeconds, &inq.ErrorMessage,
		&processingStarted, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	inq.QuestionnaireComplete = complete != 0
	inq.Status = types.InquiryStatus(status)

	inq.Answers = map[int]string{}
	if answersJSON != "" {
		if err := json.Unmarshal([]byte(answersJSON), &inq.Answers); err != nil {
			return nil, fmt.Errorf("parse answers: %w", err)
		}
	}

	if inq.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if inq.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if processingStarted.Valid {
		t, err := time.Parse(time.RFC3339, processingStarted.String)
		if err != nil {
			return nil, fmt.Errorf("parse processing_started_at: %w", err)
		}
		inq.ProcessingStartedAt = &t
	}

	if projectionJSON.Valid {
		var yearly []types.YearFinancials
		if err := json.Unmarshal([]byte(projectionJSON.String), &yearly); err != nil {
			return nil, fmt.Errorf("parse projection: %w", err)
		}
		inq.Result = &types.ProjectionResult{
			ProjectName:        projectName,
			ProjectDescription: projectDesc,
			Location:           location,
			AreaHectares:       areaHectares.Float64,
			YearlyFinancials:   yearly,
			TotalRevenue:       totalRevenue.Float64,
			TotalCosts:         totalCosts.Float64,
			TotalNetCashFlow:   totalNet.Float64,
			ModelUsed:          modelUsed,
			GenerationSeconds:  generationSeconds.Float64,
		}
	}

	return &inq, nil
}

// CreateInquiry opens a new pending inquiry at the first questionnaire step.
func (s *SQLiteStore) CreateInquiry(ctx context.Context, address string, lotSizeAcres float64, userContext string) (*types.Inquiry, error) {
	now := time.Now().UTC()
	inq := &types.Inquiry{
		ID:              ulid.Make().String(),
		Address:         address,
		LotSizeAcres:    lotSizeAcres,
		UserContext:     userContext,
		CurrentQuestion: 1,
		Answers:         map[int]string{},
		Status:          types.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inquiries (id, address, lot_size_acres, user_context, current_question, questionnaire_complete, answers, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, 0, '{}', ?, ?, ?)
	`, inq.ID, inq.Address, inq.LotSizeAcres, inq.UserContext, string(types.StatusPending), now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert inquiry: %w", err)
	}

	return inq, nil
}

// GetInquiry retrieves a single inquiry by ID.
func (s *SQLiteStore) GetInquiry(ctx context.Context, id string) (*types.Inquiry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE id = ?`, id)

	inq, err := scanInquiry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get inquiry: %w", err)
	}
	return inq, nil
}

// SaveAnswer records the response to one questionnaire step. Answering the
// same question again overwrites the previous response. The current question
// advances to the first unanswered step, and the questionnaire is marked
// complete once every step has a response.
func (s *SQLiteStore) SaveAnswer(ctx context.Context, id string, question int, response string) (*types.Inquiry, error) {
	if question < 1 || question > types.QuestionCount {
		return nil, ErrInvalidQuestion
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status, answersJSON string
	err = tx.QueryRowContext(ctx, `SELECT status, answers FROM inquiries WHERE id = ?`, id).Scan(&status, &answersJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load inquiry: %w", err)
	}
	if types.InquiryStatus(status) != types.StatusPending {
		return nil, ErrAlreadyProcessed
	}

	answers := map[int]string{}
	if answersJSON != "" {
		if err := json.Unmarshal([]byte(answersJSON), &answers); err != nil {
			return nil, fmt.Errorf("parse answers: %w", err)
		}
	}
	answers[question] = response

	complete := true
	current := types.QuestionCount
	for n := 1; n <= types.QuestionCount; n++ {
		if _, ok := answers[n]; !ok {
			complete = false
			current = n
			break
		}
	}
	completeInt := 0
	if complete {
		completeInt = 1
	}

	encoded, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE inquiries
		SET answers = ?, current_question = ?, questionnaire_complete = ?, updated_at = ?
		WHERE id = ?
	`, string(encoded), current, completeInt, now.Format(time.RFC3339), id); err != nil {
		return nil, fmt.Errorf("update answers: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return s.GetInquiry(ctx, id)
}

// BeginProcessing claims an inquiry for projection generation. The claim only
// succeeds when the inquiry is pending with a complete questionnaire, so two
// concurrent triggers cannot both start generating. Returns false when the
// inquiry was not claimable.
func (s *SQLiteStore) BeginProcessing(ctx context.Context, id string) (bool, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE inquiries
		SET status = ?, processing_started_at = ?, updated_at = ?
		WHERE id = ? AND status = ? AND questionnaire_complete = 1
	`, string(types.StatusProcessing), now.Format(time.RFC3339), now.Format(time.RFC3339), id, string(types.StatusPending))
	if err != nil {
		return false, fmt.Errorf("begin processing: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// CompleteWithProjection stores the generated projection and marks the inquiry
// completed. The inquiry must currently be processing.
func (s *SQLiteStore) CompleteWithProjection(ctx context.Context, id string, result *types.ProjectionResult) (*types.Inquiry, error) {
	if result == nil {
		return nil, errors.New("projection result is nil")
	}

	yearly, err := json.Marshal(result.YearlyFinancials)
	if err != nil {
		return nil, fmt.Errorf("encode projection: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE inquiries
		SET status = ?, project_name = ?, project_description = ?, location = ?,
			area_hectares = ?, projection = ?, total_revenue = ?, total_costs = ?,
			total_net_cash_flow = ?, model_used = ?, generation_seconds = ?,
			error_message = '', updated_at = ?
		WHERE id = ? AND status = ?
	`, string(types.StatusCompleted), result.ProjectName, result.ProjectDescription, result.Location,
		result.AreaHectares, string(yearly), result.TotalRevenue, result.TotalCosts,
		result.TotalNetCashFlow, result.ModelUsed, result.GenerationSeconds,
		now.Format(time.RFC3339), id, string(types.StatusProcessing))
	if err != nil {
		return nil, fmt.Errorf("complete inquiry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		if _, err := s.GetInquiry(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrNotProcessing
	}

	return s.GetInquiry(ctx, id)
}

// MarkFailed records a generation failure. The inquiry must currently be
// processing.
func (s *SQLiteStore) MarkFailed(ctx context.Context, id, message string) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE inquiries
		SET status = ?, error_message = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, string(types.StatusFailed), message, now.Format(time.RFC3339), id, string(types.StatusProcessing))
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		if _, err := s.GetInquiry(ctx, id); err != nil {
			return err
		}
		return ErrNotProcessing
	}
	return nil
}

// ListInquiries returns inquiries newest first, optionally filtered by status.
// A non-positive limit defaults to 50.
func (s *SQLiteStore) ListInquiries(ctx context.Context, status types.InquiryStatus, limit, offset int) ([]types.Inquiry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + inquiryColumns + ` FROM inquiries`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	// ULIDs sort by creation time, which breaks same-second timestamp ties.
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inquiries: %w", err)
	}
	defer rows.Close()

	var out []types.Inquiry
	for rows.Next() {
		inq, err := scanInquiry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inquiry: %w", err)
		}
		out = append(out, *inq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inquiries: %w", err)
	}
	return out, nil
}

// CountInquiries returns the total number of inquiries.
func (s *SQLiteStore) CountInquiries(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inquiries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count inquiries: %w", err)
	}
	return count, nil
}

// GetExtendedStats returns aggregate service metrics for monitoring.
func (s *SQLiteStore) GetExtendedStats(ctx context.Context) (*types.ExtendedStats, error) {
	stats := &types.ExtendedStats{
		StatusCounts: map[string]int64{},
		GenerationStats: types.GenerationStats{
			ModelCounts: map[string]int64{},
		},
		StatsAsOf: time.Now().UTC(),
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM inquiries GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count statuses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var st string
		var n int64
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		stats.StatusCounts[st] = n
		stats.TotalInquiries += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN questionnaire_complete = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN questionnaire_complete = 0 THEN 1 ELSE 0 END), 0)
		FROM inquiries
	`).Scan(&stats.QuestionnaireStats.Complete, &stats.QuestionnaireStats.InProgress)
	if err != nil {
		return nil, fmt.Errorf("questionnaire stats: %w", err)
	}

	stats.GenerationStats.Completed = stats.StatusCounts[string(types.StatusCompleted)]
	stats.GenerationStats.Failed = stats.StatusCounts[string(types.StatusFailed)]

	var avgSeconds sql.NullFloat64
	err = s.db.QueryRowContext(ctx, `SELECT AVG(generation_seconds) FROM inquiries WHERE status = ?`,
		string(types.StatusCompleted)).Scan(&avgSeconds)
	if err != nil {
		return nil, fmt.Errorf("average generation seconds: %w", err)
	}
	if avgSeconds.Valid {
		stats.GenerationStats.AverageSeconds = math.Round(avgSeconds.Float64*100) / 100
	}

	modelRows, err := s.db.QueryContext(ctx, `SELECT model_used, COUNT(*) FROM inquiries WHERE model_used != '' GROUP BY model_used`)
	if err != nil {
		return nil, fmt.Errorf("count models: %w", err)
	}
	defer modelRows.Close()
	for modelRows.Next() {
		var model string
		var n int64
		if err := modelRows.Scan(&model, &n); err != nil {
			return nil, fmt.Errorf("scan model count: %w", err)
		}
		stats.GenerationStats.ModelCounts[model] = n
	}
	if err := modelRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate model counts: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(lot_size_acres), 0), COALESCE(AVG(lot_size_acres), 0), COALESCE(MAX(lot_size_acres), 0)
		FROM inquiries
	`).Scan(&stats.LandStats.TotalAcres, &stats.LandStats.AverageAcres, &stats.LandStats.LargestAcres)
	if err != nil {
		return nil, fmt.Errorf("land stats: %w", err)
	}
	stats.LandStats.AverageAcres = math.Round(stats.LandStats.AverageAcres*100) / 100

	return stats, nil
}

// SweepStaleProcessing fails inquiries stuck in processing since before
// olderThan, such as after a crash mid-generation. Returns the number of
// inquiries swept.
func (s *SQLiteStore) SweepStaleProcessing(ctx context.Context, olderThan time.Time) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE inquiries
		SET status = ?, error_message = 'generation interrupted', updated_at = ?
		WHERE status = ? AND processing_started_at IS NOT NULL AND processing_started_at < ?
	`, string(types.StatusFailed), now.Format(time.RFC3339), string(types.StatusProcessing), olderThan.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("sweep stale processing: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// DeleteInquiry permanently removes an inquiry.
func (s *SQLiteStore) DeleteInquiry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM inquiries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete inquiry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// snapshotDir returns the directory snapshot files are written to.
func (s *SQLiteStore) snapshotDir() string {
	return s.snapDir
}

// snapshotPath returns the path of the current snapshot file.
func (s *SQLiteStore) snapshotPath() string {
	return filepath.Join(s.snapDir, "current.db")
}

// GenerateSnapshot writes a consistent copy of the database to the snapshot
// path, replacing any previous snapshot atomically. Returns
// ErrSnapshotInProgress when another snapshot is already being generated.
func (s *SQLiteStore) GenerateSnapshot(ctx context.Context) error {
	if !s.snapshotMu.TryLock() {
		return ErrSnapshotInProgress
	}
	defer s.snapshotMu.Unlock()

	if err := os.MkdirAll(s.snapshotDir(), 0755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	// VACUUM INTO refuses to overwrite, so build the snapshot in a temp
	// file and rename it over the previous one.
	tmpPath := s.snapshotPath() + ".tmp"
	if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale snapshot temp file: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("vacuum into snapshot: %w", err)
	}

	if err := os.Rename(tmpPath, s.snapshotPath()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace snapshot: %w", err)
	}

	return nil
}

// GetSnapshotPath returns the path of the current snapshot file, or
// ErrNoSnapshot when no snapshot has been generated yet.
func (s *SQLiteStore) GetSnapshotPath(ctx context.Context) (string, error) {
	path := s.snapshotPath()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoSnapshot
		}
		return "", fmt.Errorf("stat snapshot: %w", err)
	}
	return path, nil
}
