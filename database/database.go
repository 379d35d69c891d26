package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Database представляет соединение с базой данных
type Database struct {
	db *sql.DB
}

// RunRecord представляет запись об одном запуске обучения
type RunRecord struct {
	ID            int64
	StartedAt     time.Time
	FinishedAt    *time.Time
	EpochsPlanned int
	EpochsDone    int
	BatchSize     int
	LearningRate  float64
	Momentum      float64
	FinalAccuracy float64
}

// EpochRecord представляет запись об одной эпохе обучения
type EpochRecord struct {
	ID            int64
	RunID         int64
	EpochNumber   int
	TrainLoss     float64
	TrainAccuracy float64
	TestAccuracy  float64
	DurationMS    int64
	CreatedAt     time.Time
}

// PredictionRecord представляет запись об одном предсказании
type PredictionRecord struct {
	ID         int64
	Digit      int
	Confidence float64
	Source     string // "web", "eval", "cli"
	CreatedAt  time.Time
}

// NewDatabase создает новое подключение к базе данных
func NewDatabase(dbPath string) (*Database, error) {
	// Создаем директорию если не существует
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию: %v", err)
	}

	// Открываем соединение
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть базу данных: %v", err)
	}

	database := &Database{db: db}

	// Создаем таблицы
	if err := database.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return database, nil
}

// createTables создает необходимые таблицы
func (d *Database) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		finished_at TIMESTAMP,
		epochs_planned INTEGER,
		epochs_done INTEGER,
		batch_size INTEGER,
		learning_rate FLOAT,
		momentum FLOAT,
		final_accuracy FLOAT
	);

	CREATE TABLE IF NOT EXISTS epochs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		epoch_number INTEGER NOT NULL,
		train_loss FLOAT,
		train_accuracy FLOAT,
		test_accuracy FLOAT,
		duration_ms INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE TABLE IF NOT EXISTS predictions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		digit INTEGER NOT NULL,
		confidence FLOAT,
		source TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_epochs_run_id ON epochs(run_id);
	CREATE INDEX IF NOT EXISTS idx_predictions_digit ON predictions(digit);
	`

	_, err := d.db.Exec(schema)
	return err
}

// StartRun создает новый запуск обучения в базе данных
func (d *Database) StartRun(epochsPlanned, batchSize int, learningRate, momentum float64) (int64, error) {
	result, err := d.db.Exec(
		"INSERT INTO runs (epochs_planned, batch_size, learning_rate, momentum) VALUES (?, ?, ?, ?)",
		epochsPlanned, batchSize, learningRate, momentum,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// FinishRun обновляет информацию о завершенном запуске
func (d *Database) FinishRun(runID int64, epochsDone int, finalAccuracy float64) error {
	_, err := d.db.Exec(
		"UPDATE runs SET finished_at = CURRENT_TIMESTAMP, epochs_done = ?, final_accuracy = ? WHERE id = ?",
		epochsDone, finalAccuracy, runID,
	)
	return err
}

// GetRun возвращает запись о запуске обучения
func (d *Database) GetRun(runID int64) (*RunRecord, error) {
	var r RunRecord
	var finished sql.NullTime
	var epochsDone sql.NullInt64
	var finalAccuracy sql.NullFloat64

	err := d.db.QueryRow(`
		SELECT id, started_at, finished_at, epochs_planned, epochs_done,
		       batch_size, learning_rate, momentum, final_accuracy
		FROM runs
		WHERE id = ?`, runID).Scan(
		&r.ID, &r.StartedAt, &finished, &r.EpochsPlanned, &epochsDone,
		&r.BatchSize, &r.LearningRate, &r.Momentum, &finalAccuracy)
	if err != nil {
		return nil, err
	}

	// Поля заполняются только после FinishRun
	if finished.Valid {
		r.FinishedAt = &finished.Time
	}
	if epochsDone.Valid {
		r.EpochsDone = int(epochsDone.Int64)
	}
	if finalAccuracy.Valid {
		r.FinalAccuracy = finalAccuracy.Float64
	}

	return &r, nil
}

// RecordEpoch записывает результаты эпохи в базу данных
func (d *Database) RecordEpoch(record EpochRecord) error {
	_, err := d.db.Exec(`
		INSERT INTO epochs (run_id, epoch_number, train_loss, train_accuracy, test_accuracy, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.RunID, record.EpochNumber, record.TrainLoss,
		record.TrainAccuracy, record.TestAccuracy, record.DurationMS,
	)
	return err
}

// GetRunEpochs возвращает все эпохи запуска в порядке их выполнения
func (d *Database) GetRunEpochs(runID int64) ([]EpochRecord, error) {
	rows, err := d.db.Query(`
		SELECT id, run_id, epoch_number, train_loss, train_accuracy, test_accuracy, duration_ms, created_at
		FROM epochs
		WHERE run_id = ?
		ORDER BY epoch_number`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []EpochRecord
	for rows.Next() {
		var r EpochRecord
		err := rows.Scan(&r.ID, &r.RunID, &r.EpochNumber, &r.TrainLoss,
			&r.TrainAccuracy, &r.TestAccuracy, &r.DurationMS, &r.CreatedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, nil
}

// GetTotalRuns возвращает общее количество запусков обучения в базе
func (d *Database) GetTotalRuns() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}

// GetBestAccuracy возвращает лучшую точность на тестовом наборе среди всех эпох
func (d *Database) GetBestAccuracy() (float64, error) {
	var best sql.NullFloat64
	err := d.db.QueryRow("SELECT MAX(test_accuracy) FROM epochs").Scan(&best)
	if err != nil {
		return 0, err
	}
	if !best.Valid {
		return 0, nil
	}
	return best.Float64, nil
}

// RecordPrediction записывает предсказание в базу данных
func (d *Database) RecordPrediction(digit int, confidence float64, source string) error {
	_, err := d.db.Exec(
		"INSERT INTO predictions (digit, confidence, source) VALUES (?, ?, ?)",
		digit, confidence, source,
	)
	return err
}

// GetPredictionCounts возвращает количество предсказаний для каждой цифры
func (d *Database) GetPredictionCounts() ([10]int, error) {
	var counts [10]int

	rows, err := d.db.Query("SELECT digit, COUNT(*) FROM predictions GROUP BY digit")
	if err != nil {
		return counts, err
	}
	defer rows.Close()

	for rows.Next() {
		var digit, count int
		if err := rows.Scan(&digit, &count); err != nil {
			return counts, err
		}
		if digit >= 0 && digit < 10 {
			counts[digit] = count
		}
	}

	return counts, nil
}

// Close закрывает соединение с базой данных
func (d *Database) Close() error {
	return d.db.Close()
}
