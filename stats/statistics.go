package stats

import (
	"encoding/json"
	"os"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// EpochResult представляет результат одной эпохи обучения
type EpochResult struct {
	RunID         int64   `json:"runId"`
	EpochNumber   int     `json:"epochNumber"`
	TrainLoss     float64 `json:"trainLoss"`
	TrainAccuracy float64 `json:"trainAccuracy"`
	TestAccuracy  float64 `json:"testAccuracy"`
	DurationMS    int64   `json:"durationMs"`
}

// Summary представляет сводку по всем эпохам
type Summary struct {
	Epochs       int     `json:"epochs"`
	MeanLoss     float64 `json:"meanLoss"`
	StdDevLoss   float64 `json:"stdDevLoss"`
	LastLoss     float64 `json:"lastLoss"`
	BestAccuracy float64 `json:"bestAccuracy"`
}

// Statistics хранит историю обучения
type Statistics struct {
	Epochs []EpochResult `json:"epochs"`
	mu     sync.Mutex
}

// NewStatistics создает новый объект статистики
func NewStatistics() *Statistics {
	stats := &Statistics{
		Epochs: []EpochResult{},
	}
	stats.Load()
	return stats
}

// AddEpoch добавляет результат эпохи
func (s *Statistics) AddEpoch(result EpochResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Epochs = append(s.Epochs, result)
	s.Save()
}

// GetEpochs возвращает все результаты эпох
func (s *Statistics) GetEpochs() []EpochResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Epochs
}

// Save сохраняет статистику в файл
func (s *Statistics) Save() error {
	os.MkdirAll("stats", 0755)
	file, err := os.Create("stats/training.json")
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(s)
}

// Load загружает статистику из файла
func (s *Statistics) Load() error {
	file, err := os.Open("stats/training.json")
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	return decoder.Decode(s)
}

// GetLossCurve возвращает потери по эпохам в порядке обучения
func (s *Statistics) GetLossCurve() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	curve := make([]float64, len(s.Epochs))
	for i, e := range s.Epochs {
		curve[i] = e.TrainLoss
	}
	return curve
}

// GetBestEpoch возвращает эпоху с лучшей точностью на тестовом наборе
func (s *Statistics) GetBestEpoch() (EpochResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.Epochs) == 0 {
		return EpochResult{}, false
	}

	best := s.Epochs[0]
	for _, e := range s.Epochs[1:] {
		if e.TestAccuracy > best.TestAccuracy {
			best = e
		}
	}
	return best, true
}

// GetSummary возвращает сводку по истории обучения
func (s *Statistics) GetSummary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.Epochs) == 0 {
		return Summary{}
	}

	losses := make([]float64, len(s.Epochs))
	accuracies := make([]float64, len(s.Epochs))
	for i, e := range s.Epochs {
		losses[i] = e.TrainLoss
		accuracies[i] = e.TestAccuracy
	}

	return Summary{
		Epochs:       len(s.Epochs),
		MeanLoss:     stat.Mean(losses, nil),
		StdDevLoss:   stat.StdDev(losses, nil),
		LastLoss:     losses[len(losses)-1],
		BestAccuracy: floats.Max(accuracies),
	}
}
