package stats

import (
	"math"
	"os"
	"testing"
)

// TestNewStatistics проверяет создание новой статистики
func TestNewStatistics(t *testing.T) {
	// Удаляем файл статистики, если он существует
	os.Remove("stats/training.json")

	stats := NewStatistics()

	if stats == nil {
		t.Fatal("NewStatistics() returned nil")
	}

	if stats.Epochs == nil {
		t.Error("Epochs slice should not be nil")
	}
}

// TestAddEpoch проверяет добавление результата эпохи
func TestAddEpoch(t *testing.T) {
	os.Remove("stats/training.json")
	stats := NewStatistics()

	result := EpochResult{
		RunID:         1,
		EpochNumber:   1,
		TrainLoss:     0.5,
		TrainAccuracy: 0.85,
		TestAccuracy:  0.82,
		DurationMS:    15000,
	}

	initialCount := len(stats.Epochs)
	stats.AddEpoch(result)

	if len(stats.Epochs) != initialCount+1 {
		t.Error("Epochs count should increase after AddEpoch")
	}

	lastEpoch := stats.Epochs[len(stats.Epochs)-1]
	if lastEpoch.EpochNumber != 1 {
		t.Errorf("Expected EpochNumber to be 1, got %d", lastEpoch.EpochNumber)
	}

	if lastEpoch.TrainLoss != 0.5 {
		t.Errorf("Expected TrainLoss to be 0.5, got %f", lastEpoch.TrainLoss)
	}
}

// TestSaveLoad проверяет сохранение и загрузку статистики
func TestSaveLoad(t *testing.T) {
	os.Remove("stats/training.json")
	stats := NewStatistics()

	result := EpochResult{
		RunID:        3,
		EpochNumber:  42,
		TrainLoss:    0.123,
		TestAccuracy: 0.91,
		DurationMS:   20000,
	}

	stats.AddEpoch(result)

	// Создаем новую статистику и загружаем
	newStats := NewStatistics()

	if len(newStats.Epochs) == 0 {
		t.Fatal("Loaded statistics should not be empty")
	}

	lastEpoch := newStats.Epochs[len(newStats.Epochs)-1]
	if lastEpoch.EpochNumber != 42 {
		t.Errorf("Expected EpochNumber to be 42, got %d", lastEpoch.EpochNumber)
	}

	if lastEpoch.TrainLoss != 0.123 {
		t.Errorf("Expected TrainLoss to be 0.123, got %f", lastEpoch.TrainLoss)
	}
}

// TestGetLossCurve проверяет кривую потерь
func TestGetLossCurve(t *testing.T) {
	os.Remove("stats/training.json")
	stats := NewStatistics()

	losses := []float64{0.9, 0.5, 0.3, 0.2}
	for i, loss := range losses {
		stats.AddEpoch(EpochResult{EpochNumber: i + 1, TrainLoss: loss})
	}

	curve := stats.GetLossCurve()
	if len(curve) != len(losses) {
		t.Fatalf("Expected %d points, got %d", len(losses), len(curve))
	}

	for i, loss := range losses {
		if curve[i] != loss {
			t.Errorf("Expected curve[%d] to be %f, got %f", i, loss, curve[i])
		}
	}
}

// TestGetBestEpoch проверяет поиск лучшей эпохи
func TestGetBestEpoch(t *testing.T) {
	os.Remove("stats/training.json")
	stats := NewStatistics()

	// Пустая статистика
	if _, ok := stats.GetBestEpoch(); ok {
		t.Error("Expected no best epoch for empty statistics")
	}

	stats.AddEpoch(EpochResult{EpochNumber: 1, TestAccuracy: 0.80})
	stats.AddEpoch(EpochResult{EpochNumber: 2, TestAccuracy: 0.92})
	stats.AddEpoch(EpochResult{EpochNumber: 3, TestAccuracy: 0.88})

	best, ok := stats.GetBestEpoch()
	if !ok {
		t.Fatal("Expected best epoch to exist")
	}

	if best.EpochNumber != 2 {
		t.Errorf("Expected best epoch to be 2, got %d", best.EpochNumber)
	}
}

// TestGetSummary проверяет сводку по обучению
func TestGetSummary(t *testing.T) {
	os.Remove("stats/training.json")
	stats := NewStatistics()

	// Пустая статистика возвращает нулевую сводку
	empty := stats.GetSummary()
	if empty.Epochs != 0 {
		t.Errorf("Expected 0 epochs in empty summary, got %d", empty.Epochs)
	}

	stats.AddEpoch(EpochResult{EpochNumber: 1, TrainLoss: 0.6, TestAccuracy: 0.8})
	stats.AddEpoch(EpochResult{EpochNumber: 2, TrainLoss: 0.4, TestAccuracy: 0.9})

	summary := stats.GetSummary()

	if summary.Epochs != 2 {
		t.Errorf("Expected 2 epochs, got %d", summary.Epochs)
	}

	if math.Abs(summary.MeanLoss-0.5) > 1e-9 {
		t.Errorf("Expected mean loss 0.5, got %f", summary.MeanLoss)
	}

	if summary.LastLoss != 0.4 {
		t.Errorf("Expected last loss 0.4, got %f", summary.LastLoss)
	}

	if summary.BestAccuracy != 0.9 {
		t.Errorf("Expected best accuracy 0.9, got %f", summary.BestAccuracy)
	}
}

// TestConcurrentAccess проверяет потокобезопасность
func TestConcurrentAccess(t *testing.T) {
	os.Remove("stats/training.json")
	stats := NewStatistics()

	// Запускаем несколько горутин для одновременного добавления эпох
	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(n int) {
			result := EpochResult{
				EpochNumber: n,
				TrainLoss:   0.5,
			}
			stats.AddEpoch(result)
			done <- true
		}(i)
	}

	// Ждем завершения всех горутин
	for i := 0; i < 10; i++ {
		<-done
	}

	if len(stats.Epochs) != 10 {
		t.Errorf("Expected 10 epochs after concurrent adds, got %d", len(stats.Epochs))
	}
}
