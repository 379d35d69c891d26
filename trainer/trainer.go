package trainer

import (
	"fmt"
	"time"

	"mnist-ai/database"
	"mnist-ai/dataset"
	"mnist-ai/neural"
	"mnist-ai/stats"
)

// Количество обучающих примеров для быстрой оценки точности после эпохи
const trainEvalSize = 5000

// TrainingManager управляет процессом обучения сети
type TrainingManager struct {
	network    *neural.Network
	trainSet   *dataset.Dataset
	testSet    *dataset.Dataset
	db         *database.Database
	statistics *stats.Statistics
	stop       chan bool
	epochsRun  int
}

// NewTrainingManager создает новый менеджер обучения.
// Объект статистики передается снаружи, чтобы веб-интерфейс
// видел эпохи запущенного им обучения
func NewTrainingManager(network *neural.Network, trainSet, testSet *dataset.Dataset, db *database.Database, statistics *stats.Statistics) *TrainingManager {
	return &TrainingManager{
		network:    network,
		trainSet:   trainSet,
		testSet:    testSet,
		db:         db,
		statistics: statistics,
		stop:       make(chan bool, 1),
	}
}

// RequestStop запрашивает остановку обучения после текущей эпохи
func (m *TrainingManager) RequestStop() {
	select {
	case m.stop <- true:
	default:
	}
}

// TrainEpoch выполняет одну эпоху обучения и возвращает среднюю потерю
func (m *TrainingManager) TrainEpoch(batchSize int) float64 {
	m.trainSet.Shuffle()

	totalLoss := 0.0
	count := 0

	for start := 0; start < m.trainSet.Len(); start += batchSize {
		inputs, targets := m.trainSet.Batch(start, start+batchSize)
		loss := m.network.TrainBatch(inputs, targets)
		totalLoss += loss * float64(len(inputs))
		count += len(inputs)
	}

	if count == 0 {
		return 0
	}
	return totalLoss / float64(count)
}

// Train запускает обучение на заданное количество эпох
func (m *TrainingManager) Train(numEpochs, batchSize int, verbose bool) error {
	startTime := time.Now()

	// Записываем начало запуска в базу данных
	runID, err := m.db.StartRun(numEpochs, batchSize, m.network.LearningRate, m.network.Momentum)
	if err != nil {
		return fmt.Errorf("ошибка при создании запуска в БД: %v", err)
	}

	if verbose {
		fmt.Printf("\n╔═══════════════════════════════════════════════╗\n")
		fmt.Printf("║   РЕЖИМ ОБУЧЕНИЯ                             ║\n")
		fmt.Printf("╚═══════════════════════════════════════════════╝\n")
		fmt.Printf("Запуск #%d: %d эпох, размер пакета %d\n", runID, numEpochs, batchSize)
		fmt.Printf("Обучающих примеров: %d, тестовых: %d\n\n", m.trainSet.Len(), m.testSet.Len())
	}

	epochsDone := 0
	lastTestAccuracy := 0.0
	stopped := false

	for epoch := 1; epoch <= numEpochs; epoch++ {
		// Проверяем запрос остановки между эпохами
		select {
		case <-m.stop:
			stopped = true
		default:
		}
		if stopped {
			if verbose {
				fmt.Printf("Обучение остановлено после эпохи %d\n", epochsDone)
			}
			break
		}

		epochStart := time.Now()
		trainLoss := m.TrainEpoch(batchSize)

		// Оцениваем точность на части обучающего и на всем тестовом наборе
		trainSubset := m.trainSet.Subset(trainEvalSize)
		trainAccuracy := m.network.Evaluate(trainSubset.Images, trainSubset.Labels)
		testAccuracy := m.network.Evaluate(m.testSet.Images, m.testSet.Labels)

		duration := time.Since(epochStart)
		epochsDone++
		m.epochsRun++
		lastTestAccuracy = testAccuracy

		// Записываем эпоху в базу данных
		err := m.db.RecordEpoch(database.EpochRecord{
			RunID:         runID,
			EpochNumber:   epoch,
			TrainLoss:     trainLoss,
			TrainAccuracy: trainAccuracy,
			TestAccuracy:  testAccuracy,
			DurationMS:    duration.Milliseconds(),
		})
		if err != nil {
			// Завершаем запуск даже при ошибке, чтобы он
			// не остался висеть незакрытым в базе
			m.db.FinishRun(runID, epochsDone, lastTestAccuracy)
			return fmt.Errorf("ошибка при записи эпохи: %v", err)
		}

		m.statistics.AddEpoch(stats.EpochResult{
			RunID:         runID,
			EpochNumber:   epoch,
			TrainLoss:     trainLoss,
			TrainAccuracy: trainAccuracy,
			TestAccuracy:  testAccuracy,
			DurationMS:    duration.Milliseconds(),
		})

		// Сохраняем веса после каждой эпохи
		if err := m.network.Save(); err != nil {
			fmt.Printf("Предупреждение: не удалось сохранить веса: %v\n", err)
		}

		if verbose {
			fmt.Printf("Эпоха %d/%d: потеря %.4f, точность train %.2f%%, test %.2f%% (%s)\n",
				epoch, numEpochs, trainLoss,
				trainAccuracy*100, testAccuracy*100,
				duration.Round(time.Second))

			if epoch%5 == 0 {
				elapsed := time.Since(startTime)
				fmt.Printf("\n--- Прогресс: %d/%d эпох завершено (%.1f%%) ---\n",
					epoch, numEpochs, float64(epoch)/float64(numEpochs)*100)
				fmt.Printf("    Время: %s\n", elapsed.Round(time.Second))
				fmt.Printf("    Скорость: %.1f примеров/сек\n\n",
					float64(epoch*m.trainSet.Len())/elapsed.Seconds())
			}
		}
	}

	// Завершаем запуск в базе данных
	err = m.db.FinishRun(runID, epochsDone, lastTestAccuracy)
	if err != nil {
		return fmt.Errorf("ошибка при завершении запуска: %v", err)
	}

	// Финальное сохранение
	if err := m.network.Save(); err != nil {
		fmt.Printf("Предупреждение: не удалось сохранить веса: %v\n", err)
	}

	if verbose {
		totalTime := time.Since(startTime)
		fmt.Printf("\n╔═══════════════════════════════════════════════╗\n")
		fmt.Printf("║   ОБУЧЕНИЕ ЗАВЕРШЕНО                         ║\n")
		fmt.Printf("╚═══════════════════════════════════════════════╝\n")
		fmt.Printf("Эпох выполнено: %d\n", epochsDone)
		fmt.Printf("Общее время: %s\n", totalTime.Round(time.Second))
		fmt.Printf("Точность на тестовом наборе: %.2f%%\n", lastTestAccuracy*100)

		// Показываем статистику из базы данных
		best, err := m.db.GetBestAccuracy()
		if err == nil {
			fmt.Printf("Лучшая точность за все запуски: %.2f%%\n", best*100)
		}
	}

	return nil
}

// GetEpochsRun возвращает количество выполненных эпох
func (m *TrainingManager) GetEpochsRun() int {
	return m.epochsRun
}

// GetStatistics возвращает объект статистики обучения
func (m *TrainingManager) GetStatistics() *stats.Statistics {
	return m.statistics
}
