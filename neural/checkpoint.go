package neural

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WeightsJSON представляет переносимый формат весов.
// В отличие от gob-чекпоинта он не содержит momentum-буферов,
// только сами веса и гиперпараметры
type WeightsJSON struct {
	Weights1     [][]float64 `json:"weights1"`
	Bias1        []float64   `json:"bias1"`
	Weights2     [][]float64 `json:"weights2"`
	Bias2        []float64   `json:"bias2"`
	Weights3     [][]float64 `json:"weights3"`
	Bias3        []float64   `json:"bias3"`
	LearningRate float64     `json:"learningRate"`
	Momentum     float64     `json:"momentum"`
}

// ExportJSON сохраняет веса сети в JSON файл
func (n *Network) ExportJSON(path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("не удалось создать директорию: %v", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := WeightsJSON{
		Weights1:     n.Weights1,
		Bias1:        n.Bias1,
		Weights2:     n.Weights2,
		Bias2:        n.Bias2,
		Weights3:     n.Weights3,
		Bias3:        n.Bias3,
		LearningRate: n.LearningRate,
		Momentum:     n.Momentum,
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(w)
}

// ImportJSON загружает веса сети из JSON файла.
// Размерности слоев проверяются до применения весов, чтобы
// частично не затереть текущую сеть
func (n *Network) ImportJSON(path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var w WeightsJSON
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&w); err != nil {
		return fmt.Errorf("не удалось разобрать JSON: %v", err)
	}

	if err := checkShape("weights1", w.Weights1, 784, 128); err != nil {
		return err
	}
	if err := checkShape("weights2", w.Weights2, 128, 64); err != nil {
		return err
	}
	if err := checkShape("weights3", w.Weights3, 64, 10); err != nil {
		return err
	}
	if len(w.Bias1) != 128 {
		return fmt.Errorf("bias1: ожидалось 128 элементов, получено %d", len(w.Bias1))
	}
	if len(w.Bias2) != 64 {
		return fmt.Errorf("bias2: ожидалось 64 элемента, получено %d", len(w.Bias2))
	}
	if len(w.Bias3) != 10 {
		return fmt.Errorf("bias3: ожидалось 10 элементов, получено %d", len(w.Bias3))
	}

	n.Weights1 = w.Weights1
	n.Bias1 = w.Bias1
	n.Weights2 = w.Weights2
	n.Bias2 = w.Bias2
	n.Weights3 = w.Weights3
	n.Bias3 = w.Bias3

	if w.LearningRate > 0 && w.LearningRate <= 1.0 {
		n.LearningRate = w.LearningRate
	}
	if w.Momentum > 0 && w.Momentum <= 1.0 {
		n.Momentum = w.Momentum
	}

	return nil
}

// checkShape проверяет размерности матрицы весов
func checkShape(name string, weights [][]float64, rows, cols int) error {
	if len(weights) != rows {
		return fmt.Errorf("%s: ожидалось %d строк, получено %d", name, rows, len(weights))
	}
	for i, row := range weights {
		if len(row) != cols {
			return fmt.Errorf("%s: строка %d должна иметь %d элементов, получено %d",
				name, i, cols, len(row))
		}
	}
	return nil
}
