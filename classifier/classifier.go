package classifier

import (
	"fmt"

	"mnist-ai/database"
	"mnist-ai/dataset"
	"mnist-ai/neural"
)

// Classifier представляет классификатор цифр на основе нейросети
type Classifier struct {
	Network *neural.Network
	db      *database.Database
	useDB   bool
}

// NewClassifier создает новый классификатор
func NewClassifier() *Classifier {
	return &Classifier{
		Network: neural.NewNetwork(),
	}
}

// SetDatabase подключает базу данных для записи предсказаний
func (c *Classifier) SetDatabase(db *database.Database, use bool) {
	c.db = db
	c.useDB = use
}

// Predict возвращает предсказанную цифру и уверенность сети.
// Если подключена база данных, предсказание записывается в нее
func (c *Classifier) Predict(pixels []float64, source string) (int, float64, error) {
	if len(pixels) != dataset.NumPixels {
		return 0, 0, fmt.Errorf("ожидалось %d пикселей, получено %d", dataset.NumPixels, len(pixels))
	}

	probs := c.Network.Forward(pixels)

	digit := 0
	for i, p := range probs {
		if p > probs[digit] {
			digit = i
		}
	}
	confidence := probs[digit]

	if c.useDB && c.db != nil {
		// Ошибка записи не должна ломать предсказание
		if err := c.db.RecordPrediction(digit, confidence, source); err != nil {
			fmt.Printf("Предупреждение: не удалось записать предсказание: %v\n", err)
		}
	}

	return digit, confidence, nil
}

// Probabilities возвращает вероятности всех 10 цифр
func (c *Classifier) Probabilities(pixels []float64) ([]float64, error) {
	if len(pixels) != dataset.NumPixels {
		return nil, fmt.Errorf("ожидалось %d пикселей, получено %d", dataset.NumPixels, len(pixels))
	}
	return c.Network.Forward(pixels), nil
}

// Accuracy оценивает точность классификатора на наборе данных
func (c *Classifier) Accuracy(d *dataset.Dataset) float64 {
	return c.Network.Evaluate(d.Images, d.Labels)
}

// Save сохраняет состояние классификатора
func (c *Classifier) Save() error {
	return c.Network.Save()
}

// Load загружает состояние классификатора
func (c *Classifier) Load() error {
	return c.Network.Load()
}
