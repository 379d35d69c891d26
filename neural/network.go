package neural

import (
	"encoding/gob"
	"math"
	"math/rand"
	"os"
	"sync"
)

// Network представляет нейронную сеть для классификации цифр
type Network struct {
	Weights1 [][]float64 // 784 -> 128
	Bias1    []float64   // 128
	Weights2 [][]float64 // 128 -> 64
	Bias2    []float64   // 64
	Weights3 [][]float64 // 64 -> 10
	Bias3    []float64   // 10

	// Для momentum
	VWeights1 [][]float64
	VBias1    []float64
	VWeights2 [][]float64
	VBias2    []float64
	VWeights3 [][]float64
	VBias3    []float64

	LearningRate float64
	Momentum     float64

	// Защищает веса: обучение и предсказание могут идти
	// из разных горутин (веб-интерфейс)
	mu sync.Mutex
}

// NewNetwork создает новую нейронную сеть
func NewNetwork() *Network {
	n := &Network{
		LearningRate: 0.01,
		Momentum:     0.9,
	}

	// Инициализация весов (Xavier initialization)
	n.Weights1 = make([][]float64, 784)
	n.VWeights1 = make([][]float64, 784)
	for i := range n.Weights1 {
		n.Weights1[i] = make([]float64, 128)
		n.VWeights1[i] = make([]float64, 128)
		scale := math.Sqrt(2.0 / 784.0)
		for j := range n.Weights1[i] {
			n.Weights1[i][j] = (rand.Float64()*2 - 1) * scale
		}
	}

	n.Bias1 = make([]float64, 128)
	n.VBias1 = make([]float64, 128)

	n.Weights2 = make([][]float64, 128)
	n.VWeights2 = make([][]float64, 128)
	for i := range n.Weights2 {
		n.Weights2[i] = make([]float64, 64)
		n.VWeights2[i] = make([]float64, 64)
		scale := math.Sqrt(2.0 / 128.0)
		for j := range n.Weights2[i] {
			n.Weights2[i][j] = (rand.Float64()*2 - 1) * scale
		}
	}

	n.Bias2 = make([]float64, 64)
	n.VBias2 = make([]float64, 64)

	n.Weights3 = make([][]float64, 64)
	n.VWeights3 = make([][]float64, 64)
	for i := range n.Weights3 {
		n.Weights3[i] = make([]float64, 10)
		n.VWeights3[i] = make([]float64, 10)
		scale := math.Sqrt(2.0 / 64.0)
		for j := range n.Weights3[i] {
			n.Weights3[i][j] = (rand.Float64()*2 - 1) * scale
		}
	}

	n.Bias3 = make([]float64, 10)
	n.VBias3 = make([]float64, 10)

	// Попытка загрузить сохраненные веса
	// Сохраняем начальные значения LearningRate и Momentum
	initialLR := n.LearningRate
	initialMomentum := n.Momentum

	if err := n.Load(); err == nil {
		// Если загрузка успешна, проверяем и восстанавливаем LearningRate и Momentum,
		// если они были обнулены или имеют неразумные значения
		if n.LearningRate <= 0 || n.LearningRate > 1.0 {
			n.LearningRate = initialLR
		}
		if n.Momentum <= 0 || n.Momentum > 1.0 {
			n.Momentum = initialMomentum
		}
	}

	return n
}

// Forward выполняет прямое распространение и возвращает
// вероятности 10 классов (softmax)
func (n *Network) Forward(input []float64) []float64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	// Слой 1: 784 -> 128 с ReLU
	hidden1 := make([]float64, 128)
	for i := 0; i < 128; i++ {
		sum := n.Bias1[i]
		for j := 0; j < 784; j++ {
			sum += input[j] * n.Weights1[j][i]
		}
		hidden1[i] = relu(sum)
	}

	// Слой 2: 128 -> 64 с ReLU
	hidden2 := make([]float64, 64)
	for i := 0; i < 64; i++ {
		sum := n.Bias2[i]
		for j := 0; j < 128; j++ {
			sum += hidden1[j] * n.Weights2[j][i]
		}
		hidden2[i] = relu(sum)
	}

	// Выходной слой: 64 -> 10 с softmax
	logits := make([]float64, 10)
	for i := 0; i < 10; i++ {
		sum := n.Bias3[i]
		for j := 0; j < 64; j++ {
			sum += hidden2[j] * n.Weights3[j][i]
		}
		logits[i] = sum
	}

	return softmax(logits)
}

// Train обучает сеть на одном примере (target — one-hot вектор из 10 элементов)
// и возвращает cross-entropy потерю на этом примере
func (n *Network) Train(input []float64, target []float64) float64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	// Forward pass с сохранением активаций
	hidden1 := make([]float64, 128)
	for i := 0; i < 128; i++ {
		sum := n.Bias1[i]
		for j := 0; j < 784; j++ {
			sum += input[j] * n.Weights1[j][i]
		}
		hidden1[i] = relu(sum)
	}

	hidden2 := make([]float64, 64)
	for i := 0; i < 64; i++ {
		sum := n.Bias2[i]
		for j := 0; j < 128; j++ {
			sum += hidden1[j] * n.Weights2[j][i]
		}
		hidden2[i] = relu(sum)
	}

	logits := make([]float64, 10)
	for i := 0; i < 10; i++ {
		sum := n.Bias3[i]
		for j := 0; j < 64; j++ {
			sum += hidden2[j] * n.Weights3[j][i]
		}
		logits[i] = sum
	}
	output := softmax(logits)

	// Cross-entropy потеря
	loss := 0.0
	for k := 0; k < 10; k++ {
		if target[k] > 0 {
			loss -= target[k] * math.Log(output[k]+1e-12)
		}
	}

	// Backward pass
	// Для softmax + cross-entropy дельта выходного слоя равна target - output
	outputDelta := make([]float64, 10)
	for k := 0; k < 10; k++ {
		outputDelta[k] = target[k] - output[k]
	}

	// Обновление весов выходного слоя с momentum
	for j := 0; j < 64; j++ {
		for k := 0; k < 10; k++ {
			grad := outputDelta[k] * hidden2[j]
			n.VWeights3[j][k] = n.Momentum*n.VWeights3[j][k] + n.LearningRate*grad
			n.Weights3[j][k] += n.VWeights3[j][k]
		}
	}
	for k := 0; k < 10; k++ {
		n.VBias3[k] = n.Momentum*n.VBias3[k] + n.LearningRate*outputDelta[k]
		n.Bias3[k] += n.VBias3[k]
	}

	// Ошибка второго скрытого слоя
	hidden2Error := make([]float64, 64)
	for i := 0; i < 64; i++ {
		for k := 0; k < 10; k++ {
			hidden2Error[i] += outputDelta[k] * n.Weights3[i][k]
		}
		if hidden2[i] <= 0 {
			hidden2Error[i] = 0 // ReLU derivative
		}
	}

	// Обновление весов второго слоя
	for i := 0; i < 128; i++ {
		for j := 0; j < 64; j++ {
			grad := hidden2Error[j] * hidden1[i]
			n.VWeights2[i][j] = n.Momentum*n.VWeights2[i][j] + n.LearningRate*grad
			n.Weights2[i][j] += n.VWeights2[i][j]
		}
	}
	for j := 0; j < 64; j++ {
		n.VBias2[j] = n.Momentum*n.VBias2[j] + n.LearningRate*hidden2Error[j]
		n.Bias2[j] += n.VBias2[j]
	}

	// Ошибка первого скрытого слоя
	hidden1Error := make([]float64, 128)
	for i := 0; i < 128; i++ {
		for j := 0; j < 64; j++ {
			hidden1Error[i] += hidden2Error[j] * n.Weights2[i][j]
		}
		if hidden1[i] <= 0 {
			hidden1Error[i] = 0 // ReLU derivative
		}
	}

	// Обновление весов первого слоя
	for i := 0; i < 784; i++ {
		for j := 0; j < 128; j++ {
			grad := hidden1Error[j] * input[i]
			n.VWeights1[i][j] = n.Momentum*n.VWeights1[i][j] + n.LearningRate*grad
			n.Weights1[i][j] += n.VWeights1[i][j]
		}
	}
	for j := 0; j < 128; j++ {
		n.VBias1[j] = n.Momentum*n.VBias1[j] + n.LearningRate*hidden1Error[j]
		n.Bias1[j] += n.VBias1[j]
	}

	return loss
}

// Save сохраняет веса сети
func (n *Network) Save() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	os.MkdirAll("models", 0755)
	file, err := os.Create("models/weights.gob")
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	return encoder.Encode(n)
}

// Load загружает веса сети
func (n *Network) Load() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	file, err := os.Open("models/weights.gob")
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := gob.NewDecoder(file)
	return decoder.Decode(n)
}

// Активационные функции
func relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// softmax преобразует логиты в вероятности
func softmax(logits []float64) []float64 {
	// Вычитаем максимум для числовой стабильности
	max := logits[0]
	for _, v := range logits {
		if v > max {
			max = v
		}
	}

	probs := make([]float64, len(logits))
	sum := 0.0
	for i, v := range logits {
		probs[i] = math.Exp(v - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
