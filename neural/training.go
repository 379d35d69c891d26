package neural

// TrainBatch обучает сеть на пакете данных и возвращает среднюю потерю
func (n *Network) TrainBatch(inputs [][]float64, targets [][]float64) float64 {
	if len(inputs) == 0 {
		return 0
	}

	totalLoss := 0.0
	for i := range inputs {
		totalLoss += n.Train(inputs[i], targets[i])
	}

	return totalLoss / float64(len(inputs))
}

// Evaluate оценивает точность сети (доля правильных argmax предсказаний)
func (n *Network) Evaluate(inputs [][]float64, labels []int) float64 {
	if len(inputs) == 0 {
		return 0
	}

	correct := 0
	for i := range inputs {
		output := n.Forward(inputs[i])
		if argmax(output) == labels[i] {
			correct++
		}
	}

	return float64(correct) / float64(len(inputs))
}

// ConfusionMatrix строит матрицу ошибок 10x10:
// строка — истинная цифра, столбец — предсказанная
func (n *Network) ConfusionMatrix(inputs [][]float64, labels []int) [10][10]int {
	var matrix [10][10]int
	for i := range inputs {
		output := n.Forward(inputs[i])
		predicted := argmax(output)
		matrix[labels[i]][predicted]++
	}
	return matrix
}

// argmax возвращает индекс максимального элемента
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
