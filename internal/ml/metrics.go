package ml

// Accuracy is the share of predictions equal to the truth.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	hit := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hit++
		}
	}
	return float64(hit) / float64(len(yTrue))
}

// ConfusionMatrix counts cm[true][predicted].
func ConfusionMatrix(yTrue, yPred []int, numClass int) [][]int {
	cm := make([][]int, numClass)
	for i := range cm {
		cm[i] = make([]int, numClass)
	}
	for i := range yTrue {
		cm[yTrue[i]][yPred[i]]++
	}
	return cm
}

// WeightedF1 averages the per-class F1 scores weighted by each class's
// support in yTrue. Classes with no predicted or true samples score 0.
func WeightedF1(yTrue, yPred []int, numClass int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	cm := ConfusionMatrix(yTrue, yPred, numClass)
	var total float64
	for c := 0; c < numClass; c++ {
		tp := float64(cm[c][c])
		var support, predicted float64
		for j := 0; j < numClass; j++ {
			support += float64(cm[c][j])
			predicted += float64(cm[j][c])
		}
		if support == 0 {
			continue
		}
		var f1 float64
		if tp > 0 {
			precision := tp / predicted
			recall := tp / support
			f1 = 2 * precision * recall / (precision + recall)
		}
		total += f1 * support
	}
	return total / float64(len(yTrue))
}
