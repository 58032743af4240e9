// Package ml holds the model-fitting primitives used by training: stratified
// splitting, minority oversampling, a multiclass gradient-boosted tree
// classifier, evaluation metrics, grid search and linear regression.
package ml

import (
	"fmt"
	"sort"
)

// LabelEncoder maps class labels to indices in alphabetical order.
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

// FitLabelEncoder collects the distinct labels and sorts them.
func FitLabelEncoder(labels []string) *LabelEncoder {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	classes := make([]string, 0, len(set))
	for l := range set {
		classes = append(classes, l)
	}
	sort.Strings(classes)
	return &LabelEncoder{Classes: classes}
}

// Encode returns the index of label.
func (e *LabelEncoder) Encode(label string) (int, bool) {
	i := sort.SearchStrings(e.Classes, label)
	if i < len(e.Classes) && e.Classes[i] == label {
		return i, true
	}
	return 0, false
}

func (e *LabelEncoder) EncodeAll(labels []string) ([]int, error) {
	out := make([]int, len(labels))
	for i, l := range labels {
		idx, ok := e.Encode(l)
		if !ok {
			return nil, fmt.Errorf("unknown label %q", l)
		}
		out[i] = idx
	}
	return out, nil
}

// Decode returns the label for an index.
func (e *LabelEncoder) Decode(i int) (string, error) {
	if i < 0 || i >= len(e.Classes) {
		return "", fmt.Errorf("label index %d out of range", i)
	}
	return e.Classes[i], nil
}

// Len returns the number of classes.
func (e *LabelEncoder) Len() int {
	return len(e.Classes)
}
