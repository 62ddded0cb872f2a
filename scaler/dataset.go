package scaler

import "github.com/viant/heromatch/dataset"

// FitDataset fits parameters over the attribute columns of ds.
func FitDataset(ds *dataset.Dataset, kind Kind, policy DegeneratePolicy) (*Params, error) {
	return Fit(ds.Columns(), kind, policy)
}

// TransformDataset scales every entity of ds in position order.
func (p *Params) TransformDataset(ds *dataset.Dataset) ([][]float64, error) {
	rows := make([][]float64, ds.Len())
	for i := range rows {
		rows[i] = ds.At(i).Vector()
	}
	return p.TransformRows(rows)
}
