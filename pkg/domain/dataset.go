package domain

// Dataset is the transient, in-memory view of a training file.
// Features[i] and Labels[i] always describe the same row.
type Dataset struct {
	// Source is the path the dataset was read from.
	Source string

	// Columns holds the normalized header in file order.
	Columns []string

	Features []float64
	Labels   []float64
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Labels)
}
