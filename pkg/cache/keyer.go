package cache

// ChartKeyOpts are the layout inputs that change a computed pie chart.
type ChartKeyOpts struct {
	Width         float64 `json:"w"`
	Height        float64 `json:"h"`
	Spacing       float64 `json:"sp"`
	Step          float64 `json:"st"`
	MaxIterations int     `json:"mi"`
}

// ArtifactKeyOpts are the render inputs that change an output file.
type ArtifactKeyOpts struct {
	Format  string  `json:"f"`
	Title   string  `json:"t,omitempty"`
	Palette string  `json:"p,omitempty"`
	Scale   float64 `json:"s,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// ChartKey identifies a computed layout for a data set.
	ChartKey(dataHash string, opts ChartKeyOpts) string

	// ArtifactKey identifies a rendered file for a computed layout.
	ArtifactKey(chartHash string, opts ArtifactKeyOpts) string

	// JobKey identifies the last recorded outcome of a polled job.
	JobKey(jobID string) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) ChartKey(dataHash string, opts ChartKeyOpts) string {
	return hashKey("chart", dataHash, opts)
}

func (DefaultKeyer) ArtifactKey(chartHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", chartHash, opts)
}

func (DefaultKeyer) JobKey(jobID string) string {
	return "job:" + jobID
}
