package app

import "github.com/okian/pitchmap/internal/domain/model"

// FigureResult is one saved figure.
type FigureResult struct {
	ID   string
	Path string
}

// Counts summarises the rows seen at each pipeline stage.
type Counts struct {
	Matches      int
	Events       int
	PlayerEvents int
	Mapped       int
	Dropped      int
	Defensive    int
	OnBall       int
	Half1        int
	Half2        int
}

// Report is the outcome of a run. Figures are in generation order.
type Report struct {
	RunID         string
	Figures       []FigureResult
	Skipped       []string
	Counts        Counts
	Dropped       []model.Dropped
	MappedPercent float64
}

// Path returns the saved path of figure id.
func (r *Report) Path(id string) (string, bool) {
	for _, f := range r.Figures {
		if f.ID == id {
			return f.Path, true
		}
	}
	return "", false
}
