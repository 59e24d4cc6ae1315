package loading

import "math"

// Strategy selects how aggregate progress is computed. Chosen once at
// tracker construction.
type Strategy string

const (
	// StrategyLinear counts every dependency equally.
	StrategyLinear Strategy = "linear"
	// StrategyWeighted weighs dependencies by priority.
	StrategyWeighted Strategy = "weighted"
	// StrategyPhase advances through fixed cumulative phase weights.
	StrategyPhase Strategy = "phase"
)

func (s Strategy) valid() bool {
	switch s {
	case StrategyLinear, StrategyWeighted, StrategyPhase:
		return true
	}
	return false
}

// priorityWeights are the fixed weighted-strategy weights.
var priorityWeights = map[Priority]int{
	PriorityCritical: 40,
	PriorityHigh:     30,
	PriorityMedium:   20,
	PriorityLow:      10,
}

// phaseWeights are the fixed cumulative phase-strategy weights.
var phaseWeights = map[Phase]int{
	PhaseInitialization: 10,
	PhaseAuthentication: 30,
	PhaseDataLoading:    50,
	PhaseReady:          10,
}

func (s Strategy) progress(deps map[string]*depState) int {
	if len(deps) == 0 {
		return 100
	}
	switch s {
	case StrategyWeighted:
		return weightedProgress(deps)
	case StrategyPhase:
		return phaseProgress(deps)
	default:
		return linearProgress(deps)
	}
}

func linearProgress(deps map[string]*depState) int {
	var completed int
	for _, ds := range deps {
		if ds.loaded {
			completed++
		}
	}
	return int(math.Round(float64(completed) / float64(len(deps)) * 100))
}

func weightedProgress(deps map[string]*depState) int {
	var total, completed int
	for _, ds := range deps {
		w := priorityWeights[ds.dep.Priority]
		total += w
		if ds.loaded {
			completed += w
		}
	}
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// phaseProgress sums the weights of all phases strictly before the current
// one, plus the current phase's own completion scaled by its weight.
func phaseProgress(deps map[string]*depState) int {
	current := currentPhase(deps)
	if current == PhaseReady {
		return 100
	}
	var progress float64
	for _, phase := range phaseOrder {
		if phase == current {
			break
		}
		progress += float64(phaseWeights[phase])
	}
	var total, completed int
	for _, ds := range deps {
		if ds.dep.Phase != current {
			continue
		}
		total++
		if ds.loaded {
			completed++
		}
	}
	if total > 0 {
		pct := float64(completed) / float64(total) * 100
		progress += pct * float64(phaseWeights[current]) / 100
	}
	if progress > 100 {
		progress = 100
	}
	return int(math.Round(progress))
}

func currentPhase(deps map[string]*depState) Phase {
	for _, phase := range phaseOrder {
		for _, ds := range deps {
			if ds.dep.Phase == phase && ds.loading {
				return phase
			}
		}
	}
	return PhaseReady
}
