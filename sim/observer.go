package sim

import "time"

// Observer receives push-style run notifications. Delivery is synchronous
// with the tick that produced them and is for reporting only; correctness
// never depends on it.
type Observer interface {
	SimulationStarted(scenario string, totalSteps int)
	SimulationProgress(step, totalSteps int, clock time.Time)
	SimulationCompleted(result *Result)
}

// ObserverFuncs adapts plain functions to the Observer interface. Nil
// fields are skipped.
type ObserverFuncs struct {
	OnStart    func(scenario string, totalSteps int)
	OnProgress func(step, totalSteps int, clock time.Time)
	OnComplete func(result *Result)
}

func (o ObserverFuncs) SimulationStarted(scenario string, totalSteps int) {
	if o.OnStart != nil {
		o.OnStart(scenario, totalSteps)
	}
}

func (o ObserverFuncs) SimulationProgress(step, totalSteps int, clock time.Time) {
	if o.OnProgress != nil {
		o.OnProgress(step, totalSteps, clock)
	}
}

func (o ObserverFuncs) SimulationCompleted(result *Result) {
	if o.OnComplete != nil {
		o.OnComplete(result)
	}
}
