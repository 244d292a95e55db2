package fulfillment

import "context"

// Job is one unit of scheduled work. Name is used as the metrics label and
// must be stable across runs.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds the jobs a worker executes each cycle, in registration
// order. Registering under an existing name replaces the earlier job so a
// rebuilt job never runs twice in one cycle.
type Registry struct {
	order  []string
	byName map[string]Job
}

func NewRegistry(jobs ...Job) *Registry {
	registry := &Registry{byName: make(map[string]Job)}
	for _, job := range jobs {
		registry.Register(job)
	}
	return registry
}

func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	name := job.Name()
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = job
}

// Jobs returns the registered jobs in registration order.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, 0, len(r.order))
	for _, name := range r.order {
		jobs = append(jobs, r.byName[name])
	}
	return jobs
}
