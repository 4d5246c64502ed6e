package reporter

// Document is the machine-readable form of a schedule.
type Document struct {
	Source          string      `json:"source,omitempty"`
	ProjectDuration float64     `json:"project_duration"`
	Tasks           []TaskEntry `json:"tasks"`
	CriticalTasks   []string    `json:"critical_tasks"`
	CriticalPaths   [][]string  `json:"critical_paths"`
	PathsTruncated  bool        `json:"paths_truncated,omitempty"`
}

// TaskEntry is one task's computed times, in topological order.
type TaskEntry struct {
	ID           string   `json:"id"`
	Duration     float64  `json:"duration"`
	Predecessors []string `json:"predecessors"`
	ES           float64  `json:"es"`
	EF           float64  `json:"ef"`
	LS           float64  `json:"ls"`
	LF           float64  `json:"lf"`
	Slack        float64  `json:"slack"`
	IsCritical   bool     `json:"is_critical"`
	Wave         int      `json:"wave"`
}

// Document converts the schedule to its serialisable form, unrounded.
func (r *Reporter) Document() *Document {
	doc := &Document{
		ProjectDuration: r.Schedule.ProjectDuration,
		Tasks:           make([]TaskEntry, 0, len(r.Schedule.TopoOrder)),
		CriticalTasks:   r.Schedule.CriticalTasks,
		CriticalPaths:   r.Schedule.CriticalPaths,
		PathsTruncated:  r.Schedule.PathsTruncated,
	}

	for _, id := range r.Schedule.TopoOrder {
		ts := r.Schedule.Tasks[id]

		preds := r.Graph.Predecessors(id)
		if preds == nil {
			preds = []string{}
		}

		doc.Tasks = append(doc.Tasks, TaskEntry{
			ID:           id,
			Duration:     ts.Duration,
			Predecessors: preds,
			ES:           ts.ES,
			EF:           ts.EF,
			LS:           ts.LS,
			LF:           ts.LF,
			Slack:        ts.Slack,
			IsCritical:   ts.IsCritical,
			Wave:         ts.Wave,
		})
	}

	return doc
}
