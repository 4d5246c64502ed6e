package cpm

// Schedule holds the complete critical path analysis of one task graph.
// It is produced once by Solve and is read-only afterwards.
type Schedule struct {
	Tasks           map[string]*TaskSchedule
	TopoOrder       []string
	ProjectDuration float64
	CriticalTasks   []string   // every zero-slack task, in topological order
	CriticalPaths   [][]string // every start-to-end chain of critical tasks
	PathsTruncated  bool       // CriticalPaths stopped at Config.MaxPaths
	Waves           []Wave     // groups of tasks sharing an earliest start
}

// TaskSchedule holds the scheduling info for a single task.
type TaskSchedule struct {
	TaskID     string
	Duration   float64
	ES, EF     float64 // earliest start/finish
	LS, LF     float64 // latest start/finish
	Slack      float64
	IsCritical bool
	Wave       int // which parallel wave this belongs to
}

// Wave represents a group of tasks that can start at the same time.
type Wave struct {
	Index      int
	Start      float64
	TaskIDs    []string
	IsCritical bool // true if wave contains critical path tasks
}

// Config tunes the solver. Zero values select the defaults.
type Config struct {
	// Tolerance is the largest difference treated as zero when comparing
	// times computed from fractional durations, relative to the project
	// duration (absolute when the project is shorter than one time unit).
	Tolerance float64

	// MaxPaths caps the number of critical chains enumerated.
	// CriticalTasks is always complete regardless of the cap.
	MaxPaths int
}

const (
	DefaultTolerance = 1e-9
	DefaultMaxPaths  = 1000
)
