package imaging

// Task pairs one input image with its computed output path
type Task struct {
	InputPath  string
	OutputPath string
}

// Result contains the outcome of processing a single task
type Result struct {
	Task Task
	Err  error
}

// Success reports whether the output file was fully written
func (r Result) Success() bool {
	return r.Err == nil
}
