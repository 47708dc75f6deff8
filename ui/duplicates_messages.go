package ui

// DeletionCompleteMsg reports the outcome of a delete command. An empty
// FilePath with Success set means every pending file was removed.
type DeletionCompleteMsg struct {
	FilePath string
	Success  bool
	Error    error
}
