package stage

// Status summarizes the on-disk state of a stage.
type Status struct {
	Kind     Kind   `json:"stage" yaml:"stage"`
	Complete bool   `json:"complete" yaml:"complete"`
	Artifact string `json:"artifact" yaml:"artifact"`
	Detail   string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Completed constructs a complete Status record.
func Completed(kind Kind, artifact string) Status {
	return Status{Kind: kind, Complete: true, Artifact: artifact}
}

// Pending constructs an incomplete Status record with context detail.
func Pending(kind Kind, artifact, detail string) Status {
	return Status{Kind: kind, Complete: false, Artifact: artifact, Detail: detail}
}
