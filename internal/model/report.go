package model

// TestStatus represents the status of a mutation test.
type TestStatus int

const (
	// Killed indicates the mutation was detected by tests.
	Killed TestStatus = iota
	// Survived indicates the mutation was not detected by tests.
	Survived
	// Skipped indicates the mutation was skipped.
	Skipped
	// Error indicates an error occurred during testing.
	Error
	// Timeout indicates the harness did not finish in time.
	Timeout
)

func (s TestStatus) String() string {
	switch s {
	case Killed:
		return "killed"
	case Survived:
		return "survived"
	case Skipped:
		return "skipped"
	case Error:
		return "error"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s TestStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name; unknown names map to Error.
func (s *TestStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "killed":
		*s = Killed
	case "survived":
		*s = Survived
	case "skipped":
		*s = Skipped
	case "timeout":
		*s = Timeout
	default:
		*s = Error
	}

	return nil
}

// Result is the outcome of testing one mutant.
type Result struct {
	MutantID   string             `yaml:"id"`
	Identifier MutationIdentifier `yaml:"mutation"`
	Status     TestStatus         `yaml:"status"`
	Diff       string             `yaml:"diff,omitempty"`
	Output     string             `yaml:"output,omitempty"`
	Err        string             `yaml:"error,omitempty"`
}

// Report groups the results for one listing file.
type Report struct {
	Source  Path     `yaml:"source"`
	Hash    string   `yaml:"hash"`
	Class   string   `yaml:"class"`
	Results []Result `yaml:"results"`
}
