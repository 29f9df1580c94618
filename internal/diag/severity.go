package diag

// Severity ranks diagnostics. The middle end reports nearly everything
// as an error, since a kernel either compiles or it does not; infos
// cover observability output such as timing reports.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevError:
		return "ERROR"
	case SevWarning:
		return "WARNING"
	case SevInfo:
		return "INFO"
	default:
		return "UNKNOWN"
	}
}
