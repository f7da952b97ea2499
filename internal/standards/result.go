package standards

const (
	ValuePresent  = "present"
	ValueNotFound = "not found"
	ValueFound    = "found"
)

// Result is the outcome of one check. Value is nil when nothing could be
// observed (for example no Python version declared anywhere).
type Result struct {
	MeetsStandard  bool
	Value          *string
	AdditionalInfo map[string]any
}

func Pass(value string) Result {
	return Result{MeetsStandard: true, Value: &value}
}

func Fail(value string) Result {
	return Result{MeetsStandard: false, Value: &value}
}

// Presence reports a required-file check: present passes, absent fails.
func Presence(found bool) Result {
	if found {
		return Pass(ValuePresent)
	}
	return Fail(ValueNotFound)
}

// WithInfo returns r with key set in AdditionalInfo.
func (r Result) WithInfo(key string, value any) Result {
	info := make(map[string]any, len(r.AdditionalInfo)+1)
	for k, v := range r.AdditionalInfo {
		info[k] = v
	}
	info[key] = value
	r.AdditionalInfo = info
	return r
}

// ValueOr returns the observed value or fallback when none was observed.
func (r Result) ValueOr(fallback string) string {
	if r.Value == nil {
		return fallback
	}
	return *r.Value
}
