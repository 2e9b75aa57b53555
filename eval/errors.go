package eval

import "fmt"

// LoadError reports a baseline source that is unreadable or contains a row
// that does not parse into the required shape. It is fatal: the run aborts
// before any plan is processed.
type LoadError struct {
	Row int // 1-based data row, 0 when the failure is not row-specific
	Err error
}

func (e *LoadError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("baseline load: row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("baseline load: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// DecodeError reports a plan-stream line that is not well-formed structured
// data or is missing the districting field. It is fatal at the point it
// occurs: plans already processed remain reported, nothing is rolled back.
type DecodeError struct {
	Line int // 1-based line number within the plan stream
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("plan stream: line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IndexRangeError reports a district assignment beyond the configured maximum
// index. Baseline loading raises it whenever an explicit maximum is set;
// during aggregation only DistrictPolicyFail raises it, the drop policy
// excludes the contribution instead.
type IndexRangeError struct {
	District int
	Max      int
	Unit     string
}

func (e *IndexRangeError) Error() string {
	return fmt.Sprintf("district %d exceeds configured maximum %d (unit %q)", e.District, e.Max, e.Unit)
}
