package trial

import (
	"fmt"
	"strconv"
)

// FormatNumber renders a float without trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParsedLabel is "yes" for accepted candidates and "no" otherwise.
func (r Result) ParsedLabel() string {
	if r.Parse.Accepted() {
		return "yes"
	}
	return "no"
}

// OutcomeLabel describes the evaluation or execution payload: the value
// for math, "ok (N rows)" or "error: ..." for SQL, and "-" when the stage
// was skipped or produced nothing.
func (r Result) OutcomeLabel() string {
	if r.Family == FamilySQL {
		switch {
		case r.Exec == nil:
			return "-"
		case r.Exec.OK():
			return fmt.Sprintf("ok (%d rows)", r.Exec.RowCount())
		default:
			return "error: " + r.Exec.Err
		}
	}
	if r.Value == nil {
		return "-"
	}
	return FormatNumber(*r.Value)
}

// ExpectedLabel renders the expectation or "-".
func (r Result) ExpectedLabel() string {
	if r.Family == FamilySQL {
		if r.ExpectedRows == nil {
			return "-"
		}
		return strconv.Itoa(*r.ExpectedRows)
	}
	if r.ExpectedValue == nil {
		return "-"
	}
	return FormatNumber(*r.ExpectedValue)
}

// CheckLabel is "pass" or "fail" for checked trials and "-" otherwise.
func (r Result) CheckLabel() string {
	pass, checked := r.Passed()
	switch {
	case !checked:
		return "-"
	case pass:
		return "pass"
	}
	return "fail"
}

// ElapsedSeconds renders the latency in seconds with two decimals.
func (r Result) ElapsedSeconds() string {
	return strconv.FormatFloat(r.Latency.Seconds(), 'f', 2, 64)
}
