package iotester

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
)

// Status is a generic structure to return a status
type Status struct {
	StatusCode    StatusCode
	StatusMessage string
	Raw           interface{} `json:",omitempty"`
}

// StatusCode type definition
type StatusCode string

const (
	// StatusOK is the success status code
	StatusOK = StatusCode("OK")
	// StatusWarning is the informational status code
	StatusWarning = StatusCode("Warning")
	// StatusError is the failure status code
	StatusError = StatusCode("Error")
	// StatusInfo is the Info status code
	StatusInfo = StatusCode("Info")
)

// Print prints a status message with a given prefix
func (s *Status) Print(w io.Writer, prefix string) {
	switch s.StatusCode {
	case StatusOK:
		fmt.Fprintf(w, "%s%s  -  %s\n", prefix, s.StatusMessage, successColor.Sprint("OK"))
	case StatusError:
		fmt.Fprintf(w, "%s%s  -  %s\n", prefix, s.StatusMessage, errorColor.Sprint("Error"))
	case StatusWarning:
		fmt.Fprintln(w, warningColor.Sprint(prefix+s.StatusMessage))
	default:
		fmt.Fprintln(w, prefix+s.StatusMessage)
	}
}

// TestOutput is the generic return value for tests
type TestOutput struct {
	TestName string
	Status   []Status
	Raw      interface{} `json:",omitempty"`
}

// Print prints a TestOutput as a string output
func (t *TestOutput) Print(w io.Writer) {
	fmt.Fprintln(w, t.TestName+":")
	for _, status := range t.Status {
		status.Print(w, "  ")
	}
}

// Failed reports whether any status is an error.
func (t *TestOutput) Failed() bool {
	for _, s := range t.Status {
		if s.StatusCode == StatusError {
			return true
		}
	}
	return false
}

func makeTestOutput(testname string, code StatusCode, mesg string, raw interface{}) *TestOutput {
	return &TestOutput{
		TestName: testname,
		Status:   []Status{makeStatus(code, mesg, nil)},
		Raw:      raw,
	}
}

func makeStatus(code StatusCode, mesg string, raw interface{}) Status {
	return Status{
		StatusCode:    code,
		StatusMessage: mesg,
		Raw:           raw,
	}
}
