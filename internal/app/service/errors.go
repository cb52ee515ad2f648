package service

import (
	"sort"
	"strings"
)

// FormErrors maps an input field to a message. It is returned as an error
// when an admin form fails validation.
type FormErrors map[string]string

func (e FormErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid form: " + strings.Join(fields, ", ")
}
