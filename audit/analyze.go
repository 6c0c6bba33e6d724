package audit

import "encoding/json"

// MarshalReport renders the report as JSON. indent affects formatting only,
// and the output always ends with a newline.
func MarshalReport(report Report, indent bool) []byte {
	if report.Checks == nil {
		report.Checks = []Check{}
	}

	var (
		data []byte
		err  error
	)

	if indent {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}

	if err != nil {
		data = []byte(`{"error":"failed to marshal report"}`)
	}

	return ensureNewline(data)
}

func ensureNewline(data []byte) []byte {
	if len(data) == 0 || data[len(data)-1] != '\n' {
		return append(data, '\n')
	}

	return data
}
