package model

// Entry is one work-log line reconstructed from a day file.
type Entry struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	Organization string `json:"organization"`
	IssueRef     string `json:"issue_ref"`
	Description  string `json:"description"`
}

// ReportRequest is the JSON body sent to the generation endpoint.
type ReportRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// ReportResponse is the subset of the endpoint reply we read. Response is a
// pointer so an absent field can be told apart from an empty one.
type ReportResponse struct {
	Response *string `json:"response"`
}
