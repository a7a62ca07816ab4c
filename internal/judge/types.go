package judge

// Judge0 status ids. 1 and 2 mean the execution is still queued or running;
// anything above 2 is terminal.
const (
	StatusInQueue     = 1
	StatusProcessing  = 2
	StatusAccepted    = 3
	StatusWrongAnswer = 4
)

// BatchItem is one test-case execution in a batch submission: the user's
// source against one stdin/expected-output pair.
type BatchItem struct {
	SourceCode     string `json:"source_code"`
	LanguageID     int    `json:"language_id"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output"`
}

// Result is the terminal outcome of one batch item, with text fields already
// decoded from the judge's base64 transport form.
type Result struct {
	Token         string  `json:"token"`
	StatusID      int     `json:"status_id"`
	Time          float64 `json:"time"`   // seconds
	Memory        int     `json:"memory"` // KB
	Stdout        string  `json:"stdout"`
	Stderr        string  `json:"stderr"`
	CompileOutput string  `json:"compile_output"`
	Message       string  `json:"message"`
}

func (r Result) Terminal() bool {
	return r.StatusID > StatusProcessing
}

// Wire shapes for the Judge0 batch endpoints.

type batchRequest struct {
	Submissions []BatchItem `json:"submissions"`
}

type tokenEnvelope struct {
	Token string `json:"token"`
}

type wireResult struct {
	Token         string  `json:"token"`
	StatusID      int     `json:"status_id"`
	Time          *string `json:"time"`   // fractional seconds as a string
	Memory        *int    `json:"memory"` // KB
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
	Message       *string `json:"message"`
}

type batchStatusResponse struct {
	Submissions []wireResult `json:"submissions"`
}
