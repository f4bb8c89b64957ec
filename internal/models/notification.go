package models

const (
	BROADCAST_TARGET_ALL      = "all"
	BROADCAST_TARGET_SELECTED = "selected"
)

// PushMessage is a single message addressed to one device token.
type PushMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound,omitempty"`
}

type BatchResult struct {
	Index    int    `json:"index" msgpack:"index"`
	Size     int    `json:"size" msgpack:"size"`
	Accepted int    `json:"accepted" msgpack:"accepted"`
	Failed   bool   `json:"failed" msgpack:"failed"`
	Error    string `json:"error,omitempty" msgpack:"error"`
}

type DispatchReport struct {
	Sent          int           `json:"sent"`
	FailedBatches int           `json:"failed_batches"`
	Batches       []BatchResult `json:"batches"`
}

type BroadcastRequest struct {
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	Target     string            `json:"target"`
	CustomerID string            `json:"customer_id"`
	Data       map[string]string `json:"data"`
}

type BirthdaySummary struct {
	Sent          int    `json:"sent" msgpack:"sent"`
	Checked       int    `json:"checked" msgpack:"checked"`
	AlreadySent   int    `json:"alreadySent" msgpack:"already_sent"`
	WithoutTokens int    `json:"withoutTokens" msgpack:"without_tokens"`
	Granted       int    `json:"granted" msgpack:"granted"`
	Recipients    int    `json:"recipients" msgpack:"recipients"`
	FailedBatches int    `json:"failedBatches" msgpack:"failed_batches"`
	DryRun        bool   `json:"dryRun" msgpack:"dry_run"`
	Date          string `json:"date" msgpack:"date"`
}
