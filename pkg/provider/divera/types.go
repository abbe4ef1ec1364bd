package divera

// PullAllResponse is the subset of /api/v2/pull/all the tracker reads.
type PullAllResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    PullAllData `json:"data"`
}

type PullAllData struct {
	Cluster Cluster `json:"cluster"`
	// Monitor maps a monitor group ("1") to consumer id → current status
	Monitor map[string]map[string]MonitorEntry `json:"monitor"`
}

type Cluster struct {
	Consumer map[string]Consumer         `json:"consumer"`
	Status   map[string]StatusDefinition `json:"status"`
}

// Consumer is a member of the organization.
type Consumer struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// StatusDefinition is one entry of the organization's status vocabulary.
type StatusDefinition struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type MonitorEntry struct {
	Status int   `json:"status"`
	Ts     int64 `json:"ts"`
}

// ErrorResponse is returned with non-2xx responses
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
