package backend

// Response status values used by every endpoint.
const (
	StatusSuccess    = "success"
	StatusProcessing = "processing"
	StatusError      = "error"
)

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	Prompt           string   `json:"prompt"`
	NumImages        int      `json:"num_images"`
	Seed             int      `json:"seed"`
	AspectRatio      string   `json:"aspect_ratio"`
	ModelNameDisplay string   `json:"model_name_display"`
	SaveImages       bool     `json:"save_images"`
	ReferenceImages  []string `json:"reference_images"`
}

// GenerateResult is the outcome of an accepted /generate call: either the
// images (synchronous path) or a queued task (HTTP 202).
type GenerateResult struct {
	Images []string
	Task   *Task
}

// Queued reports whether the backend deferred the request.
func (r *GenerateResult) Queued() bool {
	return r != nil && r.Task != nil
}

// Task identifies a queued generation.
type Task struct {
	ID       string
	Position int
}

// TaskStatus is one /check_task response.
type TaskStatus struct {
	Status   string
	Position int
	Images   []string
	Message  string
}

// SettingsPatch is a partial /update_session_settings body. Nil fields are
// omitted so each call patches only what it names.
type SettingsPatch struct {
	ActiveTab        *string `json:"active_tab,omitempty"`
	SaveImages       *bool   `json:"save_images,omitempty"`
	AspectRatioIndex *int    `json:"aspect_ratio_index,omitempty"`
}

// SessionState is the backend session as embedded in the index page.
type SessionState struct {
	ActiveTab        string   `json:"active_tab"`
	Results          []string `json:"results"`
	ReferenceImages  []string `json:"reference_images_list"`
	SaveImages       bool     `json:"save_images"`
	AspectRatioIndex int      `json:"aspect_ratio_index"`
}

// Bootstrap is everything the index page hands the client at load time.
type Bootstrap struct {
	Session SessionState
	// DisplayNames maps a model display name to its backend model type.
	DisplayNames map[string]string
	// ModelNames is the ordered tab list.
	ModelNames []string
}

// envelope is the common shape of every JSON response.
type envelope struct {
	Status          string   `json:"status"`
	Success         *bool    `json:"success,omitempty"`
	Message         string   `json:"message"`
	Images          []string `json:"images"`
	TaskID          string   `json:"task_id"`
	Position        *int     `json:"position"`
	ReferenceImages []string `json:"reference_images"`
	ImprovedPrompt  string   `json:"improved_prompt"`
	MagicPrompt     string   `json:"magic_prompt"`
}

func (e *envelope) ok() bool {
	if e.Success != nil {
		return *e.Success
	}
	return e.Status == StatusSuccess || e.Status == StatusProcessing
}

func (e *envelope) position() int {
	if e.Position == nil {
		return -1
	}
	return *e.Position
}
